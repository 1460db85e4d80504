// Package workflow runs pipeline stages in order against one workspace.
//
// The Manager takes an advisory file lock under log_dir so two voiceregen
// commands never walk the same trees at once, verifies the workspace
// directories, and then executes each registered stage through stageexec.
// The first stage error stops the run; summaries of completed stages are
// still returned so the CLI can render them.
package workflow
