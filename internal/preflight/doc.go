// Package preflight provides readiness checks for the filesystem layout and
// external programs the pipeline depends on.
//
// These checks run in two contexts:
//   - The pipeline runner calls RunAll before the first stage. If any check
//     fails the run stops before touching the workspace.
//   - The CLI "voiceregen check" command renders every result as a table.
package preflight
