// Package main hosts the voiceregen CLI entrypoint and command graph.
//
// Each pipeline stage is a subcommand (select, lexicon, regenerate,
// convert) and "run" executes all four in order. The command tree
// centralizes configuration resolution, per-run log files, and summary
// rendering so the stage packages under internal/ stay free of terminal
// concerns. "check" reports readiness and "config" scaffolds and prints the
// configuration.
package main
