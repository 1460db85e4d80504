// Package logs locates per-run stage log files and tails them with bounded
// memory.
//
// Negative offsets request the last N lines of a file; follow mode polls for
// appended lines until the caller's context is cancelled. `voiceregen logs`
// is built on these helpers.
package logs
