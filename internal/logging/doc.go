// Package logging assembles structured slog loggers and formatting helpers used
// across the voiceregen stages.
//
// It owns the console/JSON handlers, the fanout that mirrors every line to the
// console and a per-run log file, and the session handler that stamps each
// record with the run's session ID. The Sink returned by New lets stages flush
// the log file after every processed file so the error log survives an abrupt
// termination.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing as the rest of the pipeline.
package logging
