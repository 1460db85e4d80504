// Package services defines shared utilities consumed by the pipeline stages and
// their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names, record paths, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that separate fatal
//     configuration failures from per-record failures a stage logs and skips.
//
// Subpackages wrap the external tools the pipeline shells out to.
package services
