// Package record reads and writes voice-line records: JSON documents that
// carry a sentence plus arbitrary metadata.
//
// A Document keeps the record's raw bytes. Reads go through gjson, edits are
// spliced into the bytes or applied with sjson, so key order, number literals
// and non-ASCII text survive a rewrite untouched. Records are written back
// with two-space indentation.
package record
