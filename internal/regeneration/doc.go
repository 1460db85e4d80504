// Package regeneration re-synthesizes staged voice lines that mention the
// player's name placeholder.
//
// For each matching record it derives a cleaned prompt with the configured
// name substituted, picks a reference clip large enough to clone the voice
// from, runs F5-TTS, and writes the new WAV plus an augmented copy of the
// record into the output tree. Records whose output WAV already exists are
// skipped, which makes reruns resume where the last run stopped.
package regeneration
