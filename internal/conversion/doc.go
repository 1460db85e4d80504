// Package conversion encodes regenerated WAV files into the Ogg/Opus
// containers the game loads, mirroring the output tree under final_dir.
package conversion
