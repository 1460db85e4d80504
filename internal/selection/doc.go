// Package selection copies the voice lines that mention the player's name
// out of the read-only source tree.
//
// Matching records are copied into staging_dir, their Ogg audio is backed up
// into backup_dir, and a WAV transcode is written beside the staged record
// for the regeneration stage to use as reference audio.
package selection
