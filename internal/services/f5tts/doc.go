// Package f5tts drives F5-TTS voice-cloning inference through its command-line
// interface, launched with uvx so no Python environment has to be managed.
//
// One Synthesize call renders one voice line: the reference clip sets the
// voice, gen_text the words, speed the pacing. Only the written WAV file is
// consumed; the spectrogram and sample data the model also produces are
// ignored.
package f5tts
