// Package transcode converts the dataset's Ogg Vorbis voice lines into the
// 16-bit PCM WAV files the synthesis model takes as reference audio.
package transcode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// pcm16 is the sample precision, in bytes, of written WAV files.
const pcm16 = 2

// Info describes decoded audio.
type Info struct {
	SampleRate int
	Channels   int
	Samples    int
	Duration   time.Duration
}

// OggToWav decodes the Ogg Vorbis file at src and writes it to dst as 16-bit
// PCM WAV at the source's sample rate and channel count. A partial dst is
// removed on failure.
func OggToWav(src, dst string) (Info, error) {
	in, err := os.Open(src)
	if err != nil {
		return Info{}, fmt.Errorf("open ogg: %w", err)
	}
	streamer, format, err := vorbis.Decode(in)
	if err != nil {
		in.Close()
		return Info{}, fmt.Errorf("decode ogg %s: %w", filepath.Base(src), err)
	}
	defer streamer.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Info{}, fmt.Errorf("create wav directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return Info{}, fmt.Errorf("create wav: %w", err)
	}

	total := streamer.Len()
	format.Precision = pcm16
	encodeErr := wav.Encode(out, streamer, format)
	closeErr := out.Close()
	if err := errors.Join(encodeErr, closeErr); err != nil {
		_ = os.Remove(dst)
		return Info{}, fmt.Errorf("encode wav %s: %w", filepath.Base(dst), err)
	}
	return infoFor(format, total), nil
}

// ReadWavInfo reads the header and length of a WAV file.
func ReadWavInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wav: %w", err)
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return Info{}, fmt.Errorf("decode wav %s: %w", filepath.Base(path), err)
	}
	defer streamer.Close()
	return infoFor(format, streamer.Len()), nil
}

func infoFor(format beep.Format, samples int) Info {
	return Info{
		SampleRate: int(format.SampleRate),
		Channels:   format.NumChannels,
		Samples:    samples,
		Duration:   format.SampleRate.D(samples),
	}
}
