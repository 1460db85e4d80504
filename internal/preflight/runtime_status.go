package preflight

import (
	"context"
	"time"

	"voiceregen/internal/config"
	"voiceregen/internal/media/ffmpeg"
	"voiceregen/internal/services/f5tts"
)

const checkTimeout = 30 * time.Second

// Checker runs a cheap invocation of an external program.
type Checker interface {
	Available(ctx context.Context) error
}

// CheckRunnable executes the checker with a timeout. Finding a binary on PATH
// is not enough; a broken install fails here.
func CheckRunnable(ctx context.Context, name string, checker Checker) Result {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := checker.Available(checkCtx); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "runs"}
}

// CheckFFmpegVersion reports the first line of "ffmpeg -version".
func CheckFFmpegVersion(ctx context.Context, cfg *config.Config) Result {
	const name = "FFmpeg version"
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	enc := ffmpeg.NewEncoder(cfg.FFmpegBinary(), cfg.Conversion.Codec, cfg.Conversion.Bitrate)
	version, err := enc.Version(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: version}
}

// CheckTTS verifies the F5-TTS launcher runs.
func CheckTTS(ctx context.Context, cfg *config.Config) Result {
	svc := f5tts.NewService(f5tts.Config{Command: cfg.TTS.Command, Package: cfg.TTS.Package, Model: cfg.TTS.Model})
	result := CheckRunnable(ctx, "F5-TTS launcher", svc)
	if result.Passed {
		result.Detail = svc.Command() + " runs (model " + svc.Model() + ")"
	}
	return result
}
