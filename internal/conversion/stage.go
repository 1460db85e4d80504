package conversion

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"voiceregen/internal/config"
	"voiceregen/internal/fileutil"
	"voiceregen/internal/logging"
	"voiceregen/internal/media/ffmpeg"
	"voiceregen/internal/report"
	"voiceregen/internal/services"
	"voiceregen/internal/stage"
)

// StageName identifies the conversion stage in logs and summaries.
const StageName = "convert"

// Encoder converts one WAV file into an Ogg file. *ffmpeg.Encoder satisfies it.
type Encoder interface {
	Encode(ctx context.Context, input, output string) error
	Available(ctx context.Context) error
}

// Stage converts every WAV under output_dir.
type Stage struct {
	inputDir      string
	finalDir      string
	maxPathLength int
	progress      *logging.ProgressSampler
	encoder       Encoder
	logger        *slog.Logger
	sink          stage.Syncer
}

// NewStage builds the conversion stage. A nil encoder runs ffmpeg as
// configured under [conversion].
func NewStage(cfg *config.Config, logger *slog.Logger, sink stage.Syncer, encoder Encoder) *Stage {
	if encoder == nil {
		encoder = ffmpeg.NewEncoder(cfg.FFmpegBinary(), cfg.Conversion.Codec, cfg.Conversion.Bitrate)
	}
	return &Stage{
		inputDir:      cfg.Paths.OutputDir,
		finalDir:      cfg.Paths.FinalDir,
		maxPathLength: cfg.Conversion.MaxPathLength,
		progress:      logging.NewProgressSampler(cfg.Conversion.ProgressEvery),
		encoder:       encoder,
		logger:        logging.NewComponentLogger(logger, StageName),
		sink:          sink,
	}
}

// Name implements stage.Handler.
func (s *Stage) Name() string { return StageName }

// HealthCheck verifies the encoder runs.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.encoder.Available(ctx); err != nil {
		return stage.Unhealthy(StageName, err.Error())
	}
	return stage.Healthy(StageName)
}

// TargetPath maps a WAV below the input tree to its Ogg path below final_dir.
func (s *Stage) TargetPath(entry fileutil.Entry) string {
	return filepath.Join(s.finalDir, entry.RelDir, entry.Stem()+".ogg")
}

// Run converts every WAV file. An unusable encoder aborts before the walk;
// per-file failures are counted as skipped.
func (s *Stage) Run(ctx context.Context) (*report.Summary, error) {
	ctx = services.WithStage(ctx, StageName)
	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()
	summary := report.NewSummary(StageName, report.Processed, report.Converted, report.Skipped)

	if err := s.encoder.Available(ctx); err != nil {
		logging.ErrorWithContext(logger, "encoder unavailable", "encoder_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffmpeg or set conversion.ffmpeg_binary"),
		)
		return summary, err
	}
	if err := os.MkdirAll(s.finalDir, 0o755); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, StageName, "create final dir",
			"Check permissions on paths.final_dir", err)
	}
	logger.Info("conversion started",
		logging.String("input_dir", s.inputDir),
		logging.String("final_dir", s.finalDir),
		logging.Int("progress_every", s.progress.Every()),
	)

	err := fileutil.Walk(s.inputDir, ".wav", func(entry fileutil.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Inc(report.Processed)
		converted, err := s.convert(ctx, entry, summary)
		if err != nil {
			return err
		}
		if converted && s.progress.ShouldLog(summary.Count(report.Converted)) {
			logger.Info("conversion progress",
				logging.String(logging.FieldEventType, "conversion_progress"),
				logging.Int("converted", summary.Count(report.Converted)),
				logging.Int("skipped", summary.Count(report.Skipped)),
			)
		}
		return nil
	})
	summary.Finish(start)
	if err := stage.WalkError(StageName, err); err != nil {
		return summary, err
	}
	logger.Info("conversion complete", summary.Attrs()...)
	return summary, nil
}

// convert encodes one file and reports whether it produced output. Only
// cancellation is returned as an error.
func (s *Stage) convert(ctx context.Context, entry fileutil.Entry, summary *report.Summary) (bool, error) {
	_, logger := stage.RecordLogger(ctx, s.logger, entry.Rel())
	defer stage.Sync(logger, s.sink)

	target := s.TargetPath(entry)
	if n := utf8.RuneCountInString(target); s.maxPathLength > 0 && n > s.maxPathLength {
		summary.Inc(report.Skipped)
		logging.ErrorWithContext(logger, "target path too long", "path_too_long",
			logging.String("target", target),
			logging.Int("length", n),
			logging.Int("max_path_length", s.maxPathLength),
			logging.String(logging.FieldErrorHint, "move final_dir closer to the filesystem root"),
			logging.String(logging.FieldImpact, "line keeps its original audio in game"),
		)
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		summary.Inc(report.Skipped)
		logging.ErrorWithContext(logger, "target directory not created", "mkdir_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on final_dir"),
		)
		return false, nil
	}

	logger.Debug("converting", logging.String("input", entry.Path), logging.String("target", target))
	if err := s.encoder.Encode(ctx, entry.Path, target); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		summary.Inc(report.Skipped)
		attrs := []logging.Attr{
			logging.Error(err),
			logging.String("target", target),
			logging.String(logging.FieldErrorHint, "inspect the encoder output and the source WAV"),
		}
		var toolErr *ffmpeg.ToolError
		if errors.As(err, &toolErr) && toolErr.NotFound {
			attrs = append(attrs, logging.String(logging.FieldImpact, "ffmpeg disappeared from PATH during the run"))
		}
		logging.ErrorWithContext(logger, "conversion failed", "conversion_failed", attrs...)
		return false, nil
	}
	summary.Inc(report.Converted)
	logger.Info("converted",
		logging.String(logging.FieldEventType, "file_converted"),
		logging.String("target", target),
	)
	return true, nil
}
