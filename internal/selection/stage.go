package selection

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"voiceregen/internal/config"
	"voiceregen/internal/fileutil"
	"voiceregen/internal/logging"
	"voiceregen/internal/media/transcode"
	"voiceregen/internal/placeholder"
	"voiceregen/internal/report"
	"voiceregen/internal/services"
	"voiceregen/internal/stage"
)

// StageName identifies the selection stage in logs and summaries.
const StageName = "select"

// Stage copies matching records and their audio out of the source tree.
type Stage struct {
	sourceDir  string
	stagingDir string
	backupDir  string
	pattern    *placeholder.Pattern
	logger     *slog.Logger
	sink       stage.Syncer
}

// NewStage builds the selection stage from configuration.
func NewStage(cfg *config.Config, logger *slog.Logger, sink stage.Syncer) (*Stage, error) {
	pattern, err := placeholder.New(cfg.Filter.NameFragment, cfg.Filter.Tokens)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, StageName, "compile filter",
			"Fix filter.name_fragment or filter.tokens", err)
	}
	return &Stage{
		sourceDir:  cfg.Paths.SourceDir,
		stagingDir: cfg.Paths.StagingDir,
		backupDir:  cfg.Paths.BackupDir,
		pattern:    pattern,
		logger:     logging.NewComponentLogger(logger, StageName),
		sink:       sink,
	}, nil
}

// Name implements stage.Handler.
func (s *Stage) Name() string { return StageName }

// HealthCheck verifies the source tree is present.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if !fileutil.Exists(s.sourceDir) {
		return stage.Unhealthy(StageName, "source_dir does not exist: "+s.sourceDir)
	}
	return stage.Healthy(StageName)
}

// Run walks the source tree. The source is only read.
func (s *Stage) Run(ctx context.Context) (*report.Summary, error) {
	ctx = services.WithStage(ctx, StageName)
	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()
	summary := report.NewSummary(StageName, report.Processed, report.Copied, report.Converted, report.Failed)

	logger.Info("selection started",
		logging.String("source_dir", s.sourceDir),
		logging.String("staging_dir", s.stagingDir),
		logging.String("backup_dir", s.backupDir),
	)
	err := fileutil.Walk(s.sourceDir, ".json", func(entry fileutil.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Inc(report.Processed)
		s.processRecord(ctx, entry, summary)
		return nil
	})
	summary.Finish(start)
	if err := stage.WalkError(StageName, err); err != nil {
		return summary, err
	}
	logger.Info("selection complete", summary.Attrs()...)
	return summary, nil
}

func (s *Stage) processRecord(ctx context.Context, entry fileutil.Entry, summary *report.Summary) {
	_, logger := stage.RecordLogger(ctx, s.logger, entry.Rel())
	defer stage.Sync(logger, s.sink)

	doc, err := stage.LoadRecord(entry.Path)
	if err != nil {
		summary.Inc(report.Failed)
		logging.WarnWithContext(logger, "record skipped", "record_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the source JSON; the source tree is never modified"),
		)
		return
	}
	if !s.pattern.MatchBytes(doc.Compact()) {
		return
	}

	stagedJSON := filepath.Join(s.stagingDir, entry.RelDir, entry.Name)
	if err := fileutil.CopyPreserving(entry.Path, stagedJSON); err != nil {
		summary.Inc(report.Failed)
		logging.WarnWithContext(logger, "record not copied", "record_copy_failed",
			logging.Error(err),
			logging.String("target", stagedJSON),
			logging.String(logging.FieldErrorHint, "check free space and permissions on staging_dir"),
		)
		return
	}
	summary.Inc(report.Copied)
	logger.Info("record copied",
		logging.String(logging.FieldEventType, "record_copied"),
		logging.String("target", stagedJSON),
	)

	ogg := filepath.Join(filepath.Dir(entry.Path), entry.Stem()+".ogg")
	if !fileutil.Exists(ogg) {
		logger.Debug("no paired audio", logging.String("expected", ogg))
		return
	}

	backup := filepath.Join(s.backupDir, entry.RelDir, entry.Stem()+".ogg")
	if err := fileutil.CopyVerifiedPreserving(ogg, backup); err != nil {
		summary.Inc(report.Failed)
		logging.WarnWithContext(logger, "audio backup failed", "backup_failed",
			logging.Error(err),
			logging.String("target", backup),
			logging.String(logging.FieldErrorHint, "check free space and permissions on backup_dir"),
			logging.String(logging.FieldImpact, "line is staged without reference audio"),
		)
		return
	}
	logger.Debug("audio backed up", logging.String("target", backup))

	wav := filepath.Join(s.stagingDir, entry.RelDir, entry.Stem()+".wav")
	info, err := transcode.OggToWav(ogg, wav)
	if err != nil {
		summary.Inc(report.Failed)
		logging.WarnWithContext(logger, "audio not converted", "transcode_failed",
			logging.Error(err),
			logging.String("source", ogg),
			logging.String(logging.FieldErrorHint, "check that the Ogg file is valid Vorbis audio"),
			logging.String(logging.FieldImpact, "regeneration falls back to sibling reference audio"),
		)
		return
	}
	summary.Inc(report.Converted)
	logger.Info("audio converted",
		logging.String(logging.FieldEventType, "audio_converted"),
		logging.String("target", wav),
		logging.Int("sample_rate", info.SampleRate),
		logging.Duration("duration", info.Duration),
	)
}
