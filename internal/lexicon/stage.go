package lexicon

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"voiceregen/internal/config"
	"voiceregen/internal/fileutil"
	"voiceregen/internal/logging"
	"voiceregen/internal/report"
	"voiceregen/internal/services"
	"voiceregen/internal/stage"
)

// StageName identifies the lexicon stage in logs and summaries.
const StageName = "lexicon"

// Stage rewrites the staged records in place.
type Stage struct {
	dir         string
	lexiconPath string
	logger      *slog.Logger
	sink        stage.Syncer
}

// NewStage builds the lexicon stage from configuration.
func NewStage(cfg *config.Config, logger *slog.Logger, sink stage.Syncer) *Stage {
	return &Stage{
		dir:         cfg.Paths.StagingDir,
		lexiconPath: cfg.Paths.Lexicon,
		logger:      logging.NewComponentLogger(logger, StageName),
		sink:        sink,
	}
}

// Name implements stage.Handler.
func (s *Stage) Name() string { return StageName }

// HealthCheck verifies the lexicon file loads.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	lex, err := Load(s.lexiconPath)
	if err != nil {
		return stage.Unhealthy(StageName, err.Error())
	}
	if lex.Len() == 0 {
		return stage.Unhealthy(StageName, "lexicon has no entries")
	}
	return stage.Healthy(StageName)
}

// Run loads the lexicon and rewrites every staged record. A missing or
// invalid lexicon aborts the stage with a configuration error.
func (s *Stage) Run(ctx context.Context) (*report.Summary, error) {
	ctx = services.WithStage(ctx, StageName)
	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()
	summary := report.NewSummary(StageName, report.Processed, report.Modified, report.Replacements, report.Failed)

	lex, err := Load(s.lexiconPath)
	if err != nil {
		logging.ErrorWithContext(logger, "lexicon unavailable", "lexicon_load_failed",
			logging.String("path", s.lexiconPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "create the lexicon file or fix paths.lexicon"),
		)
		return summary, err
	}
	logger.Info("lexicon loaded",
		logging.String("path", s.lexiconPath),
		logging.Int("entries", lex.Len()),
		logging.String("dir", s.dir),
	)
	if chains := lex.Chains(); len(chains) > 0 {
		logging.WarnWithContext(logger, "lexicon is not idempotent", "lexicon_chain",
			logging.String("keys", strings.Join(chains, ", ")),
			logging.String(logging.FieldErrorHint, "remove replacement values that are themselves lexicon keys"),
			logging.String(logging.FieldImpact, "running the stage again rewrites already rewritten records"),
		)
	}

	matcher := NewMatcher(lex)
	exclude := filepath.Base(s.lexiconPath)
	err = fileutil.Walk(s.dir, ".json", func(entry fileutil.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Name == exclude {
			return nil
		}
		summary.Inc(report.Processed)
		_, recLogger := stage.RecordLogger(ctx, s.logger, entry.Rel())
		defer stage.Sync(recLogger, s.sink)

		reps, err := RewriteFile(entry.Path, matcher)
		if err != nil {
			summary.Inc(report.Failed)
			logging.WarnWithContext(recLogger, "record not rewritten", "record_rewrite_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix the record JSON and rerun the lexicon stage"),
			)
			return nil
		}
		if len(reps) == 0 {
			return nil
		}
		summary.Inc(report.Modified)
		summary.Add(report.Replacements, len(reps))
		recLogger.Info("record rewritten",
			logging.String(logging.FieldEventType, "record_rewritten"),
			logging.Int("replacements", len(reps)),
		)
		for _, pair := range Tally(reps) {
			recLogger.Info("word replaced",
				logging.String("original", pair.Original),
				logging.String("replacement", pair.Replacement),
				logging.Int("count", pair.Count),
			)
		}
		return nil
	})
	summary.Finish(start)
	if err := stage.WalkError(StageName, err); err != nil {
		return summary, err
	}
	logger.Info("lexicon stage complete", summary.Attrs()...)
	return summary, nil
}
