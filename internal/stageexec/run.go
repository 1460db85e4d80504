// Package stageexec runs one pipeline stage with the lifecycle logging the
// CLI and the workflow manager share.
package stageexec

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"voiceregen/internal/logging"
	"voiceregen/internal/report"
	"voiceregen/internal/services"
	"voiceregen/internal/stage"
)

// Options controls stage execution.
type Options struct {
	Logger  *slog.Logger
	Handler stage.Handler
	// SkipHealthCheck runs the stage without asking it for readiness first.
	SkipHealthCheck bool
}

// Run checks the stage's health, executes it, and logs the outcome. An
// unhealthy stage is reported as services.ErrConfiguration without running.
func Run(ctx context.Context, opts Options) (*report.Summary, error) {
	if opts.Handler == nil {
		return nil, errors.New("stage handler unavailable")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	name := opts.Handler.Name()
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, logger)

	if !opts.SkipHealthCheck {
		health := opts.Handler.HealthCheck(stageCtx)
		if !health.Ready {
			logging.ErrorWithContext(stageLogger, "stage not ready", "stage_unhealthy",
				logging.String("detail", strings.TrimSpace(health.Detail)),
				logging.String(logging.FieldErrorHint, "run 'voiceregen check' for the full readiness report"),
			)
			return nil, services.Wrap(services.ErrConfiguration, name, "health check", health.Detail, nil)
		}
	}

	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	summary, err := opts.Handler.Run(stageCtx)
	if err != nil {
		return summary, handleFailure(stageLogger, err)
	}

	attrs := []logging.Attr{logging.String(logging.FieldEventType, "stage_complete")}
	if summary != nil {
		attrs = append(attrs, logging.Duration("elapsed", summary.Elapsed))
		for _, label := range summary.Labels() {
			attrs = append(attrs, logging.Int(label, summary.Count(label)))
		}
	}
	stageLogger.Info("stage completed", logging.Args(attrs...)...)
	return summary, nil
}

func handleFailure(logger *slog.Logger, stageErr error) error {
	if errors.Is(stageErr, context.Canceled) {
		logger.Warn("stage interrupted", logging.String(logging.FieldEventType, "stage_interrupted"))
		return stageErr
	}
	eventType := "stage_failure"
	if services.IsFatal(stageErr) {
		eventType = "stage_fatal"
	}
	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, eventType),
		logging.String("error_message", strings.TrimSpace(stageErr.Error())),
		logging.Error(stageErr),
	)
	return stageErr
}
