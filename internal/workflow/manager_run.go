package workflow

import (
	"context"
	"time"

	"voiceregen/internal/logging"
	"voiceregen/internal/report"
	"voiceregen/internal/stageexec"
)

// Run executes every stage in order while holding the workspace lock. It
// stops at the first stage error and returns the summaries gathered so far,
// including the partial summary of the failed stage.
func (m *Manager) Run(ctx context.Context) ([]*report.Summary, error) {
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	logger := logging.WithContext(ctx, m.logger)
	start := time.Now()
	logger.Info("workflow started",
		logging.String(logging.FieldEventType, "workflow_start"),
		logging.Any("stages", m.Stages()),
		logging.String("lock", m.lockPath),
	)

	if m.preflight {
		if err := m.runPreflightChecks(ctx, logger); err != nil {
			return nil, err
		}
	}

	summaries := make([]*report.Summary, 0, len(m.stages))
	for _, handler := range m.stages {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		summary, err := stageexec.Run(ctx, stageexec.Options{Logger: m.logger, Handler: handler})
		if summary != nil {
			summaries = append(summaries, summary)
		}
		if err != nil {
			return summaries, runErr(handler.Name(), err)
		}
	}

	logger.Info("workflow completed",
		logging.String(logging.FieldEventType, "workflow_complete"),
		logging.Int("stages", len(summaries)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return summaries, nil
}
