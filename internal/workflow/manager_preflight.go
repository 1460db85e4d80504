package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"voiceregen/internal/logging"
	"voiceregen/internal/preflight"
	"voiceregen/internal/services"
)

// runPreflightChecks validates the workspace directories before the first
// stage. Returns nil when all checks pass, or a configuration error
// describing all failures.
func (m *Manager) runPreflightChecks(_ context.Context, logger *slog.Logger) error {
	results := preflight.CheckWorkspace(m.cfg)
	if len(results) == 0 {
		return nil
	}

	var failures []string
	for _, r := range results {
		if r.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
		} else {
			logger.Error("preflight check failed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_failed"),
				logging.String(logging.FieldErrorHint, "fix the reported path in [paths] and rerun"),
			)
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}

	if len(failures) > 0 {
		return services.Wrap(services.ErrConfiguration, "workflow", "preflight",
			strings.Join(failures, "; "), nil)
	}
	return nil
}
