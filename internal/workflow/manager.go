package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"

	"voiceregen/internal/config"
	"voiceregen/internal/logging"
	"voiceregen/internal/stage"
)

// ErrLocked reports that another command holds the workspace lock.
var ErrLocked = errors.New("another voiceregen command is already running in this workspace")

// Manager coordinates sequential stage execution.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	stages []stage.Handler

	lockPath  string
	lock      *flock.Flock
	preflight bool
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithPreflight toggles the workspace checks that run before the first stage.
func WithPreflight(enabled bool) ManagerOption {
	return func(m *Manager) {
		m.preflight = enabled
	}
}

// NewManager constructs a workflow manager for the given stages, which run
// in the order provided.
func NewManager(cfg *config.Config, logger *slog.Logger, stages []stage.Handler, opts ...ManagerOption) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workflow requires a config")
	}
	if len(stages) == 0 {
		return nil, errors.New("workflow requires at least one stage")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	m := &Manager{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		stages:    stages,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
		preflight: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// LockPath returns the advisory lock file location.
func (m *Manager) LockPath() string {
	return m.lockPath
}

// Stages returns the stage names in run order.
func (m *Manager) Stages() []string {
	names := make([]string, 0, len(m.stages))
	for _, s := range m.stages {
		names = append(names, s.Name())
	}
	return names
}

func (m *Manager) acquire() error {
	ok, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrLocked, m.lockPath)
	}
	return nil
}

func (m *Manager) release() {
	if err := m.lock.Unlock(); err != nil {
		m.logger.Warn("failed to release workspace lock",
			logging.String("lock", m.lockPath),
			logging.Error(err),
		)
	}
}

// Healthy reports the readiness of every stage without running anything.
func (m *Manager) Healthy(ctx context.Context) []stage.Health {
	health := make([]stage.Health, 0, len(m.stages))
	for _, s := range m.stages {
		health = append(health, s.HealthCheck(ctx))
	}
	return health
}

// runErr wraps err with the stage it came from.
func runErr(name string, err error) error {
	return fmt.Errorf("stage %s: %w", name, err)
}
