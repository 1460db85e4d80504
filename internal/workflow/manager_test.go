package workflow

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/gofrs/flock"

	"voiceregen/internal/logging"
	"voiceregen/internal/report"
	"voiceregen/internal/services"
	"voiceregen/internal/stage"
	"voiceregen/internal/testsupport"
)

type recordingStage struct {
	name  string
	err   error
	order *[]string
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) HealthCheck(context.Context) stage.Health { return stage.Healthy(s.name) }

func (s *recordingStage) Run(context.Context) (*report.Summary, error) {
	*s.order = append(*s.order, s.name)
	return report.NewSummary(s.name, report.Processed), s.err
}

func TestManagerRunsStagesInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var order []string
	stages := []stage.Handler{
		&recordingStage{name: "select", order: &order},
		&recordingStage{name: "lexicon", order: &order},
		&recordingStage{name: "regenerate", order: &order},
		&recordingStage{name: "convert", order: &order},
	}
	m, err := NewManager(cfg, logging.NewNop(), stages)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	summaries, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summaries) != 4 || len(order) != 4 || order[0] != "select" || order[3] != "convert" {
		t.Fatalf("unexpected run order %v", order)
	}

	// The lock is released after the run.
	other := flock.New(m.LockPath())
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("expected lock to be free after Run, ok=%v err=%v", ok, err)
	}
	_ = other.Unlock()
}

func TestManagerStopsAtFirstError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var order []string
	stages := []stage.Handler{
		&recordingStage{name: "select", order: &order},
		&recordingStage{name: "lexicon", order: &order, err: services.Wrap(services.ErrConfiguration, "lexicon", "load", "", nil)},
		&recordingStage{name: "regenerate", order: &order},
	}
	m, err := NewManager(cfg, logging.NewNop(), stages)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	summaries, err := m.Run(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(order) != 2 || len(summaries) != 2 {
		t.Fatalf("expected run to stop after lexicon, order=%v summaries=%d", order, len(summaries))
	}
}

func TestManagerRefusesConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var order []string
	m, err := NewManager(cfg, logging.NewNop(), []stage.Handler{&recordingStage{name: "select", order: &order}})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	holder := flock.New(m.LockPath())
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	defer holder.Unlock()

	if _, err := m.Run(context.Background()); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if len(order) != 0 {
		t.Fatal("stage ran without the lock")
	}
}

func TestManagerPreflightFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.RemoveAll(cfg.Paths.OutputDir); err != nil {
		t.Fatal(err)
	}
	var order []string
	m, err := NewManager(cfg, logging.NewNop(), []stage.Handler{&recordingStage{name: "convert", order: &order}})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := m.Run(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected preflight configuration error, got %v", err)
	}

	m, _ = NewManager(cfg, logging.NewNop(), []stage.Handler{&recordingStage{name: "convert", order: &order}}, WithPreflight(false))
	if _, err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run without preflight: %v", err)
	}
	if len(order) != 1 {
		t.Fatalf("expected stage to run once, got %v", order)
	}
}

func TestNewManagerValidates(t *testing.T) {
	if _, err := NewManager(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg := testsupport.NewConfig(t)
	if _, err := NewManager(cfg, nil, nil); err == nil {
		t.Fatal("expected error for no stages")
	}
}
