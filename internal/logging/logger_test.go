package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voiceregen/internal/config"
	"voiceregen/internal/logging"
	"voiceregen/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, sink, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer sink.Close()

	logger.Info("message without caller")
	if err := sink.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	content := readLog(t, logPath)
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
	if !strings.Contains(content, "INFO") || !strings.Contains(content, "message without caller") {
		t.Fatalf("unexpected console line %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, sink, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer sink.Close()

	logger.Info("message with caller")
	_ = sink.Sync()

	if content := readLog(t, logPath); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerWritesStructuredFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, sink, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
		SessionID:   "session-1",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer sink.Close()

	logger.Info("copied", logging.String(logging.FieldStage, "select"), logging.Int("count", 3))
	_ = sink.Sync()

	content := readLog(t, logPath)
	for _, want := range []string{`"msg":"copied"`, `"stage":"select"`, `"count":3`, `"session_id":"session-1"`, `"level":"info"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %s in %q", want, content)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewRunBuildsTimestampedPath(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 123_000_000, time.UTC)
	run := logging.NewRun("/logs", "convert", now)
	if run.ID != "20240506T070809.123Z" {
		t.Fatalf("unexpected run id %q", run.ID)
	}
	if run.Path != filepath.Join("/logs", "convert-20240506T070809.123Z.log") {
		t.Fatalf("unexpected run path %q", run.Path)
	}
	if run.SessionID == "" {
		t.Fatal("expected session id")
	}
}

func TestNewFromConfigCreatesRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	run := logging.NewRun(cfg.Paths.LogDir, "lexicon", time.Now())
	logger, sink, err := logging.NewFromConfig(&cfg, run)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Warn("replaced", logging.String("file", "a.json"))
	if err := sink.Close(); err != nil {
		t.Fatalf("close sink: %v", err)
	}
	if content := readLog(t, run.Path); !strings.Contains(content, `"file":"a.json"`) {
		t.Fatalf("expected record in run log, got %q", content)
	}
}

func TestWithContextAddsStageAndRecord(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, sink, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer sink.Close()

	ctx := services.WithStage(context.Background(), "regenerate")
	ctx = services.WithRecord(ctx, "a/b.json")
	logging.WithContext(ctx, logger).Info("generated")
	_ = sink.Sync()

	content := readLog(t, logPath)
	if !strings.Contains(content, `"stage":"regenerate"`) || !strings.Contains(content, `"record":"a/b.json"`) {
		t.Fatalf("expected context fields, got %q", content)
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, sink, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer sink.Close()

	logging.WarnWithContext(logger, "skip", "record_skipped", logging.String(logging.FieldImpact, "custom impact"))
	_ = sink.Sync()

	content := readLog(t, logPath)
	for _, want := range []string{`"event_type":"record_skipped"`, `"error_hint":"check logs for details"`, `"impact":"custom impact"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %s in %q", want, content)
		}
	}
}

func TestSinkNilSafe(t *testing.T) {
	var sink *logging.Sink
	if err := sink.Sync(); err != nil {
		t.Fatalf("nil sync: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
