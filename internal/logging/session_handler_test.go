package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSessionIDHandlerStampsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSessionIDHandler(newJSONHandler(&buf, new(slog.LevelVar), false), "abc"))
	logger.With(slog.String("k", "v")).WithGroup("g").Info("one")

	if !strings.Contains(buf.String(), `"session_id":"abc"`) {
		t.Fatalf("expected session id in %q", buf.String())
	}
}

func TestSessionIDHiddenFromConsoleAtInfo(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	logger := slog.New(newSessionIDHandler(newPrettyHandler(&buf, lvl, false), "abc"))
	logger.Info("info")
	logger.Debug("debug")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", buf.String())
	}
	if strings.Contains(lines[0], "session_id") {
		t.Fatalf("info line should hide session id: %q", lines[0])
	}
	if !strings.Contains(lines[1], "session_id=abc") {
		t.Fatalf("debug line should show session id: %q", lines[1])
	}
}

func TestNewSessionIDHandlerNilBase(t *testing.T) {
	if _, ok := newSessionIDHandler(nil, "x").(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for nil base")
	}
}
