package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "select-old.log")
	fresh := filepath.Join(dir, "select-new.log")
	active := filepath.Join(dir, "convert-active.log")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, active, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	for _, p := range []string{old, active, other} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	removed := CleanupOldLogs(nil, dir, 30, active)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("expected old log to be removed")
	}
	for _, p := range []string{fresh, active, other} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to remain: %v", p, err)
		}
	}
}

func TestCleanupOldLogsDisabled(t *testing.T) {
	if got := CleanupOldLogs(nil, t.TempDir(), 0, ""); got != 0 {
		t.Fatalf("expected no removals, got %d", got)
	}
}
