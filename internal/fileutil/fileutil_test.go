package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCopyFileMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileMode(src, dst, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestCopyPreservingKeepsModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "line.json")
	dst := filepath.Join(dir, "out", "nested", "line.json")
	if err := os.WriteFile(src, []byte(`{"sentence":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	if err := CopyPreserving(src, dst); err != nil {
		t.Fatalf("CopyPreserving: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("mtime = %v, want %v", info.ModTime(), mtime)
	}
}

func TestCopyVerifiedPreserving(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.ogg")
	dst := filepath.Join(dir, "backup", "a.ogg")
	if err := os.WriteFile(src, []byte("OggS...."), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyVerifiedPreserving(src, dst); err != nil {
		t.Fatalf("CopyVerifiedPreserving: %v", err)
	}
	if got, _ := os.ReadFile(dst); string(got) != "OggS...." {
		t.Fatalf("unexpected backup content %q", got)
	}
}

func TestCopyPreservingMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyPreserving(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestWalkOrderAndFilter(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"b/2.json", "a/1.JSON", "a/1.ogg", "c.json", "a/sub/3.json"} {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var seen []string
	err := Walk(root, ".json", func(e Entry) error {
		seen = append(seen, filepath.ToSlash(e.Rel())+"|"+e.Stem())
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := "a/1.JSON|1,a/sub/3.json|3,b/2.json|2,c.json|c"
	if got := strings.Join(seen, ","); got != want {
		t.Fatalf("walk order = %s, want %s", got, want)
	}
}

func TestWalkStopsOnError(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.wav", "b.wav"} {
		if err := os.WriteFile(filepath.Join(root, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stop := errors.New("stop")
	calls := 0
	err := Walk(root, ".wav", func(Entry) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("expected walk to stop after first file, calls=%d err=%v", calls, err)
	}
}

func TestExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if Exists(path) {
		t.Fatal("unexpected existence")
	}
	if err := os.WriteFile(path, make([]byte, 10), 0o644); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Fatal("expected file to exist")
	}
}
