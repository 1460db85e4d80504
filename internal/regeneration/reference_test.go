package regeneration

import (
	"errors"
	"path/filepath"
	"testing"

	"voiceregen/internal/services"
	"voiceregen/internal/testsupport"
)

const kb = 1024

func TestSelectKeepsLargeOriginal(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "line.wav")
	testsupport.WriteFile(t, original, 300*kb)
	testsupport.WriteFile(t, filepath.Join(dir, "other.wav"), 900*kb)

	ref, err := NewReferenceSelector(250, 250, 1).Select(original)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ref.Path != original || !ref.Original || ref.Reason != ReasonLargeEnough {
		t.Fatalf("unexpected reference %+v", ref)
	}
}

func TestSelectPicksLargeSibling(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "line.wav")
	testsupport.WriteFile(t, original, 10*kb)
	testsupport.WriteFile(t, filepath.Join(dir, "small.wav"), 100*kb)
	testsupport.WriteFile(t, filepath.Join(dir, "big1.wav"), 260*kb)
	testsupport.WriteFile(t, filepath.Join(dir, "big2.wav"), 400*kb)
	testsupport.WriteFile(t, filepath.Join(dir, "huge.ogg"), 900*kb)

	allowed := map[string]bool{
		filepath.Join(dir, "big1.wav"): true,
		filepath.Join(dir, "big2.wav"): true,
	}
	seen := map[string]bool{}
	for seed := uint64(1); seed <= 32; seed++ {
		ref, err := NewReferenceSelector(250, 250, seed).Select(original)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if !allowed[ref.Path] || ref.Original || ref.Reason != ReasonRandom {
			t.Fatalf("unexpected reference %+v", ref)
		}
		if ref.Size < 250*kb {
			t.Fatalf("reference below minimum: %+v", ref)
		}
		seen[ref.Path] = true
	}
	if len(seen) != 2 {
		t.Fatalf("expected both siblings across seeds, saw %v", seen)
	}
}

func TestSelectFallsBackToLargest(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "line.wav")
	testsupport.WriteFile(t, original, 10*kb)
	testsupport.WriteFile(t, filepath.Join(dir, "a.wav"), 50*kb)
	testsupport.WriteFile(t, filepath.Join(dir, "b.wav"), 120*kb)

	ref, err := NewReferenceSelector(250, 250, 1).Select(original)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ref.Path != filepath.Join(dir, "b.wav") || ref.Reason != ReasonLargest {
		t.Fatalf("unexpected reference %+v", ref)
	}
}

func TestSelectOriginalIsLargest(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "line.wav")
	testsupport.WriteFile(t, original, 200*kb)
	testsupport.WriteFile(t, filepath.Join(dir, "a.wav"), 50*kb)

	ref, err := NewReferenceSelector(250, 250, 1).Select(original)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ref.Path != original || !ref.Original || ref.Reason != ReasonFallback {
		t.Fatalf("unexpected reference %+v", ref)
	}
}

func TestSelectMissingOriginal(t *testing.T) {
	dir := t.TempDir()
	_, err := NewReferenceSelector(250, 250, 1).Select(filepath.Join(dir, "line.wav"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	testsupport.WriteFile(t, filepath.Join(dir, "other.wav"), 20*kb)
	ref, err := NewReferenceSelector(250, 250, 1).Select(filepath.Join(dir, "line.wav"))
	if err != nil {
		t.Fatalf("Select with sibling: %v", err)
	}
	if ref.Path != filepath.Join(dir, "other.wav") {
		t.Fatalf("unexpected reference %+v", ref)
	}
}
