package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"reflect"
	"testing"

	"voiceregen/internal/services"
)

func TestEncodeArgs(t *testing.T) {
	got := EncodeArgs("in.wav", "out.ogg", "libopus", "64k")
	want := []string{"-i", "in.wav", "-b:a", "64k", "-c:a", "libopus", "out.ogg", "-y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EncodeArgs = %v, want %v", got, want)
	}
}

func TestEncodeUsesRunner(t *testing.T) {
	enc := NewEncoder("", "libopus", "64k")
	var gotName string
	var gotArgs []string
	enc.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, nil
	})
	if err := enc.Encode(context.Background(), "a.wav", "a.ogg"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if gotName != "ffmpeg" || gotArgs[len(gotArgs)-1] != "-y" {
		t.Fatalf("unexpected invocation %s %v", gotName, gotArgs)
	}
}

func TestEncodeClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"missing binary", &exec.Error{Name: "ffmpeg", Err: exec.ErrNotFound}, true},
		{"generic failure", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewEncoder("ffmpeg", "libopus", "64k")
			enc.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
				return []byte("Unknown encoder 'libopus'\n"), tt.err
			})
			err := enc.Encode(context.Background(), "a.wav", "a.ogg")
			if !errors.Is(err, services.ErrExternalTool) {
				t.Fatalf("expected external tool error, got %v", err)
			}
			var toolErr *ToolError
			if !errors.As(err, &toolErr) {
				t.Fatalf("expected ToolError, got %T", err)
			}
			if toolErr.NotFound != tt.notFound {
				t.Fatalf("NotFound = %v, want %v", toolErr.NotFound, tt.notFound)
			}
			if toolErr.Output != "Unknown encoder 'libopus'" {
				t.Fatalf("unexpected output %q", toolErr.Output)
			}
		})
	}
}

func TestAvailableAndVersion(t *testing.T) {
	enc := NewEncoder("ffmpeg", "libopus", "64k")
	enc.WithCommandRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		if len(args) != 1 || args[0] != "-version" {
			t.Fatalf("unexpected args %v", args)
		}
		return []byte("ffmpeg version 7.1 Copyright\nbuilt with gcc\n"), nil
	})
	if err := enc.Available(context.Background()); err != nil {
		t.Fatalf("Available: %v", err)
	}
	v, err := enc.Version(context.Background())
	if err != nil || v != "ffmpeg version 7.1 Copyright" {
		t.Fatalf("Version = %q, %v", v, err)
	}
}

func TestAvailableMissingBinary(t *testing.T) {
	enc := NewEncoder("definitely-not-ffmpeg-voiceregen", "libopus", "64k")
	if err := enc.Available(context.Background()); !errors.Is(err, exec.ErrNotFound) {
		t.Fatalf("expected exec.ErrNotFound, got %v", err)
	}
}
