package conversion_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voiceregen/internal/conversion"
	"voiceregen/internal/fileutil"
	"voiceregen/internal/logging"
	"voiceregen/internal/media/ffmpeg"
	"voiceregen/internal/report"
	"voiceregen/internal/services"
	"voiceregen/internal/testsupport"
)

type fakeEncoder struct {
	unavailable error
	fail        map[string]error
	calls       []string
}

func (f *fakeEncoder) Available(context.Context) error { return f.unavailable }

func (f *fakeEncoder) Encode(_ context.Context, input, output string) error {
	f.calls = append(f.calls, input)
	if err := f.fail[filepath.Base(input)]; err != nil {
		return err
	}
	return os.WriteFile(output, []byte("OggS"), 0o644)
}

type countingSink struct{ syncs int }

func (c *countingSink) Sync() error {
	c.syncs++
	return nil
}

func TestStageConvertsTree(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	out := cfg.Paths.OutputDir
	testsupport.WriteFile(t, filepath.Join(out, "npc", "a.wav"), 10)
	testsupport.WriteFile(t, filepath.Join(out, "npc", "deep", "b.wav"), 10)
	testsupport.WriteFile(t, filepath.Join(out, "npc", "a.json"), 10)
	testsupport.WriteFile(t, filepath.Join(out, "npc", "bad.wav"), 10)

	enc := &fakeEncoder{fail: map[string]error{
		"bad.wav": services.Wrap(services.ErrExternalTool, "ffmpeg", "encode", "", &ffmpeg.ToolError{Binary: "ffmpeg", ExitCode: 1, Output: "Invalid data"}),
	}}
	sink := &countingSink{}
	summary, err := conversion.NewStage(cfg, logging.NewNop(), sink, enc).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Count(report.Processed) != 3 || summary.Count(report.Converted) != 2 || summary.Count(report.Skipped) != 1 {
		t.Fatalf("unexpected summary %s", summary)
	}
	for _, rel := range []string{"npc/a.ogg", "npc/deep/b.ogg"} {
		if !fileutil.Exists(filepath.Join(cfg.Paths.FinalDir, filepath.FromSlash(rel))) {
			t.Fatalf("expected %s in final dir", rel)
		}
	}
	if fileutil.Exists(filepath.Join(cfg.Paths.FinalDir, "npc", "bad.ogg")) {
		t.Fatal("failed conversion must not produce output")
	}
	if sink.syncs != 3 {
		t.Fatalf("expected a sync per file, got %d", sink.syncs)
	}
}

func TestStageLogsProgressAfterConversionsOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Conversion.ProgressEvery = 2
	for _, name := range []string{"a.wav", "b.wav", "c.wav", "d.wav", "e.wav"} {
		testsupport.WriteFile(t, filepath.Join(cfg.Paths.OutputDir, name), 10)
	}
	enc := &fakeEncoder{fail: map[string]error{"c.wav": errors.New("encode failed")}}
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	summary, err := conversion.NewStage(cfg, logger, nil, enc).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Count(report.Converted) != 4 || summary.Count(report.Skipped) != 1 {
		t.Fatalf("unexpected summary %s", summary)
	}

	var progress []float64
	var every float64
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", scanner.Text(), err)
		}
		if entry["msg"] == "conversion started" {
			every, _ = entry["progress_every"].(float64)
		}
		if entry["event_type"] == "conversion_progress" {
			converted, _ := entry["converted"].(float64)
			progress = append(progress, converted)
		}
	}
	if every != 2 {
		t.Fatalf("progress_every = %v, want 2", every)
	}
	if len(progress) != 2 || progress[0] != 2 || progress[1] != 4 {
		t.Fatalf("progress lines at %v, want [2 4]", progress)
	}
}

func TestStageSkipsLongTargetPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Conversion.MaxPathLength = len(cfg.Paths.FinalDir) + 12
	out := cfg.Paths.OutputDir
	testsupport.WriteFile(t, filepath.Join(out, "a.wav"), 10)
	testsupport.WriteFile(t, filepath.Join(out, strings.Repeat("x", 40)+".wav"), 10)

	enc := &fakeEncoder{}
	summary, err := conversion.NewStage(cfg, logging.NewNop(), nil, enc).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Count(report.Converted) != 1 || summary.Count(report.Skipped) != 1 {
		t.Fatalf("unexpected summary %s", summary)
	}
	if len(enc.calls) != 1 || filepath.Base(enc.calls[0]) != "a.wav" {
		t.Fatalf("encoder must not run for the long path, calls %v", enc.calls)
	}
}

func TestStageEncoderUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.OutputDir, "a.wav"), 10)
	enc := &fakeEncoder{unavailable: services.Wrap(services.ErrExternalTool, "ffmpeg", "version check", "", errors.New("not found"))}

	st := conversion.NewStage(cfg, logging.NewNop(), nil, enc)
	if _, err := st.Run(context.Background()); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if len(enc.calls) != 0 {
		t.Fatal("encoder must not run when unavailable")
	}
	if h := st.HealthCheck(context.Background()); h.Ready {
		t.Fatal("expected unhealthy stage")
	}
}

func TestStageUsesFFmpegArgs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	wav := filepath.Join(cfg.Paths.OutputDir, "npc", "a.wav")
	testsupport.WriteFile(t, wav, 10)

	enc := ffmpeg.NewEncoder(cfg.FFmpegBinary(), cfg.Conversion.Codec, cfg.Conversion.Bitrate)
	var got [][]string
	enc.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		got = append(got, append([]string{name}, args...))
		return nil, nil
	})
	summary, err := conversion.NewStage(cfg, logging.NewNop(), nil, enc).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Count(report.Converted) != 1 {
		t.Fatalf("unexpected summary %s", summary)
	}
	target := filepath.Join(cfg.Paths.FinalDir, "npc", "a.ogg")
	want := strings.Join([]string{"ffmpeg", "-i", wav, "-b:a", "64k", "-c:a", "libopus", target, "-y"}, " ")
	if len(got) != 2 || strings.Join(got[1], " ") != want {
		t.Fatalf("unexpected invocations %v", got)
	}
}

func TestStageMissingInputDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.OutputDir = filepath.Join(testsupport.BaseDir(cfg), "absent")
	_, err := conversion.NewStage(cfg, logging.NewNop(), nil, &fakeEncoder{}).Run(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
