package regeneration_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/gjson"

	"voiceregen/internal/logging"
	"voiceregen/internal/record"
	"voiceregen/internal/regeneration"
	"voiceregen/internal/report"
	"voiceregen/internal/services/f5tts"
	"voiceregen/internal/testsupport"
)

type fakeSynth struct {
	mu       sync.Mutex
	requests []f5tts.Request
	fail     map[string]bool
}

func (f *fakeSynth) Synthesize(_ context.Context, req f5tts.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(req.OutputPath, []byte("RIFF"), 0o644); err != nil {
		return err
	}
	if f.fail[filepath.Base(req.OutputPath)] {
		return errors.New("model crashed")
	}
	return nil
}

func TestStageRegeneratesMatchingRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	staging := cfg.Paths.StagingDir
	testsupport.WriteText(t, filepath.Join(staging, "npc", "hello.json"), `{"sentence":"Arc, please help.","speaker":"npc","id":7}`)
	testsupport.WriteFile(t, filepath.Join(staging, "npc", "hello.wav"), 300*1024)
	testsupport.WriteRecord(t, filepath.Join(staging, "npc", "plain.json"), "Nothing to see here.")
	testsupport.WriteFile(t, filepath.Join(staging, "npc", "plain.wav"), 10)

	synth := &fakeSynth{}
	st, err := regeneration.NewStage(cfg, logging.NewNop(), nil, synth)
	if err != nil {
		t.Fatalf("NewStage: %v", err)
	}
	summary, err := st.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Count(report.Processed) != 1 || summary.Count(report.Generated) != 1 || summary.Count(report.Failed) != 0 {
		t.Fatalf("unexpected summary %s", summary)
	}
	if len(synth.requests) != 1 {
		t.Fatalf("expected one synthesis, got %d", len(synth.requests))
	}
	req := synth.requests[0]
	outWav := filepath.Join(cfg.Paths.OutputDir, "npc", "hello.wav")
	if req.GenText != "Mira please help ..." || req.Speed != 0.5 || req.OutputPath != outWav || req.NFEStep != 32 {
		t.Fatalf("unexpected request %+v", req)
	}

	out, err := record.Load(filepath.Join(cfg.Paths.OutputDir, "npc", "hello.json"))
	if err != nil {
		t.Fatalf("load output record: %v", err)
	}
	if got := strings.Join(out.Keys(), ","); got != "sentence,speaker,id,generation_parameters" {
		t.Fatalf("unexpected record keys %s", got)
	}
	params := out.Field(regeneration.FieldGenerationParameters)
	var paramKeys []string
	params.ForEach(func(key, _ gjson.Result) bool {
		paramKeys = append(paramKeys, key.Str)
		return true
	})
	if got := strings.Join(paramKeys, ","); got != "ref_file,ref_text,gen_text,file_wave,seed,nfe_step,speed" {
		t.Fatalf("unexpected parameter keys %s", got)
	}
	if seed := params.Get("seed"); seed.Type != gjson.Null || !seed.Exists() {
		t.Fatalf("expected null seed, got %s", seed.Raw)
	}
	if speed := params.Get("speed"); speed.Raw != "0.5" {
		t.Fatalf("unexpected speed literal %s", speed.Raw)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "npc", "plain.json")); !os.IsNotExist(err) {
		t.Fatal("non-matching record must not be written")
	}

	// A second run finds the output and skips the line.
	summary, err = st.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.Count(report.Skipped) != 1 || summary.Count(report.Generated) != 0 || len(synth.requests) != 1 {
		t.Fatalf("expected skip on rerun, got %s", summary)
	}
}

func TestStageRecordsSubstituteReference(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := filepath.Join(cfg.Paths.StagingDir, "npc")
	testsupport.WriteRecord(t, filepath.Join(dir, "short.json"), "Hello, _NAME_.")
	testsupport.WriteFile(t, filepath.Join(dir, "short.wav"), 20*1024)
	testsupport.WriteFile(t, filepath.Join(dir, "long.wav"), 400*1024)

	st, err := regeneration.NewStage(cfg, logging.NewNop(), nil, &fakeSynth{})
	if err != nil {
		t.Fatalf("NewStage: %v", err)
	}
	if _, err := st.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, err := record.Load(filepath.Join(cfg.Paths.OutputDir, "npc", "short.json"))
	if err != nil {
		t.Fatalf("load output record: %v", err)
	}
	used := out.Field(regeneration.FieldReferenceUsed)
	if used.Type != gjson.String || used.Str != filepath.Join(dir, "long.wav") {
		t.Fatalf("unexpected reference_wav_used %s", used.Raw)
	}
}

func TestStageCountsFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := filepath.Join(cfg.Paths.StagingDir, "npc")
	testsupport.WriteRecord(t, filepath.Join(dir, "crash.json"), "Arc!")
	testsupport.WriteFile(t, filepath.Join(dir, "crash.wav"), 300*1024)
	testsupport.WriteRecord(t, filepath.Join(dir, "orphan.json"), "Arc?")
	testsupport.WriteText(t, filepath.Join(dir, "broken.json"), `{"sentence": "Arc`)

	synth := &fakeSynth{fail: map[string]bool{"crash.wav": true}}
	st, err := regeneration.NewStage(cfg, logging.NewNop(), nil, synth)
	if err != nil {
		t.Fatalf("NewStage: %v", err)
	}
	summary, err := st.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// orphan.json has a sibling reference (crash.wav) so it is generated.
	if summary.Count(report.Failed) != 2 || summary.Count(report.Generated) != 1 {
		t.Fatalf("unexpected summary %s", summary)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "npc", "crash.wav")); !os.IsNotExist(err) {
		t.Fatal("partial output of a failed synthesis must be removed")
	}
}

func TestStageHealthCheckUsesSynthesizer(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := f5tts.NewService(f5tts.Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("uvx: not found")
	})
	st, err := regeneration.NewStage(cfg, logging.NewNop(), nil, svc)
	if err != nil {
		t.Fatalf("NewStage: %v", err)
	}
	if h := st.HealthCheck(context.Background()); h.Ready {
		t.Fatal("expected unhealthy stage when the synthesizer is unavailable")
	}
}
