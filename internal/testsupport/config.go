package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"voiceregen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Stage directories exist; the lexicon path is set but not created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "source")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.BackupDir = filepath.Join(base, "backup")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.FinalDir = filepath.Join(base, "final")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.Lexicon = filepath.Join(base, "lexicon.json")
	cfgVal.Regeneration.ReplacementName = "Mira"
	cfgVal.Regeneration.ReferenceSeed = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := os.MkdirAll(builder.cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source dir: %v", err)
	}
	return builder.cfg
}

// WithLexicon writes a JSON lexicon with the given body and points the config at it.
func WithLexicon(body string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "lexicon.json")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			b.t.Fatalf("write lexicon: %v", err)
		}
		b.cfg.Paths.Lexicon = path
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default voiceregen external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"uvx", "ffmpeg"}
		}
		StubBinaries(b.t, filepath.Join(b.baseDir, "bin"), "#!/bin/sh\nexit 0\n", names...)
	}
}

// StubBinaries writes script under dir for every name and prepends dir to
// PATH for the duration of the test.
func StubBinaries(t testing.TB, dir, script string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for _, name := range names {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
