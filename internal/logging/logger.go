package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"voiceregen/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	// Console mirrors every record to stdout using the console format,
	// regardless of Format.
	Console     bool
	SessionID   string
	Development bool
}

// Sink owns the log files opened for a run.
type Sink struct {
	files []*os.File
}

// Sync flushes every open log file to stable storage.
func (s *Sink) Sync() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, f := range s.files {
		if err := f.Sync(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, fmt.Errorf("sync %s: %w", f.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Close syncs and closes every open log file.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	err := s.Sync()
	for _, f := range s.files {
		if cerr := f.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			err = errors.Join(err, cerr)
		}
	}
	s.files = nil
	return err
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, *Sink, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	sink := &Sink{}
	writer, err := openWriters(defaultSlice(opts.OutputPaths, []string{"stdout"}), sink)
	if err != nil {
		_ = sink.Close()
		return nil, nil, err
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(writer, levelVar, addSource)
	case "console":
		handler = newPrettyHandler(writer, levelVar, addSource)
	default:
		_ = sink.Close()
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if opts.Console {
		handler = TeeHandler(handler, newPrettyHandler(os.Stdout, levelVar, addSource))
	}
	if sessionID := strings.TrimSpace(opts.SessionID); sessionID != "" {
		handler = newSessionIDHandler(handler, sessionID)
	}

	return slog.New(handler), sink, nil
}

// Run describes the log file of a single stage invocation.
type Run struct {
	ID        string
	SessionID string
	Path      string
}

// NewRun stamps a stage invocation with a timestamp-indexed log path and a
// session identifier.
func NewRun(logDir, stage string, now time.Time) Run {
	id := now.UTC().Format("20060102T150405.000Z")
	name := strings.TrimSpace(stage)
	if name == "" {
		name = "voiceregen"
	}
	return Run{
		ID:        id,
		SessionID: uuid.NewString(),
		Path:      filepath.Join(logDir, fmt.Sprintf("%s-%s.log", name, id)),
	}
}

// NewFromConfig creates a logger that writes the run's log file in the
// configured format and mirrors every line to the console.
func NewFromConfig(cfg *config.Config, run Run) (*slog.Logger, *Sink, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", OutputPaths: []string{"stdout"}})
	}
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	outputs := []string{"stdout"}
	console := false
	if run.Path != "" {
		outputs = []string{run.Path}
		console = true
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		Console:     console,
		SessionID:   run.SessionID,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		cp := make([]string, len(fallback))
		copy(cp, fallback)
		return cp
	}
	cp := make([]string, len(value))
	copy(cp, value)
	return cp
}

func openWriters(outputPaths []string, sink *Sink) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range outputPaths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := ensureLogDir(trimmed); err != nil {
				return nil, err
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			sink.files = append(sink.files, file)
			writers = append(writers, file)
		}
	}

	if len(writers) == 0 {
		return os.Stdout, nil
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
