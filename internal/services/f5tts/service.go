package f5tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"voiceregen/internal/services"
)

// Request describes one synthesis call.
type Request struct {
	// RefAudio is the reference clip whose voice is cloned.
	RefAudio string
	// RefText is the transcript of RefAudio; empty lets F5-TTS transcribe it.
	RefText string
	// GenText is the text to speak.
	GenText string
	// OutputPath is the WAV file to write.
	OutputPath string
	NFEStep    int
	Speed      float64
	// Seed fixes sampling; nil lets the model pick one.
	Seed *int64
}

// Service runs F5-TTS inference.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates an F5-TTS service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = DefaultCommand
	}
	if strings.TrimSpace(cfg.Package) == "" {
		cfg.Package = DefaultPackage
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Command returns the executable that launches inference.
func (s *Service) Command() string {
	return s.cfg.Command
}

// Available confirms the launcher can be executed.
func (s *Service) Available(ctx context.Context) error {
	if err := s.run(ctx, s.cfg.Command, "--version"); err != nil {
		return services.Wrap(services.ErrExternalTool, "f5tts", "availability", fmt.Sprintf("%s is not runnable; install uv or set tts.command", s.cfg.Command), err)
	}
	return nil
}

// Synthesize renders req.GenText in the voice of req.RefAudio and writes the
// result to req.OutputPath.
func (s *Service) Synthesize(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.GenText) == "" {
		return services.Wrap(services.ErrValidation, "f5tts", "synthesize", "Generation text is empty", nil)
	}
	if req.RefAudio == "" || req.OutputPath == "" {
		return services.Wrap(services.ErrValidation, "f5tts", "synthesize", "Reference audio and output path are required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := s.run(ctx, s.cfg.Command, s.BuildArgs(req)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "f5tts", "synthesize", "Inference failed", err)
	}
	if _, err := os.Stat(req.OutputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "f5tts", "synthesize", "Inference finished without writing output", err)
	}
	return nil
}

// BuildArgs constructs the launcher arguments for req.
func (s *Service) BuildArgs(req Request) []string {
	nfe := req.NFEStep
	if nfe <= 0 {
		nfe = DefaultNFEStep
	}
	args := make([]string, 0, 24+len(s.cfg.ExtraArgs))
	args = append(args,
		"--from", s.cfg.Package,
		InferCLI,
		"--model", s.cfg.Model,
		"--ref_audio", req.RefAudio,
		"--ref_text", req.RefText,
		"--gen_text", req.GenText,
		"--output_dir", filepath.Dir(req.OutputPath),
		"--output_file", filepath.Base(req.OutputPath),
		"--nfe_step", strconv.Itoa(nfe),
		"--speed", strconv.FormatFloat(req.Speed, 'f', -1, 64),
	)
	if req.Seed != nil {
		args = append(args, "--seed", strconv.FormatInt(*req.Seed, 10))
	}
	if device := strings.TrimSpace(s.cfg.Device); device != "" {
		args = append(args, "--device", device)
	}
	return append(args, s.cfg.ExtraArgs...)
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if token := strings.TrimSpace(s.cfg.HFToken); token != "" && os.Getenv(hfTokenEnv) == "" {
		cmd.Env = append(os.Environ(), hfTokenEnv+"="+token)
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, tail(strings.TrimSpace(string(output)), maxOutputTail))
	}
	return nil
}

// tail keeps at most the last n bytes of s, starting on a rune boundary.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return "..." + s[start:]
}
