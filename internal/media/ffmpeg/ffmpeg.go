// Package ffmpeg builds and runs the ffmpeg invocations of the conversion
// stage.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"voiceregen/internal/services"
)

// CommandRunner executes name with args and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Encoder transcodes WAV files into Ogg containers.
type Encoder struct {
	binary  string
	codec   string
	bitrate string
	run     CommandRunner
}

// NewEncoder returns an encoder that runs binary with the given audio codec
// and bitrate.
func NewEncoder(binary, codec, bitrate string) *Encoder {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Encoder{binary: binary, codec: codec, bitrate: bitrate, run: execRunner}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Encoder) WithCommandRunner(runner CommandRunner) {
	e.run = runner
}

// Args returns the ffmpeg arguments that encode input into output,
// overwriting output if it exists.
func (e *Encoder) Args(input, output string) []string {
	return EncodeArgs(input, output, e.codec, e.bitrate)
}

// EncodeArgs builds "-i input -b:a bitrate -c:a codec output -y".
func EncodeArgs(input, output, codec, bitrate string) []string {
	kwargs := ffmpeggo.KwArgs{}
	if bitrate != "" {
		kwargs["b:a"] = bitrate
	}
	if codec != "" {
		kwargs["c:a"] = codec
	}
	return ffmpeggo.Input(input).Output(output, kwargs).OverWriteOutput().GetArgs()
}

// Encode converts input into output. A missing executable or a non-zero exit
// is reported as services.ErrExternalTool with the encoder's output attached.
func (e *Encoder) Encode(ctx context.Context, input, output string) error {
	out, err := e.run(ctx, e.binary, e.Args(input, output)...)
	if err == nil {
		return nil
	}
	return classify(e.binary, "encode", out, err)
}

// Available runs "ffmpeg -version" to confirm the encoder can be executed.
func (e *Encoder) Available(ctx context.Context) error {
	out, err := e.run(ctx, e.binary, "-version")
	if err != nil {
		return classify(e.binary, "version check", out, err)
	}
	return nil
}

// Version returns the first line of "ffmpeg -version".
func (e *Encoder) Version(ctx context.Context) (string, error) {
	out, err := e.run(ctx, e.binary, "-version")
	if err != nil {
		return "", classify(e.binary, "version check", out, err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}

// ToolError carries the output of a failed encoder run.
type ToolError struct {
	Binary   string
	NotFound bool
	ExitCode int
	Output   string
	Err      error
}

func (e *ToolError) Error() string {
	switch {
	case e.NotFound:
		return fmt.Sprintf("%s: executable not found", e.Binary)
	case e.Output != "":
		return fmt.Sprintf("%s exited with code %d: %s", e.Binary, e.ExitCode, e.Output)
	default:
		return fmt.Sprintf("%s: %v", e.Binary, e.Err)
	}
}

func (e *ToolError) Unwrap() error { return e.Err }

func classify(binary, operation string, output []byte, err error) error {
	toolErr := &ToolError{Binary: binary, Output: strings.TrimSpace(string(output)), Err: err, ExitCode: -1}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound):
		toolErr.NotFound = true
	case errors.As(err, &exitErr):
		toolErr.ExitCode = exitErr.ExitCode()
	}
	return services.Wrap(services.ErrExternalTool, "ffmpeg", operation, "", toolErr)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}
