package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"voiceregen/internal/config"
	"voiceregen/internal/deps"
	"voiceregen/internal/lexicon"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that the directory exists and can be walked.
// The source tree is only read, so write access is not required.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckLexicon verifies the lexicon file loads and has entries.
func CheckLexicon(path string) Result {
	const name = "Lexicon"
	lex, err := lexicon.Load(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if lex.Len() == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no entries)", path)}
	}
	detail := fmt.Sprintf("%s (%d entries)", path, lex.Len())
	if chains := lex.Chains(); len(chains) > 0 {
		detail = fmt.Sprintf("%s (%d entries, %d chained)", path, lex.Len(), len(chains))
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the external programs for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "uvx",
			Command:     cfg.TTS.Command,
			Description: "Required to launch F5-TTS inference",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for Ogg/Opus conversion",
		},
	}
	return deps.CheckBinaries(requirements)
}
