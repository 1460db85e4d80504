package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the stage directories and the lexicon location.
type Paths struct {
	SourceDir  string `toml:"source_dir"`
	StagingDir string `toml:"staging_dir"`
	BackupDir  string `toml:"backup_dir"`
	OutputDir  string `toml:"output_dir"`
	FinalDir   string `toml:"final_dir"`
	LogDir     string `toml:"log_dir"`
	Lexicon    string `toml:"lexicon"`
}

// Filter describes the placeholder pattern that marks records for regeneration.
type Filter struct {
	// NameFragment matches only when followed by a character outside a-z.
	NameFragment string   `toml:"name_fragment"`
	Tokens       []string `toml:"tokens"`
}

// Regeneration contains prompt and reference selection settings for stage 3.
type Regeneration struct {
	ReplacementName      string `toml:"replacement_name"`
	StripCommaPause      bool   `toml:"strip_comma_pause"`
	NFEStep              int    `toml:"nfe_step"`
	Seed                 *int64 `toml:"seed"`
	ReferenceThresholdKB int64  `toml:"reference_threshold_kb"`
	ReferenceMinKB       int64  `toml:"reference_min_kb"`
	// ReferenceSeed seeds the random sibling pick; 0 seeds from the clock.
	ReferenceSeed uint64 `toml:"reference_seed"`
}

// TTS contains settings for the external F5-TTS inference command.
type TTS struct {
	Command   string   `toml:"command"`
	Package   string   `toml:"package"`
	Model     string   `toml:"model"`
	Device    string   `toml:"device"`
	HFToken   string   `toml:"hf_token"`
	ExtraArgs []string `toml:"extra_args"`
}

// Conversion contains settings for the final Ogg/Opus encode.
type Conversion struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	Codec         string `toml:"codec"`
	Bitrate       string `toml:"bitrate"`
	MaxPathLength int    `toml:"max_path_length"`
	ProgressEvery int    `toml:"progress_every"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for voiceregen.
//
// Configuration sections by subsystem:
//   - Paths: stage directories, backup directory, lexicon file
//   - Filter: name fragment and placeholder tokens
//   - Regeneration: replacement name, prompt and reference selection knobs
//   - TTS: F5-TTS command invocation
//   - Conversion: ffmpeg codec, bitrate, path length bound
//   - Logging: log format, level, and retention
type Config struct {
	Paths        Paths        `toml:"paths"`
	Filter       Filter       `toml:"filter"`
	Regeneration Regeneration `toml:"regeneration"`
	TTS          TTS          `toml:"tts"`
	Conversion   Conversion   `toml:"conversion"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigLocation)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigLocation)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories every stage writes into.
// The source directory is only read and is never created.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.BackupDir, c.Paths.OutputDir, c.Paths.FinalDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the advisory lock file shared by all stage commands.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "voiceregen.lock")
}

// FFmpegBinary returns the ffmpeg executable used by the conversion stage.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Conversion.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
