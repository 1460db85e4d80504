package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFilter()
	c.normalizeRegeneration()
	c.normalizeTTS()
	c.normalizeConversion()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(envSourceDir); ok && strings.TrimSpace(value) != "" {
		c.Paths.SourceDir = strings.TrimSpace(value)
	}
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.source_dir", &c.Paths.SourceDir, defaultSourceDir},
		{"paths.staging_dir", &c.Paths.StagingDir, defaultStagingDir},
		{"paths.backup_dir", &c.Paths.BackupDir, defaultBackupDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.final_dir", &c.Paths.FinalDir, defaultFinalDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.lexicon", &c.Paths.Lexicon, defaultLexiconPath},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeFilter() {
	c.Filter.NameFragment = strings.TrimSpace(c.Filter.NameFragment)
	tokens := make([]string, 0, len(c.Filter.Tokens))
	seen := make(map[string]struct{}, len(c.Filter.Tokens))
	for _, token := range c.Filter.Tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, exists := seen[token]; exists {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	c.Filter.Tokens = tokens
}

func (c *Config) normalizeRegeneration() {
	if value, ok := os.LookupEnv(envReplacementName); ok && strings.TrimSpace(value) != "" {
		c.Regeneration.ReplacementName = value
	}
	c.Regeneration.ReplacementName = strings.TrimSpace(c.Regeneration.ReplacementName)
	if c.Regeneration.NFEStep <= 0 {
		c.Regeneration.NFEStep = defaultNFEStep
	}
	if c.Regeneration.ReferenceThresholdKB <= 0 {
		c.Regeneration.ReferenceThresholdKB = defaultReferenceThreshold
	}
	if c.Regeneration.ReferenceMinKB <= 0 {
		c.Regeneration.ReferenceMinKB = defaultReferenceMin
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.Command = strings.TrimSpace(c.TTS.Command)
	if c.TTS.Command == "" {
		c.TTS.Command = defaultTTSCommand
	}
	c.TTS.Package = strings.TrimSpace(c.TTS.Package)
	if c.TTS.Package == "" {
		c.TTS.Package = defaultTTSPackage
	}
	c.TTS.Model = strings.TrimSpace(c.TTS.Model)
	if c.TTS.Model == "" {
		c.TTS.Model = defaultTTSModel
	}
	c.TTS.Device = strings.ToLower(strings.TrimSpace(c.TTS.Device))
	c.TTS.HFToken = strings.TrimSpace(c.TTS.HFToken)
	if c.TTS.HFToken == "" {
		if value, ok := os.LookupEnv(envHuggingFaceHubToken); ok {
			c.TTS.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv(envHFToken); ok {
			c.TTS.HFToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeConversion() {
	c.Conversion.FFmpegBinary = strings.TrimSpace(c.Conversion.FFmpegBinary)
	if c.Conversion.FFmpegBinary == "" {
		c.Conversion.FFmpegBinary = defaultFFmpegBinary
	}
	c.Conversion.Codec = strings.TrimSpace(c.Conversion.Codec)
	if c.Conversion.Codec == "" {
		c.Conversion.Codec = defaultCodec
	}
	c.Conversion.Bitrate = strings.TrimSpace(c.Conversion.Bitrate)
	if c.Conversion.Bitrate == "" {
		c.Conversion.Bitrate = defaultBitrate
	}
	if c.Conversion.MaxPathLength == 0 {
		c.Conversion.MaxPathLength = defaultMaxPathLength
	}
	if c.Conversion.ProgressEvery <= 0 {
		c.Conversion.ProgressEvery = defaultProgressEvery
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
