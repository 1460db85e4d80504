package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validateRegeneration(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	dirs := []struct{ key, path string }{
		{"paths.source_dir", c.Paths.SourceDir},
		{"paths.staging_dir", c.Paths.StagingDir},
		{"paths.backup_dir", c.Paths.BackupDir},
		{"paths.output_dir", c.Paths.OutputDir},
		{"paths.final_dir", c.Paths.FinalDir},
		{"paths.log_dir", c.Paths.LogDir},
	}
	// Each stage walks its whole input tree, so no directory may hold another.
	for i, a := range dirs {
		for _, b := range dirs[i+1:] {
			pa, pb := filepath.Clean(a.path), filepath.Clean(b.path)
			switch {
			case pa == pb:
				return fmt.Errorf("%s and %s must be different directories", a.key, b.key)
			case isWithin(pa, pb):
				return fmt.Errorf("%s must not be inside %s", b.key, a.key)
			case isWithin(pb, pa):
				return fmt.Errorf("%s must not be inside %s", a.key, b.key)
			}
		}
	}
	if strings.TrimSpace(c.Paths.Lexicon) == "" {
		return errors.New("paths.lexicon must be set")
	}
	return nil
}

// isWithin reports whether child lies below parent.
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c *Config) validateFilter() error {
	if c.Filter.NameFragment == "" && len(c.Filter.Tokens) == 0 {
		return errors.New("filter.name_fragment or filter.tokens must be set")
	}
	return nil
}

func (c *Config) validateRegeneration() error {
	if c.Regeneration.ReplacementName == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigLocation
		}
		return fmt.Errorf("regeneration.replacement_name is required. Set %s env var or edit %s (create with 'voiceregen config init')", envReplacementName, defaultPath)
	}
	if c.Regeneration.NFEStep <= 0 {
		return errors.New("regeneration.nfe_step must be positive")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if c.Conversion.MaxPathLength < 0 {
		return errors.New("conversion.max_path_length must be >= 0")
	}
	if c.Conversion.ProgressEvery <= 0 {
		return errors.New("conversion.progress_every must be positive")
	}
	return nil
}
