package preflight

import (
	"context"

	"voiceregen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem and lexicon checks for the given config.
// Stage directories are expected to exist already (config.EnsureDirectories).
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckReadableDirectory("Source directory", cfg.Paths.SourceDir)}
	results = append(results, CheckWorkspace(cfg)...)
	results = append(results, CheckLexicon(cfg.Paths.Lexicon))
	return results
}

// CheckWorkspace verifies the directories the stages write into. Every
// pipeline command runs these before its first stage; stage specific
// prerequisites are left to each stage's health check.
func CheckWorkspace(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Backup directory", cfg.Paths.BackupDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Final directory", cfg.Paths.FinalDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
