package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"voiceregen/internal/config"
	"voiceregen/internal/conversion"
	"voiceregen/internal/lexicon"
	"voiceregen/internal/logging"
	"voiceregen/internal/regeneration"
	"voiceregen/internal/report"
	"voiceregen/internal/selection"
	"voiceregen/internal/services"
	"voiceregen/internal/stage"
	"voiceregen/internal/workflow"
)

type stageBuilder func(cfg *config.Config, logger *slog.Logger, sink stage.Syncer) (stage.Handler, error)

type stageSpec struct {
	name  string
	short string
	long  string
	build stageBuilder
}

// pipelineStages lists the stages in run order.
var pipelineStages = []stageSpec{
	{
		name:  selection.StageName,
		short: "Stage 1: copy name-bearing records and transcode their audio",
		long:  "Walks source_dir, copies every record whose JSON mentions a placeholder into staging_dir, backs up its Ogg file into backup_dir, and writes a WAV transcode beside the staged record.",
		build: func(cfg *config.Config, logger *slog.Logger, sink stage.Syncer) (stage.Handler, error) {
			return selection.NewStage(cfg, logger, sink)
		},
	},
	{
		name:  lexicon.StageName,
		short: "Stage 2: apply pronunciation replacements to staged records",
		long:  "Rewrites the sentence fields of staged records in place using the whole-word, case-insensitive lexicon at paths.lexicon.",
		build: func(cfg *config.Config, logger *slog.Logger, sink stage.Syncer) (stage.Handler, error) {
			return lexicon.NewStage(cfg, logger, sink), nil
		},
	},
	{
		name:  regeneration.StageName,
		short: "Stage 3: synthesize new audio with the replacement name",
		long:  "Runs F5-TTS for every staged record that mentions a placeholder and writes the WAV plus an augmented record into output_dir. Lines whose output already exists are skipped.",
		build: func(cfg *config.Config, logger *slog.Logger, sink stage.Syncer) (stage.Handler, error) {
			return regeneration.NewStage(cfg, logger, sink, nil)
		},
	},
	{
		name:  conversion.StageName,
		short: "Stage 4: encode regenerated WAV files to Ogg/Opus",
		long:  "Encodes every WAV under output_dir into final_dir with ffmpeg, mirroring the directory tree.",
		build: func(cfg *config.Config, logger *slog.Logger, sink stage.Syncer) (stage.Handler, error) {
			return conversion.NewStage(cfg, logger, sink, nil), nil
		},
	},
}

func newStageCommands(ctx *commandContext) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(pipelineStages))
	for _, spec := range pipelineStages {
		var skipPreflight bool
		cmd := &cobra.Command{
			Use:   spec.name,
			Short: spec.short,
			Long:  spec.long,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStages(cmd, ctx, spec.name, []stageSpec{spec}, skipPreflight)
			},
		}
		cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip the workspace directory checks")
		cmds = append(cmds, cmd)
	}
	return cmds
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all four stages in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStages(cmd, ctx, "run", pipelineStages, skipPreflight)
		},
	}
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip the workspace directory checks")
	return cmd
}

// runStages opens a per-run log file, builds the requested stages, runs them
// under the workspace lock, and prints the summary table.
func runStages(cmd *cobra.Command, ctx *commandContext, logName string, specs []stageSpec, skipPreflight bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	run := logging.NewRun(cfg.Paths.LogDir, logName, time.Now())
	logger, sink, err := logging.NewFromConfig(cfg, run)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer sink.Close()
	logger.Info("voiceregen starting",
		logging.String("command", logName),
		logging.String("run_id", run.ID),
		logging.String("log_file", run.Path),
		logging.String("config", ctx.configPath),
		logging.Bool("skip_preflight", skipPreflight),
	)
	if removed := logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, run.Path); removed > 0 {
		logger.Debug("old logs pruned", logging.Int("removed", removed))
	}

	manager, err := newManager(cfg, logger, sink, specs, workflow.WithPreflight(!skipPreflight))
	if err != nil {
		return err
	}
	summaries, runErr := manager.Run(services.WithRequestID(cmd.Context(), run.ID))
	if len(summaries) > 0 {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, report.RenderSummaries(summaries, report.IsTerminal(out)))
		fmt.Fprintf(out, "Log: %s\n", run.Path)
	}
	return runErr
}

func newManager(cfg *config.Config, logger *slog.Logger, sink stage.Syncer, specs []stageSpec, opts ...workflow.ManagerOption) (*workflow.Manager, error) {
	handlers := make([]stage.Handler, 0, len(specs))
	for _, spec := range specs {
		handler, err := spec.build(cfg, logger, sink)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, handler)
	}
	return workflow.NewManager(cfg, logger, handlers, opts...)
}
