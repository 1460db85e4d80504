package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"voiceregen/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var stageName string
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the most recent run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := logs.Latest(cfg.Paths.LogDir, stageName)
			if errors.Is(err, logs.ErrNoLogs) {
				fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
				return nil
			}
			if err != nil {
				return err
			}

			opts := logs.TailOptions{Offset: -1, Limit: lines}
			if lines <= 0 {
				opts = logs.TailOptions{Offset: 0}
			}
			out := cmd.OutOrStdout()
			printed := false
			for {
				chunk, err := logs.Tail(cmd.Context(), path, opts)
				if err != nil {
					if follow && cmd.Context().Err() != nil {
						return nil
					}
					return fmt.Errorf("tail %s: %w", path, err)
				}
				for _, line := range chunk.Lines {
					fmt.Fprintln(out, line)
					printed = true
				}
				if !follow {
					if !printed {
						fmt.Fprintln(out, "No log entries available")
					}
					return nil
				}
				opts = logs.TailOptions{Offset: chunk.Offset, Wait: time.Second}
			}
		},
	}

	cmd.Flags().StringVar(&stageName, "stage", "", "Only consider logs of this stage or command (select, lexicon, regenerate, convert, run)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	return cmd
}
