package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voiceregen/internal/deps"
	"voiceregen/internal/logging"
	"voiceregen/internal/preflight"
	"voiceregen/internal/report"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report workspace, lexicon, and external tool readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fancy := report.IsTerminal(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			results = append(results,
				preflight.CheckTTS(cmd.Context(), cfg),
				preflight.CheckFFmpegVersion(cmd.Context(), cfg),
			)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, yesNo(r.Passed), r.Detail})
			}
			fmt.Fprintln(out, report.RenderTable([]string{"Check", "OK", "Detail"}, rows, nil, fancy))

			statuses := preflight.CheckSystemDeps(cfg)
			depRows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				where := s.Resolved
				if !s.Available {
					where = s.Detail
				}
				depRows = append(depRows, []string{s.Name, s.Command, yesNo(s.Available), where, s.Description})
			}
			fmt.Fprintln(out, report.RenderTable([]string{"Dependency", "Command", "Found", "Path", "Purpose"}, depRows, nil, fancy))

			var failed []string
			manager, err := newManager(cfg, logging.NewNop(), nil, pipelineStages)
			if err != nil {
				return err
			}
			healthRows := make([][]string, 0, len(pipelineStages))
			for _, h := range manager.Healthy(cmd.Context()) {
				healthRows = append(healthRows, []string{h.Name, yesNo(h.Ready), h.Detail})
				if !h.Ready {
					failed = append(failed, "stage "+h.Name)
				}
			}
			fmt.Fprintln(out, report.RenderTable([]string{"Stage", "Ready", "Detail"}, healthRows, nil, fancy))

			for _, r := range preflight.Failed(results) {
				failed = append(failed, r.Name)
			}
			for _, s := range deps.Missing(statuses) {
				failed = append(failed, s.Name)
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed: %s", len(failed), strings.Join(failed, ", "))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
