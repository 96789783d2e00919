package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"audiodupes/internal/deps"
	"audiodupes/internal/preflight"
	"audiodupes/internal/report"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check that fpcalc, ffmpeg, and ffprobe are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := preflight.CheckSystemDeps(cfg)
			missing := deps.MissingRequired(statuses)

			if jsonOutput {
				if err := writeJSON(cmd, statuses); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				tw := report.NewTable("Binary", "Command", "Status", "Purpose", "Detail")
				for _, status := range statuses {
					state := statusWord(out, status.Available, "ok", "missing")
					if !status.Available && status.Optional {
						state = "optional, missing"
					}
					detail := status.Detail
					if status.Available {
						detail = status.Path
					}
					tw.AppendRow(table.Row{status.Name, status.Command, state, status.Description, detail})
				}
				fmt.Fprintln(out, tw.Render())
			}

			if len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, status := range missing {
					names = append(names, status.Name)
				}
				return fmt.Errorf("missing required binaries: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
