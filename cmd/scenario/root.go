package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/charleschow/superleague-points/internal/core/display"
	"github.com/charleschow/superleague-points/internal/core/scenario"
	"github.com/charleschow/superleague-points/internal/telemetry"
)

// OutputFormat selects how tables are written.
type OutputFormat string

const (
	FormatHuman OutputFormat = "human"
	FormatJSON  OutputFormat = "json"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "scenario",
		Short: "Super League points thresholds",
		Long: `Compute the bonus-point threshold tables for a limited-overs chase.

The winning table lists, per range of overs, the opponent batting bonus and
the points we keep if the chase finishes inside it. The losing table lists,
per range of runs, the batting bonus and total points we take from a loss.

Examples:
  scenario winning --first-runs 150 --first-overs 20 --first-wickets 6 --planned-wickets 5
  scenario losing --first-runs 120 --first-overs 20 --first-wickets 4 --second-runs 100
  scenario preset t20-death-overs --format json
  scenario watch --addr localhost:8780 --scenario winning`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			telemetry.InitWriter(cmd.ErrOrStderr(), telemetry.ParseLogLevel(logLevel))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newComputeCmd(scenario.KindWinning),
		newComputeCmd(scenario.KindLosing),
		newComputeCmd(scenario.KindBoth),
		newPresetCmd(),
		newWatchCmd(),
	)
	return root
}

func writeResult(w io.Writer, format OutputFormat, res scenario.Result, teams display.Teams) error {
	switch format {
	case FormatHuman:
		return display.Render(w, res, teams)
	case FormatJSON:
		return display.RenderJSON(w, res, teams)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
