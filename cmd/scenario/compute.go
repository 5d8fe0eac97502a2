package main

import (
	"github.com/spf13/cobra"

	"github.com/charleschow/superleague-points/internal/core/display"
	"github.com/charleschow/superleague-points/internal/core/scenario"
	"github.com/charleschow/superleague-points/internal/telemetry"
)

var computeShort = map[scenario.Kind]string{
	scenario.KindWinning: "Overs ranges for a successful chase",
	scenario.KindLosing:  "Runs ranges for an unsuccessful chase",
	scenario.KindBoth:    "Both tables",
}

func newComputeCmd(kind scenario.Kind) *cobra.Command {
	var (
		ms     scenario.MatchState
		teams  display.Teams
		format string
	)

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: computeShort[kind],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ms.Validate(); err != nil {
				return err
			}
			res := scenario.Generate(kind, ms)
			telemetry.Debugf("scenario: %s  winning=%d losing=%d", kind, len(res.Winning), len(res.Losing))
			return writeResult(cmd.OutOrStdout(), OutputFormat(format), res, teams)
		},
	}

	f := cmd.Flags()
	f.IntVar(&ms.FirstRuns, "first-runs", 0, "Runs scored batting first")
	f.IntVar(&ms.FirstOvers, "first-overs", 20, "Overs in the innings")
	f.IntVar(&ms.FirstWickets, "first-wickets", 0, "Wickets lost batting first")
	f.IntVar(&ms.SecondRuns, "second-runs", 0, "Runs scored so far in the chase")
	f.IntVar(&ms.SecondWickets, "second-wickets", 0, "Wickets lost so far in the chase")
	f.IntVar(&ms.SecondOvers, "second-overs", 0, "Completed overs in the chase")
	f.IntVar(&ms.SecondBalls, "second-balls", 0, "Balls into the current over (0-5)")
	f.IntVar(&ms.PlannedWickets, "planned-wickets", 0, "Wickets the chase expects to lose")
	f.StringVar(&teams.Batting, "batting", "", "Team batting first")
	f.StringVar(&teams.Chasing, "chasing", "", "Team chasing")
	f.StringVar(&format, "format", string(FormatHuman), "Output format (human, json)")
	cmd.MarkFlagRequired("first-runs")

	return cmd
}
