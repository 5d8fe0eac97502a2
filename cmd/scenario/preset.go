package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/charleschow/superleague-points/internal/config"
	"github.com/charleschow/superleague-points/internal/core/display"
	"github.com/charleschow/superleague-points/internal/core/scenario"
)

func newPresetCmd() *cobra.Command {
	var (
		presetsPath string
		override    string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "preset [name]",
		Short: "List presets, or compute one by name",
		Long: `Without a name, list the configured presets. With a name, compute the
preset's tables. --scenario overrides the preset's default table.

Presets come from --presets, then PRESETS_PATH, then the built-in set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if presetsPath == "" {
				presetsPath = config.Load().PresetsPath
			}
			presets, err := config.LoadPresets(presetsPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tSCENARIO\tMATCH")
				for _, p := range presets.Matches {
					fmt.Fprintf(tw, "%s\t%s\t%s v %s\n", p.Name, p.Kind(),
						display.HeaderName(p.Batting), display.HeaderName(p.Chasing))
				}
				return tw.Flush()
			}

			p, ok := presets.ByName(args[0])
			if !ok {
				return fmt.Errorf("preset %q not found", args[0])
			}
			kind := p.Kind()
			if override != "" {
				if kind, err = scenario.ParseKind(override); err != nil {
					return err
				}
			}

			res := scenario.Generate(kind, p.State)
			return writeResult(out, OutputFormat(format), res, display.Teams{Batting: p.Batting, Chasing: p.Chasing})
		},
	}

	cmd.Flags().StringVar(&presetsPath, "presets", "", "Presets YAML file")
	cmd.Flags().StringVar(&override, "scenario", "", "Override the preset's scenario (winning, losing, both)")
	cmd.Flags().StringVar(&format, "format", string(FormatHuman), "Output format (human, json)")
	return cmd
}
