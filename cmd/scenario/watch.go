package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/charleschow/superleague-points/internal/core/display"
	"github.com/charleschow/superleague-points/internal/core/scenario"
	"github.com/charleschow/superleague-points/internal/events"
	"github.com/charleschow/superleague-points/internal/fanout"
	"github.com/charleschow/superleague-points/internal/telemetry"
)

func newWatchCmd() *cobra.Command {
	var (
		addr string
		kind string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print scenarios as a running server computes them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := scenario.ParseKind(kind)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bus := events.NewBus()
			display.NewObserver(cmd.OutOrStdout()).Attach(bus)

			telemetry.Infof("watch: connecting to %s  scenario=%s", addr, k)
			fanout.NewClient(addr, k, bus).ConnectWithRetry(ctx)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8780", "Server host:port")
	cmd.Flags().StringVar(&kind, "scenario", string(scenario.KindBoth), "Tables to watch (winning, losing, both)")
	return cmd
}
