package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/shaigundersen/CoronaSimulator/internal/constants"
	"github.com/shaigundersen/CoronaSimulator/internal/epidemic"
	"github.com/shaigundersen/CoronaSimulator/internal/visualization"
)

// newScreen opens the terminal for the live view. Tests swap in a
// simulation screen.
var newScreen = tcell.NewScreen

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the simulation live in the terminal",
		Long: `Draw the grid in the terminal and advance one generation per tick.

Susceptible creatures are red (green when fast), infected ones black and
immune ones blue. The view stops on its own when nobody is infected; press
q, Esc or Ctrl-C to quit earlier. Grids larger than the terminal are
clipped, so a smaller --dimension suits most terminals.

Examples:
  coronasim watch --dimension 60 --creatures 900
  coronasim watch --delay 200ms --plot infected.png`,
		RunE: runWatch,
	}

	cmd.Flags().Duration("delay", time.Duration(constants.DefaultWatchDelayMillis)*time.Millisecond, "Delay between generations")
	cmd.Flags().Int("generations", 0, "Stop after N generations (0 = until nobody is infected)")
	cmd.Flags().String("plot", "", "Write a PNG plot of infected % per generation on exit")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	delay, _ := cmd.Flags().GetDuration("delay")
	plot, _ := cmd.Flags().GetString("plot")

	if delay <= 0 {
		return fmt.Errorf("--delay must be positive, got %s", delay)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("generations") {
		cfg.MaxGenerations, _ = cmd.Flags().GetInt("generations")
	}
	if plot != "" {
		if err := checkPlotPath(plot); err != nil {
			return err
		}
	}

	sim, events, err := newSimulation(cmd, cfg)
	if err != nil {
		return err
	}
	defer events.Close()

	screen, err := newScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	hist := epidemic.History{}
	hist.Record(sim.Last())

	view := visualization.NewTerminalView(screen)
	err = view.Watch(ctx, sim, delay, cfg.MaxGenerations, hist.Record)
	screen.Fini()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	out := cmd.OutOrStdout()
	peakGen, peak := hist.Peak()
	fmt.Fprintf(out, "Watched %d generations (seed %d).\n", sim.Generation(), cfg.Seed)
	fmt.Fprintf(out, "  peak infected: %.2f%% at generation %d\n", peak*100, peakGen)

	if plot != "" {
		err := visualization.SaveChart(plot, hist, visualization.DefaultChartOptions())
		switch {
		case errors.Is(err, visualization.ErrTooFewPoints):
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipping plot: %v\n", err)
		case err != nil:
			return fmt.Errorf("failed to write plot: %w", err)
		default:
			fmt.Fprintf(out, "  plot written to %s\n", plot)
		}
	}
	return nil
}
