package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaigundersen/CoronaSimulator/internal/config"
	"github.com/shaigundersen/CoronaSimulator/internal/constants"
	"github.com/shaigundersen/CoronaSimulator/internal/epidemic"
	"github.com/shaigundersen/CoronaSimulator/internal/logging"
	"github.com/shaigundersen/CoronaSimulator/internal/pathutil"
	"github.com/shaigundersen/CoronaSimulator/internal/visualization"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation headless",
		Long: `Run the simulation without a display until no creature is infected
or the generation limit is reached, then print a summary.

Examples:
  coronasim run                                  # Reference parameters
  coronasim run --seed 7 --every 5               # Reproducible, progress every 5 generations
  coronasim run --generations 300 --plot out.png # Cap the run and plot infected %
  coronasim run --json --strict                  # JSON report, verify invariants each generation`,
		RunE: runSimulation,
	}

	cmd.Flags().Int("generations", 0, "Stop after N generations (0 = until nobody is infected)")
	cmd.Flags().String("plot", "", "Write a PNG plot of infected % per generation")
	cmd.Flags().Bool("strict", false, "Check engine invariants after every generation")
	cmd.Flags().Int("every", constants.DefaultReportEvery, "Print progress every K generations (0 = never)")

	return cmd
}

// runReport is the JSON shape of a finished run.
type runReport struct {
	Seed                 int64             `json:"seed"`
	Generations          int               `json:"generations"`
	Done                 bool              `json:"done"`
	Interrupted          bool              `json:"interrupted"`
	Final                epidemic.Stats    `json:"final"`
	PeakGeneration       int               `json:"peak_generation"`
	PeakInfectedFraction float64           `json:"peak_infected_fraction"`
	Plot                 string            `json:"plot,omitempty"`
	History              epidemic.History  `json:"history"`
	Config               *config.SimConfig `json:"config"`
}

func runSimulation(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	plot, _ := cmd.Flags().GetString("plot")
	strict, _ := cmd.Flags().GetBool("strict")
	every, _ := cmd.Flags().GetInt("every")

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

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	out := cmd.OutOrStdout()
	if !jsonOut {
		fmt.Fprintf(out, "coronasim: %dx%d grid, %d creatures, seed %d\n",
			cfg.Dimension, cfg.Dimension, sim.Population(), cfg.Seed)
		printProgress(out, sim.Last())
	}

	hist := epidemic.History{}
	hist.Record(sim.Last())

	err = sim.Run(ctx, cfg.MaxGenerations, func(st epidemic.Stats) error {
		hist.Record(st)
		if strict {
			if err := sim.CheckInvariants(); err != nil {
				return fmt.Errorf("generation %d: invariant violated: %w", st.Generation, err)
			}
		}
		if !jsonOut && every > 0 && st.Generation%every == 0 {
			printProgress(out, st)
		}
		return nil
	})
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}

	if plot != "" {
		err := visualization.SaveChart(plot, hist, visualization.DefaultChartOptions())
		switch {
		case errors.Is(err, visualization.ErrTooFewPoints):
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipping plot: %v\n", err)
			plot = ""
		case err != nil:
			return fmt.Errorf("failed to write plot: %w", err)
		}
	}

	peakGen, peak := hist.Peak()
	if jsonOut {
		return json.NewEncoder(out).Encode(runReport{
			Seed:                 cfg.Seed,
			Generations:          sim.Generation(),
			Done:                 sim.Done(),
			Interrupted:          interrupted,
			Final:                sim.Last(),
			PeakGeneration:       peakGen,
			PeakInfectedFraction: peak,
			Plot:                 plot,
			History:              hist,
			Config:               cfg,
		})
	}

	final := sim.Last()
	fmt.Fprintln(out)
	switch {
	case interrupted:
		fmt.Fprintf(out, "Interrupted after %d generations.\n", sim.Generation())
	case sim.Done():
		fmt.Fprintf(out, "Outbreak over after %d generations.\n", sim.Generation())
	default:
		fmt.Fprintf(out, "Stopped at the %d generation limit.\n", sim.Generation())
	}
	fmt.Fprintf(out, "  peak infected: %.2f%% at generation %d\n", peak*100, peakGen)
	fmt.Fprintf(out, "  final: %d susceptible, %d infected, %d immune\n", final.Susceptible, final.Infected, final.Immune)
	if plot != "" {
		fmt.Fprintf(out, "  plot written to %s\n", plot)
	}
	return nil
}

// newSimulation builds the engine with the configured logging. A zero seed
// is replaced by a time-based one and written back to cfg so runs can be
// reproduced.
func newSimulation(cmd *cobra.Command, cfg *config.SimConfig) (*epidemic.Simulation, *logging.EventLogger, error) {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	events := logging.NewEventLogger(cfg.LogDir(), cfg.Logging.Level)

	sim, err := epidemic.New(*cfg, rand.New(rand.NewSource(cfg.Seed)),
		epidemic.WithLogger(logger),
		epidemic.WithEventLogger(events))
	if err != nil {
		events.Close()
		return nil, nil, err
	}
	return sim, events, nil
}

// checkPlotPath rejects plot paths with the wrong extension, a missing
// parent, or outside the working directory, ~/.coronasim and the temp dir.
func checkPlotPath(path string) error {
	if err := pathutil.ValidateOutputPath(path, ".png"); err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	allowed, err := pathutil.DefaultAllowedOutputDirs(wd)
	if err != nil {
		return err
	}
	return pathutil.ValidatePath(path, allowed)
}

func printProgress(w io.Writer, st epidemic.Stats) {
	fmt.Fprintf(w, "gen %5d  infected %6.2f%%  S %6d  I %6d  R %6d  +%d -%d\n",
		st.Generation, st.InfectedFraction*100,
		st.Susceptible, st.Infected, st.Immune,
		st.NewInfections, st.Recovered)
}
