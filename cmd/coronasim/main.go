package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/shaigundersen/CoronaSimulator/internal/config"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coronasim",
		Short: "Corona simulator - epidemic spread on a toroidal grid",
		Long: `coronasim simulates an epidemic among creatures wandering a wrap-around grid.

Each generation every creature moves, infected creatures expose their
eight neighbors, and creatures sick for longer than the recovery horizon
become immune. Transmission switches between a low and a high probability
depending on how much of the population is currently infected.`,
		SilenceUsage: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newWatchCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

// addGlobalFlags registers the persistent flags shared by every subcommand.
func addGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.Bool("json", false, "Output as JSON")
	f.String("config", "", "Config file (default ~/.coronasim/config.yaml)")
	f.String("log-level", "", "Log level: info, debug, trace")

	// Parameter overrides; applied only when set.
	f.Int("dimension", 0, "Grid side length N")
	f.Int("creatures", 0, "Population size")
	f.Float64("sick-fraction", 0, "Fraction of creatures sick at start")
	f.Float64("fast-fraction", 0, "Fraction of creatures that move 10 cells")
	f.Float64("low-prob", 0, "Infection probability at or below the density threshold")
	f.Float64("high-prob", 0, "Infection probability above the density threshold")
	f.Float64("threshold", 0, "Density threshold T")
	f.Int("recovery", 0, "Recovery horizon X in generations")
	f.Int64("seed", 0, "Random seed (0 = time-based)")
}

// loadConfig resolves the effective configuration:
// defaults -> config file -> CORONASIM_* env -> flags.
func loadConfig(cmd *cobra.Command) (*config.SimConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	ints := map[string]*int{
		"dimension": &cfg.Dimension,
		"creatures": &cfg.Creatures,
		"recovery":  &cfg.RecoveryHorizon,
	}
	for name, dst := range ints {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	floats := map[string]*float64{
		"sick-fraction": &cfg.SickFraction,
		"fast-fraction": &cfg.FastFraction,
		"low-prob":      &cfg.LowInfectionProb,
		"high-prob":     &cfg.HighInfectionProb,
		"threshold":     &cfg.DensityThreshold,
	}
	for name, dst := range floats {
		if flags.Changed(name) {
			*dst, _ = flags.GetFloat64(name)
		}
	}

	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}

	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
