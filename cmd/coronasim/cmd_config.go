package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaigundersen/CoronaSimulator/internal/config"
	"github.com/shaigundersen/CoronaSimulator/internal/pathutil"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect coronasim configuration",
		Long: `Show and validate simulation settings.

Configuration is read from ~/.coronasim/config.yaml (or --config), then
CORONASIM_* environment variables, then command-line flags.

Examples:
  coronasim config show                     # Effective settings
  coronasim config show --yaml > my.yaml    # Starting point for a config file
  coronasim config validate my.yaml         # Check a file before running it
  coronasim config path                     # Where the default file lives`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigValidateCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			asYAML, _ := cmd.Flags().GetBool("yaml")
			out := cmd.OutOrStdout()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(cfg)
			}
			if asYAML {
				data, err := cfg.Marshal()
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				_, err = out.Write(data)
				return err
			}

			fmt.Fprintln(out, "Grid:")
			fmt.Fprintf(out, "  dimension:            %d\n", cfg.Dimension)
			fmt.Fprintf(out, "  creatures:            %d\n", cfg.Creatures)
			fmt.Fprintf(out, "  sick_fraction:        %.3f (%d sick)\n", cfg.SickFraction, cfg.SickCount())
			fmt.Fprintf(out, "  fast_fraction:        %.3f (%d fast)\n", cfg.FastFraction, cfg.FastCount())
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Transmission:")
			fmt.Fprintf(out, "  low_infection_prob:   %.3f\n", cfg.LowInfectionProb)
			fmt.Fprintf(out, "  high_infection_prob:  %.3f\n", cfg.HighInfectionProb)
			fmt.Fprintf(out, "  density_threshold:    %.3f\n", cfg.DensityThreshold)
			fmt.Fprintf(out, "  recovery_horizon:     %d\n", cfg.RecoveryHorizon)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Run:")
			fmt.Fprintf(out, "  seed:                 %s\n", seedOrDefault(cfg.Seed))
			fmt.Fprintf(out, "  max_generations:      %s\n", limitOrDefault(cfg.MaxGenerations))
			fmt.Fprintf(out, "  logging.level:        %s\n", valueOrDefault(cfg.Logging.Level, "info"))
			fmt.Fprintf(out, "  logging.dir:          %s\n", cfg.LogDir())
			return nil
		},
	}

	cmd.Flags().Bool("yaml", false, "Output as YAML")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a config file, or the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			var cfg *config.SimConfig
			var err error
			source := "effective configuration"
			if len(args) == 1 {
				source = pathutil.RedactPath(args[0])
				cfg, err = config.LoadFromFile(args[0])
			} else {
				cfg, err = loadConfig(cmd)
			}
			if err != nil {
				return err
			}

			verr := cfg.Validate()
			if jsonOut {
				result := map[string]interface{}{
					"source": source,
					"valid":  verr == nil,
				}
				if verr != nil {
					result["error"] = verr.Error()
				}
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(result); err != nil {
					return err
				}
				return verr
			}

			if verr != nil {
				return fmt.Errorf("%s: %w", source, verr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", source)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the default config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.DefaultPath())
			return nil
		},
	}
}

func valueOrDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}

func seedOrDefault(seed int64) string {
	if seed == 0 {
		return "(time-based)"
	}
	return fmt.Sprintf("%d", seed)
}

func limitOrDefault(n int) string {
	if n == 0 {
		return "(until nobody is infected)"
	}
	return fmt.Sprintf("%d", n)
}
