// Package config provides unified configuration loading for coronasim.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shaigundersen/CoronaSimulator/internal/constants"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// SimConfig contains all simulation settings.
type SimConfig struct {
	// Dimension is the side length N of the N×N toroidal grid.
	Dimension int `json:"dimension" yaml:"dimension"`

	// Creatures is the population size. Must not exceed Dimension².
	Creatures int `json:"creatures" yaml:"creatures"`

	// SickFraction is the share of the population infected at seed time.
	// Range: 0.0 to 1.0
	SickFraction float64 `json:"sick_fraction" yaml:"sick_fraction"`

	// FastFraction is the share of the population moving 10 cells per tick.
	// Range: 0.0 to 1.0
	FastFraction float64 `json:"fast_fraction" yaml:"fast_fraction"`

	// LowInfectionProb applies while the infected fraction is at or below
	// DensityThreshold.
	LowInfectionProb float64 `json:"low_infection_prob" yaml:"low_infection_prob"`

	// HighInfectionProb applies while the infected fraction is above
	// DensityThreshold.
	HighInfectionProb float64 `json:"high_infection_prob" yaml:"high_infection_prob"`

	// DensityThreshold is T. Range: 0.0 to 1.0
	DensityThreshold float64 `json:"density_threshold" yaml:"density_threshold"`

	// RecoveryHorizon is X, in generations.
	RecoveryHorizon int `json:"recovery_horizon" yaml:"recovery_horizon"`

	// Seed feeds the random source. 0 picks a time-based seed.
	Seed int64 `json:"seed" yaml:"seed"`

	// MaxGenerations stops the driver after this many generations.
	// 0 runs until no agent is infected.
	MaxGenerations int `json:"max_generations" yaml:"max_generations"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LoggingConfig configures coronasim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables event logging to <dir>/events.jsonl.
	// "trace" additionally logs every single transmission to stderr.
	Level string `json:"level" yaml:"level"`

	// Dir is where events.jsonl goes. Defaults to ~/.coronasim.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Default returns a SimConfig with the reference parameters.
func Default() *SimConfig {
	return &SimConfig{
		Dimension:         constants.DefaultDimension,
		Creatures:         constants.DefaultCreatures,
		SickFraction:      constants.DefaultSickFraction,
		FastFraction:      constants.DefaultFastFraction,
		LowInfectionProb:  constants.DefaultLowInfectionProb,
		HighInfectionProb: constants.DefaultHighInfectionProb,
		DensityThreshold:  constants.DefaultDensityThreshold,
		RecoveryHorizon:   constants.DefaultRecoveryHorizon,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.coronasim/config.yaml, or "" if HOME is unknown.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".coronasim", "config.yaml")
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.coronasim/config.yaml -> environment variables
func Load() (*SimConfig, error) {
	config := Default()

	if configPath := DefaultPath(); configPath != "" {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadWithPath is Load with an explicit file in place of the default one.
// An empty path behaves like Load.
func LoadWithPath(path string) (*SimConfig, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in the log directory
	config.Logging.Dir = expandEnvVars(config.Logging.Dir)

	return config, nil
}

// LogDir returns Logging.Dir, or ~/.coronasim when unset.
func (c *SimConfig) LogDir() string {
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	return filepath.Dir(DefaultPath())
}

// Marshal renders the configuration as YAML.
func (c *SimConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// SickCount is the number of agents infected at seed time.
func (c *SimConfig) SickCount() int {
	return int(float64(c.Creatures) * c.SickFraction)
}

// FastCount is the number of fast agents.
func (c *SimConfig) FastCount() int {
	return int(float64(c.Creatures) * c.FastFraction)
}

// Validate checks that the configuration is valid. Every error wraps
// ErrInvalidConfig.
func (c *SimConfig) Validate() error {
	if c.Dimension <= 0 {
		return invalid("dimension must be positive, got %d", c.Dimension)
	}

	if c.Creatures < 0 {
		return invalid("creatures must be non-negative, got %d", c.Creatures)
	}

	if cells := c.Dimension * c.Dimension; c.Creatures > cells {
		return invalid("creatures (%d) exceed grid cells (%d)", c.Creatures, cells)
	}

	fractions := []struct {
		name  string
		value float64
	}{
		{"sick_fraction", c.SickFraction},
		{"fast_fraction", c.FastFraction},
		{"low_infection_prob", c.LowInfectionProb},
		{"high_infection_prob", c.HighInfectionProb},
		{"density_threshold", c.DensityThreshold},
	}
	for _, f := range fractions {
		if math.IsNaN(f.value) || f.value < 0 || f.value > 1 {
			return invalid("%s must be between 0 and 1, got %f", f.name, f.value)
		}
	}

	if n := c.SickCount(); n < 0 || n > c.Creatures {
		return invalid("sick count %d exceeds population %d", n, c.Creatures)
	}
	if n := c.FastCount(); n < 0 || n > c.Creatures {
		return invalid("fast count %d exceeds population %d", n, c.Creatures)
	}

	if c.RecoveryHorizon <= 0 {
		return invalid("recovery_horizon must be positive, got %d", c.RecoveryHorizon)
	}

	if c.MaxGenerations < 0 {
		return invalid("max_generations must be non-negative, got %d", c.MaxGenerations)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return invalid("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *SimConfig) {
	intVars := map[string]*int{
		"CORONASIM_DIMENSION":        &config.Dimension,
		"CORONASIM_CREATURES":        &config.Creatures,
		"CORONASIM_RECOVERY_HORIZON": &config.RecoveryHorizon,
		"CORONASIM_MAX_GENERATIONS":  &config.MaxGenerations,
	}
	for name, dst := range intVars {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	floatVars := map[string]*float64{
		"CORONASIM_SICK_FRACTION":       &config.SickFraction,
		"CORONASIM_FAST_FRACTION":       &config.FastFraction,
		"CORONASIM_LOW_INFECTION_PROB":  &config.LowInfectionProb,
		"CORONASIM_HIGH_INFECTION_PROB": &config.HighInfectionProb,
		"CORONASIM_DENSITY_THRESHOLD":   &config.DensityThreshold,
	}
	for name, dst := range floatVars {
		if v := os.Getenv(name); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	if v := os.Getenv("CORONASIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Seed = n
		}
	}

	if v := os.Getenv("CORONASIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("CORONASIM_LOG_DIR"); v != "" {
		config.Logging.Dir = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
