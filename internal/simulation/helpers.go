package simulation

import (
	"github.com/shaigundersen/CoronaSimulator/internal/config"
	"github.com/shaigundersen/CoronaSimulator/internal/epidemic"
	"github.com/shaigundersen/CoronaSimulator/internal/grid"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
)

// AgentSpec is a flat builder for placing one agent in a scenario.
type AgentSpec struct {
	Row, Col int
	Infected bool
	Immune   bool
	Fast     bool
}

// ToSeed converts an AgentSpec into an epidemic.Seed.
func (a AgentSpec) ToSeed() epidemic.Seed {
	sd := epidemic.Seed{
		Pos:    grid.Position{Row: a.Row, Col: a.Col},
		Status: models.StatusSusceptible,
		Speed:  models.SpeedNormal,
	}
	switch {
	case a.Infected:
		sd.Status = models.StatusInfected
	case a.Immune:
		sd.Status = models.StatusImmune
	}
	if a.Fast {
		sd.Speed = models.SpeedFast
	}
	return sd
}

// SmallConfig returns a 30x30 configuration with a dense population that
// produces collisions and an outbreak within a few dozen generations.
func SmallConfig() *config.SimConfig {
	cfg := config.Default()
	cfg.Dimension = 30
	cfg.Creatures = 450
	cfg.SickFraction = 0.05
	cfg.FastFraction = 0.4
	cfg.RecoveryHorizon = 8
	return cfg
}

// PairConfig returns a 5x5 configuration for explicitly placed scenarios
// with the given transmission probabilities and density threshold.
func PairConfig(low, high, threshold float64) *config.SimConfig {
	cfg := config.Default()
	cfg.Dimension = 5
	cfg.LowInfectionProb = low
	cfg.HighInfectionProb = high
	cfg.DensityThreshold = threshold
	return cfg
}

func toSeeds(specs []AgentSpec) []epidemic.Seed {
	if specs == nil {
		return nil
	}
	seeds := make([]epidemic.Seed, len(specs))
	for i, s := range specs {
		seeds[i] = s.ToSeed()
	}
	return seeds
}
