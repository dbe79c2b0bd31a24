// Package infection implements density-conditioned transmission between
// agents on adjacent cells.
//
// Each generation the infected fraction ρ of the population picks the
// transmission probability: HighProb while ρ exceeds the density threshold,
// LowProb otherwise. The pass then walks the population in ID order and
// every infected agent exposes its eight immediate neighbors; a susceptible
// neighbor catches the infection when a uniform draw p satisfies
// p >= 1 - prob.
package infection

import (
	"math/rand"

	"github.com/shaigundersen/CoronaSimulator/internal/grid"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
	"github.com/shaigundersen/CoronaSimulator/internal/recovery"
)

// Config holds the transmission parameters.
type Config struct {
	// LowProb applies while the infected fraction is at or below Threshold.
	LowProb float64

	// HighProb applies while the infected fraction is above Threshold.
	HighProb float64

	// Threshold is the density threshold T.
	Threshold float64
}

// Transmission records one agent infecting another.
type Transmission struct {
	Generation int           // generation the infection happened in
	From       int           // infecting agent
	To         int           // newly infected agent
	Pos        grid.Position // position of the newly infected agent
	Prob       float64       // probability that was in force
}

// Engine applies transmission rules to a population.
// The engine holds no per-generation state.
type Engine struct {
	config Config
	rng    *rand.Rand
}

// NewEngine creates an infection engine drawing from rng.
func NewEngine(config Config, rng *rand.Rand) *Engine {
	return &Engine{
		config: config,
		rng:    rng,
	}
}

// Config returns the engine's parameters.
func (e *Engine) Config() Config {
	return e.config
}

// Probability returns the transmission probability in force at infected
// fraction rho. The comparison is strict: rho == Threshold uses LowProb.
func (e *Engine) Probability(rho float64) float64 {
	if rho > e.config.Threshold {
		return e.config.HighProb
	}
	return e.config.LowProb
}

// ShouldTransmit applies the transmission rule to draw p in [0, 1).
func ShouldTransmit(p, prob float64) bool {
	return p >= 1-prob
}

// InfectedFraction returns the share of agents that are infected.
func InfectedFraction(agents []models.Agent) float64 {
	if len(agents) == 0 {
		return 0
	}
	n := 0
	for i := range agents {
		if agents[i].IsInfected() {
			n++
		}
	}
	return float64(n) / float64(len(agents))
}

// Spread runs one infection pass for the given generation. It must run
// after movement has been committed. New infections are registered with
// cal and returned in the order they happened.
//
// The probability is fixed once from the infected fraction before the
// pass. Status is read live while walking the population in ID order, so
// an agent infected by a lower-numbered source acts as a source itself
// when its turn comes; one infected by a higher-numbered source has
// already been visited and waits for the next generation. Neighbors are
// visited in grid.Directions order and a draw is consumed only for
// susceptible neighbors.
func (e *Engine) Spread(g *grid.Grid, agents []models.Agent, cal *recovery.Calendar, generation int) []Transmission {
	// Step 1: Fix the probability for the pass.
	rho := InfectedFraction(agents)
	if rho == 0 {
		return nil
	}
	prob := e.Probability(rho)

	// Step 2: Expose every neighbor of every infected agent, in order.
	var out []Transmission
	for src := range agents {
		if !agents[src].IsInfected() {
			continue
		}
		for _, p := range g.Neighbors(agents[src].Pos, 1) {
			idx := g.At(p)
			if idx == grid.Empty {
				continue
			}
			b := &agents[idx]
			if b.Status != models.StatusSusceptible {
				continue
			}
			if !ShouldTransmit(e.rng.Float64(), prob) {
				continue
			}
			b.Infect(generation)
			cal.Add(idx, generation)
			out = append(out, Transmission{
				Generation: generation,
				From:       src,
				To:         idx,
				Pos:        p,
				Prob:       prob,
			})
		}
	}

	return out
}
