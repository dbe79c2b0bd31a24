package simulation

import (
	"github.com/shaigundersen/CoronaSimulator/internal/config"
	"github.com/shaigundersen/CoronaSimulator/internal/epidemic"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
	"github.com/shaigundersen/CoronaSimulator/internal/movement"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name        string
	Config      *config.SimConfig // nil = config.Default()
	Seed        int64             // seeds the run's random source; 0 = 1
	Generations int

	// StopWhenDone ends the run early once no agent is infected.
	StopWhenDone bool

	// Placement, when non-nil, seeds the population explicitly instead of
	// drawing it from the configured fractions.
	Placement []AgentSpec

	// Selector, when non-nil, replaces uniform random movement. Use
	// movement.StaySelector to pin agents in place.
	Selector movement.Selector

	// TraceEvents writes events.jsonl into the runner's temp dir.
	TraceEvents bool

	// BeforeGeneration, when non-nil, is called before each generation
	// with the generation about to run.
	BeforeGeneration func(generation int, sim *epidemic.Simulation)
}

// GenerationResult captures the state after one generation.
type GenerationResult struct {
	Stats    epidemic.Stats
	Snapshot models.Snapshot
}

// SimulationResult captures the seeded state, every generation, and the
// simulation itself for further inspection.
type SimulationResult struct {
	Initial     models.Snapshot
	Generations []GenerationResult
	History     epidemic.History
	Sim         *epidemic.Simulation
	EventsPath  string // empty unless TraceEvents was set
}

// Final returns the last captured snapshot, or the seeded one if no
// generation ran.
func (r SimulationResult) Final() models.Snapshot {
	if len(r.Generations) == 0 {
		return r.Initial
	}
	return r.Generations[len(r.Generations)-1].Snapshot
}

// Snapshots returns the seeded snapshot followed by every generation's.
func (r SimulationResult) Snapshots() []models.Snapshot {
	out := make([]models.Snapshot, 0, len(r.Generations)+1)
	out = append(out, r.Initial)
	for _, g := range r.Generations {
		out = append(out, g.Snapshot)
	}
	return out
}
