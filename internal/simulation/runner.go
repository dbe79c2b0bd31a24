package simulation

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/shaigundersen/CoronaSimulator/internal/config"
	"github.com/shaigundersen/CoronaSimulator/internal/epidemic"
	"github.com/shaigundersen/CoronaSimulator/internal/logging"
)

// Runner orchestrates multi-generation simulation experiments against the
// real epidemic engine.
type Runner struct {
	t   *testing.T
	dir string
}

// NewRunner creates a simulation runner with a sandboxed HOME directory.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	return &Runner{t: t, dir: tmpDir}
}

// Run executes the scenario and returns the collected results. Any engine
// invariant violation fails the test immediately.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()

	// Phase 1: Configure the engine.
	cfg := config.Default()
	if scenario.Config != nil {
		cfg = scenario.Config
	}
	seed := scenario.Seed
	if seed == 0 {
		seed = 1
	}

	var opts []epidemic.Option
	if scenario.Placement != nil {
		opts = append(opts, epidemic.WithPlacement(toSeeds(scenario.Placement)))
	}
	if scenario.Selector != nil {
		opts = append(opts, epidemic.WithSelector(scenario.Selector))
	}

	var eventsPath string
	if scenario.TraceEvents {
		dir := filepath.Join(r.dir, scenario.Name)
		el := logging.NewEventLogger(dir, "debug")
		if el == nil {
			r.t.Fatalf("%s: could not open event trace in %s", scenario.Name, dir)
		}
		r.t.Cleanup(el.Close)
		opts = append(opts, epidemic.WithEventLogger(el))
		eventsPath = filepath.Join(dir, logging.EventsFile)
	}

	sim, err := epidemic.New(*cfg, rand.New(rand.NewSource(seed)), opts...)
	if err != nil {
		r.t.Fatalf("%s: epidemic.New: %v", scenario.Name, err)
	}
	if err := sim.CheckInvariants(); err != nil {
		r.t.Fatalf("%s: seeded state: %v", scenario.Name, err)
	}

	result := SimulationResult{
		Initial:    sim.Snapshot(),
		Sim:        sim,
		EventsPath: eventsPath,
	}

	// Phase 2: Run generations.
	for gen := 1; gen <= scenario.Generations; gen++ {
		if scenario.StopWhenDone && sim.Done() {
			break
		}
		if scenario.BeforeGeneration != nil {
			scenario.BeforeGeneration(gen, sim)
		}

		st := sim.Tick()
		if err := sim.CheckInvariants(); err != nil {
			r.t.Fatalf("%s: generation %d: %v", scenario.Name, gen, err)
		}

		result.History.Record(st)
		result.Generations = append(result.Generations, GenerationResult{
			Stats:    st,
			Snapshot: sim.Snapshot(),
		})
	}

	return result
}
