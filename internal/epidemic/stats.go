package epidemic

import (
	"errors"
	"fmt"

	"github.com/shaigundersen/CoronaSimulator/internal/grid"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
)

// Stats summarizes the state after a generation.
type Stats struct {
	Generation       int     `json:"generation"`
	Susceptible      int     `json:"susceptible"`
	Infected         int     `json:"infected"`
	Immune           int     `json:"immune"`
	InfectedFraction float64 `json:"infected_fraction"`

	// Per-generation activity; zero for the seeded state.
	Moved         int `json:"moved"`
	Collisions    int `json:"collisions"`
	Fallbacks     int `json:"fallbacks"`
	NewInfections int `json:"new_infections"`
	Recovered     int `json:"recovered"`
}

func (s *Simulation) stats() Stats {
	st := Stats{
		Generation:       s.generation,
		Infected:         s.infected,
		InfectedFraction: s.InfectedFraction(),
	}
	for i := range s.agents {
		switch s.agents[i].Status {
		case models.StatusSusceptible:
			st.Susceptible++
		case models.StatusImmune:
			st.Immune++
		}
	}
	return st
}

// Snapshot copies the population for renderers and plots.
func (s *Simulation) Snapshot() models.Snapshot {
	out := models.Snapshot{
		Generation: s.generation,
		Size:       s.grid.Size(),
		Agents:     make([]models.AgentSnapshot, len(s.agents)),
	}
	for i, a := range s.agents {
		out.Agents[i] = models.AgentSnapshot{
			ID:     a.ID,
			Pos:    a.Pos,
			Status: a.Status,
			Speed:  a.Speed,
		}
	}
	return out
}

// CheckInvariants verifies that grid and population agree, that no cell
// holds two agents, and that the calendar tracks exactly the infected
// agents, none of them past the recovery horizon. A non-nil result is a defect in the engine.
func (s *Simulation) CheckInvariants() error {
	var errs []error

	if got := s.grid.Occupied(); got != len(s.agents) {
		errs = append(errs, fmt.Errorf("grid holds %d agents, population is %d", got, len(s.agents)))
	}

	infected := 0
	for i, a := range s.agents {
		if a.ID != i {
			errs = append(errs, fmt.Errorf("agent in slot %d has id %d", i, a.ID))
		}
		if occ := s.grid.At(a.Pos); occ != i {
			errs = append(errs, fmt.Errorf("agent %d reports %s but the cell holds %d", i, a.Pos, occ))
		}
		if a.IsInfected() {
			infected++
		}
		if a.IsInfected() != s.calendar.Contains(i) {
			errs = append(errs, fmt.Errorf("agent %d is %s but calendar tracking is %v", i, a.Status, s.calendar.Contains(i)))
		}
		if n, ok := s.calendar.Elapsed(i, s.generation); ok && n > s.calendar.Horizon() {
			errs = append(errs, fmt.Errorf("agent %d infected for %d generations, past horizon %d", i, n, s.calendar.Horizon()))
		}
	}

	s.grid.Each(func(p grid.Position, idx int) {
		if idx < 0 || idx >= len(s.agents) || s.agents[idx].Pos != p {
			errs = append(errs, fmt.Errorf("cell %s holds agent %d which is elsewhere", p, idx))
		}
	})

	if infected != s.infected {
		errs = append(errs, fmt.Errorf("infected counter %d, actual %d", s.infected, infected))
	}

	return errors.Join(errs...)
}

// History is the infected fraction per generation, as recorded by a driver.
type History struct {
	Generations       []float64 `json:"generations"`
	InfectedFractions []float64 `json:"infected_fractions"`
}

// Record appends a generation.
func (h *History) Record(st Stats) {
	h.Generations = append(h.Generations, float64(st.Generation))
	h.InfectedFractions = append(h.InfectedFractions, st.InfectedFraction)
}

// Len returns the number of recorded generations.
func (h *History) Len() int {
	return len(h.Generations)
}

// Peak returns the highest infected fraction and the generation it
// occurred in.
func (h *History) Peak() (generation int, fraction float64) {
	for i, f := range h.InfectedFractions {
		if f > fraction {
			fraction = f
			generation = int(h.Generations[i])
		}
	}
	return generation, fraction
}
