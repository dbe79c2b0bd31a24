package models

import "github.com/shaigundersen/CoronaSimulator/internal/grid"

// AgentSnapshot is the read-only view of one agent handed to renderers.
type AgentSnapshot struct {
	ID     int           `json:"id"`
	Pos    grid.Position `json:"pos"`
	Status Status        `json:"status"`
	Speed  Speed         `json:"speed"`
}

// Snapshot is a copy of the population after a completed generation.
// Nothing in it aliases engine state.
type Snapshot struct {
	Generation int             `json:"generation"`
	Size       int             `json:"size"`
	Agents     []AgentSnapshot `json:"agents"`
}

// Counts tallies the snapshot by status.
func (s Snapshot) Counts() (susceptible, infected, immune int) {
	for _, a := range s.Agents {
		switch a.Status {
		case StatusSusceptible:
			susceptible++
		case StatusInfected:
			infected++
		case StatusImmune:
			immune++
		}
	}
	return susceptible, infected, immune
}

// InfectedFraction returns infected/population, or 0 for an empty snapshot.
func (s Snapshot) InfectedFraction() float64 {
	if len(s.Agents) == 0 {
		return 0
	}
	_, infected, _ := s.Counts()
	return float64(infected) / float64(len(s.Agents))
}

// Occupancy lays the snapshot out as a size×size matrix of agent indices
// into Agents, with grid.Empty for free cells.
func (s Snapshot) Occupancy() [][]int {
	rows := make([][]int, s.Size)
	for r := range rows {
		rows[r] = make([]int, s.Size)
		for c := range rows[r] {
			rows[r][c] = grid.Empty
		}
	}
	for i, a := range s.Agents {
		rows[a.Pos.Row][a.Pos.Col] = i
	}
	return rows
}
