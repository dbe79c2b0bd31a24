package models

import "github.com/shaigundersen/CoronaSimulator/internal/grid"

// Status is an agent's infection state.
type Status string

const (
	StatusSusceptible Status = "susceptible" // can be infected
	StatusInfected    Status = "infected"    // infectious until the recovery horizon
	StatusImmune      Status = "immune"      // terminal
)

// Valid returns true if the status is a recognized value.
func (s Status) Valid() bool {
	switch s {
	case StatusSusceptible, StatusInfected, StatusImmune:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Speed is the number of cells an agent covers per move.
type Speed int

const (
	SpeedNormal Speed = 1
	SpeedFast   Speed = 10
)

// String returns "normal" or "fast".
func (s Speed) String() string {
	if s == SpeedFast {
		return "fast"
	}
	return "normal"
}

// NotInfected is the InfectedSince value of an agent that is not infected.
const NotInfected = -1

// Agent is one member of the population. ID equals the agent's slot in the
// population slice and is what the grid stores.
type Agent struct {
	ID    int           `json:"id"`
	Pos   grid.Position `json:"pos"`
	Speed Speed         `json:"speed"`

	Status Status `json:"status"`

	// InfectedSince is the generation the agent was infected in,
	// or NotInfected.
	InfectedSince int `json:"infected_since"`
}

// Infect marks a susceptible agent infected at the given generation.
// It reports false, and changes nothing, for any other status.
func (a *Agent) Infect(generation int) bool {
	if a.Status != StatusSusceptible {
		return false
	}
	a.Status = StatusInfected
	a.InfectedSince = generation
	return true
}

// Recover makes an infected agent permanently immune.
func (a *Agent) Recover() bool {
	if a.Status != StatusInfected {
		return false
	}
	a.Status = StatusImmune
	a.InfectedSince = NotInfected
	return true
}

// IsInfected reports whether the agent is currently infectious.
func (a Agent) IsInfected() bool { return a.Status == StatusInfected }

// IsImmune reports whether the agent has recovered.
func (a Agent) IsImmune() bool { return a.Status == StatusImmune }
