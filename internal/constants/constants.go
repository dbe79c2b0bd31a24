// Package constants provides named constants used throughout the coronasim codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Population defaults
const (
	// DefaultDimension is the side length of the square grid.
	DefaultDimension = 200

	// DefaultCreatures is the number of agents seeded on the grid.
	DefaultCreatures = 1750

	// DefaultSickFraction is the share of agents infected at seed time.
	DefaultSickFraction = 0.04

	// DefaultFastFraction is the share of agents that move 10 cells per tick.
	// Sick and fast agents are drawn independently and may overlap.
	DefaultFastFraction = 0.4
)

// Transmission defaults
const (
	// DefaultHighInfectionProb is used while the infected fraction is above
	// the density threshold.
	DefaultHighInfectionProb = 0.9

	// DefaultLowInfectionProb is used while the infected fraction is at or
	// below the density threshold.
	DefaultLowInfectionProb = 0.1

	// DefaultDensityThreshold is T, the infected fraction that switches
	// between the two probabilities.
	DefaultDensityThreshold = 0.2

	// DefaultRecoveryHorizon is X, the number of generations an agent stays
	// infected before becoming immune.
	DefaultRecoveryHorizon = 15
)

// Movement constants
const (
	// MaxCollisionRetries bounds how often an agent re-rolls after losing a
	// destination to an earlier agent. After that it stays put.
	MaxCollisionRetries = 5
)

// Driver constants
const (
	// DefaultReportEvery is how many generations pass between progress lines
	// printed by the run command.
	DefaultReportEvery = 10

	// DefaultWatchDelayMillis is the pause between frames in the terminal view.
	DefaultWatchDelayMillis = 50
)
