package movement

import (
	"math/rand"

	"github.com/shaigundersen/CoronaSimulator/internal/grid"
)

// Selector picks one destination out of a non-empty candidate list.
// The last candidate is always the agent's current cell.
type Selector interface {
	SelectOne(candidates []grid.Position) grid.Position
}

// SelectorFunc adapts a plain function to Selector.
type SelectorFunc func(candidates []grid.Position) grid.Position

// SelectOne calls f.
func (f SelectorFunc) SelectOne(candidates []grid.Position) grid.Position {
	return f(candidates)
}

// UniformSelector picks uniformly at random from the candidates.
type UniformSelector struct {
	rng *rand.Rand
}

// NewUniformSelector creates a selector drawing from rng.
func NewUniformSelector(rng *rand.Rand) *UniformSelector {
	return &UniformSelector{rng: rng}
}

// SelectOne returns a uniformly chosen candidate.
func (s *UniformSelector) SelectOne(candidates []grid.Position) grid.Position {
	return candidates[s.rng.Intn(len(candidates))]
}

// StaySelector always keeps the agent where it is.
var StaySelector = SelectorFunc(func(candidates []grid.Position) grid.Position {
	return candidates[len(candidates)-1]
})

// FirstSelector always takes the first candidate, which is the first free
// neighbor in grid.Directions order when there is one.
var FirstSelector = SelectorFunc(func(candidates []grid.Position) grid.Position {
	return candidates[0]
})
