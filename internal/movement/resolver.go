// Package movement resolves one generation of agent moves into a
// conflict-free assignment of agents to cells.
//
// Every agent picks its destination against the grid as it stood before
// anyone moved, so two agents can want the same free cell. Claims are then
// settled in population order: the first claimant wins, a loser re-rolls
// from its own candidate list a bounded number of times and otherwise
// stays. Because candidates only ever include cells that were free before
// the generation started, plus the agent's own cell, no agent can target a
// cell another agent is standing on and the commit order cannot fail.
package movement

import (
	"github.com/shaigundersen/CoronaSimulator/internal/constants"
	"github.com/shaigundersen/CoronaSimulator/internal/grid"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
)

// Result summarizes one resolved generation.
type Result struct {
	Moved      int // agents that changed cell
	Stayed     int // agents that ended on their starting cell
	Collisions int // claims that lost to an earlier agent, counting re-rolls
	Fallbacks  int // agents forced to stay after exhausting their retries
}

// Resolver moves a population across a grid one generation at a time.
type Resolver struct {
	selector   Selector
	maxRetries int
}

// NewResolver creates a resolver using sel to pick destinations.
func NewResolver(sel Selector) *Resolver {
	return &Resolver{
		selector:   sel,
		maxRetries: constants.MaxCollisionRetries,
	}
}

// MaxRetries returns the re-roll bound applied after a collision.
func (r *Resolver) MaxRetries() int {
	return r.maxRetries
}

// Candidates lists the destinations open to agent a on g: the eight
// neighbors at the agent's speed that are free, in grid.Directions order,
// followed by the agent's own cell. Duplicates are kept when offsets wrap
// onto the same cell.
func Candidates(g *grid.Grid, a *models.Agent) []grid.Position {
	out := make([]grid.Position, 0, len(grid.Directions)+1)
	for _, p := range g.Neighbors(a.Pos, int(a.Speed)) {
		if g.IsFree(p.Row, p.Col) {
			out = append(out, p)
		}
	}
	return append(out, a.Pos)
}

// Resolve runs one generation of movement. Agents are processed in slice
// order for selection, collision handling and commit; agents[i].ID must be
// i and the grid must agree with every agent's position on entry.
func (r *Resolver) Resolve(g *grid.Grid, agents []models.Agent) Result {
	var res Result

	// Phase 1: intents against the pre-move grid.
	candidates := make([][]grid.Position, len(agents))
	intents := make([]grid.Position, len(agents))
	for i := range agents {
		candidates[i] = Candidates(g, &agents[i])
		intents[i] = r.selector.SelectOne(candidates[i])
	}

	// Phase 2: settle claims in order.
	claimed := make(map[grid.Position]struct{}, len(agents))
	final := make([]grid.Position, len(agents))
	for i := range agents {
		dest := intents[i]
		if _, taken := claimed[dest]; taken {
			dest = r.reroll(candidates[i], claimed, agents[i].Pos, &res)
		}
		claimed[dest] = struct{}{}
		final[i] = dest
	}

	// Phase 3: commit, same order.
	for i := range agents {
		a := &agents[i]
		if final[i] == a.Pos {
			res.Stayed++
			continue
		}
		g.Move(a.ID, a.Pos, final[i])
		a.Pos = final[i]
		res.Moved++
	}

	return res
}

// reroll draws again after a lost claim. It gives up after maxRetries
// draws and returns the agent's own cell, which no other agent can claim.
func (r *Resolver) reroll(cands []grid.Position, claimed map[grid.Position]struct{}, home grid.Position, res *Result) grid.Position {
	res.Collisions++
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		dest := r.selector.SelectOne(cands)
		if _, taken := claimed[dest]; !taken {
			return dest
		}
		res.Collisions++
	}
	res.Fallbacks++
	return home
}
