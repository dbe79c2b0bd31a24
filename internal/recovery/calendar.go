// Package recovery tracks how long each infected agent has been sick and
// reports who crosses the recovery horizon.
package recovery

import "fmt"

// NotInfected marks a calendar slot with no live entry.
const NotInfected = -1

// Calendar maps agent slots to the generation they were infected in.
// It is a fixed-size slice indexed by agent ID; entries are added on
// infection and leave only by expiring.
type Calendar struct {
	since   []int
	horizon int
	live    int
}

// New creates a calendar for a population of n agents with recovery
// horizon x generations.
func New(n, x int) *Calendar {
	since := make([]int, n)
	for i := range since {
		since[i] = NotInfected
	}
	return &Calendar{since: since, horizon: x}
}

// Horizon returns X.
func (c *Calendar) Horizon() int {
	return c.horizon
}

// Len returns the number of agents currently in the calendar.
func (c *Calendar) Len() int {
	return c.live
}

// Add registers agent id as infected in the given generation. Adding an
// agent that is already tracked is a defect: counters are never reset
// while infected.
func (c *Calendar) Add(id, generation int) {
	if c.since[id] != NotInfected {
		panic(fmt.Sprintf("recovery: agent %d already infected since generation %d", id, c.since[id]))
	}
	c.since[id] = generation
	c.live++
}

// Contains reports whether agent id is tracked.
func (c *Calendar) Contains(id int) bool {
	return c.since[id] != NotInfected
}

// Elapsed returns how many generations agent id has been infected as of
// generation now.
func (c *Calendar) Elapsed(id, now int) (int, bool) {
	s := c.since[id]
	if s == NotInfected {
		return 0, false
	}
	return now - s, true
}

// Advance closes generation now. Every entry whose elapsed count exceeds
// the horizon is evicted; the evicted IDs are returned in ascending order.
// An agent infected in generation t is returned by Advance(t+X+1).
func (c *Calendar) Advance(now int) []int {
	if c.live == 0 {
		return nil
	}
	var recovered []int
	for id, s := range c.since {
		if s == NotInfected {
			continue
		}
		if now-s > c.horizon {
			c.since[id] = NotInfected
			c.live--
			recovered = append(recovered, id)
		}
	}
	return recovered
}
