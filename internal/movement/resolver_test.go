package movement

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/shaigundersen/CoronaSimulator/internal/grid"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
)

// setup places agents at the given positions; speeds default to normal.
func setup(t *testing.T, size int, positions []grid.Position, speeds ...models.Speed) (*grid.Grid, []models.Agent) {
	t.Helper()
	g, err := grid.New(size)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	agents := make([]models.Agent, len(positions))
	for i, p := range positions {
		speed := models.SpeedNormal
		if i < len(speeds) {
			speed = speeds[i]
		}
		agents[i] = models.Agent{ID: i, Pos: p, Speed: speed, Status: models.StatusSusceptible, InfectedSince: models.NotInfected}
		g.Place(i, p)
	}
	return g, agents
}

func assertConsistent(t *testing.T, g *grid.Grid, agents []models.Agent) {
	t.Helper()
	seen := make(map[grid.Position]int, len(agents))
	for i, a := range agents {
		if prev, dup := seen[a.Pos]; dup {
			t.Fatalf("agents %d and %d both on %v", prev, i, a.Pos)
		}
		seen[a.Pos] = i
		if got := g.At(a.Pos); got != i {
			t.Fatalf("agent %d reports %v but grid holds %d there", i, a.Pos, got)
		}
	}
	if g.Occupied() != len(agents) {
		t.Fatalf("grid occupancy %d, population %d", g.Occupied(), len(agents))
	}
}

// prefer picks target whenever it is offered, otherwise stays.
func prefer(target grid.Position) Selector {
	return SelectorFunc(func(c []grid.Position) grid.Position {
		for _, p := range c {
			if p == target {
				return p
			}
		}
		return c[len(c)-1]
	})
}

func TestCandidates(t *testing.T) {
	g, agents := setup(t, 5, []grid.Position{{Row: 2, Col: 2}, {Row: 1, Col: 2}, {Row: 2, Col: 3}})

	got := Candidates(g, &agents[0])
	want := []grid.Position{
		// up (1,2) and right (2,3) are taken
		{Row: 2, Col: 1}, // left
		{Row: 3, Col: 2}, // down
		{Row: 1, Col: 1}, // up-left
		{Row: 1, Col: 3}, // up-right
		{Row: 3, Col: 3}, // down-right
		{Row: 3, Col: 1}, // down-left
		{Row: 2, Col: 2}, // stay
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestCandidates_Surrounded(t *testing.T) {
	g, _ := grid.New(3)
	agents := make([]models.Agent, 0, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			id := len(agents)
			agents = append(agents, models.Agent{ID: id, Pos: grid.Position{Row: r, Col: c}, Speed: models.SpeedNormal})
			g.Place(id, agents[id].Pos)
		}
	}
	got := Candidates(g, &agents[4])
	if len(got) != 1 || got[0] != agents[4].Pos {
		t.Errorf("full grid candidates = %v, want only stay", got)
	}
}

func TestCandidates_FastWrapsOntoSelf(t *testing.T) {
	// on a 5x5 grid every 10-cell offset lands back on the agent
	g, agents := setup(t, 5, []grid.Position{{Row: 3, Col: 0}}, models.SpeedFast)
	got := Candidates(g, &agents[0])
	if len(got) != 1 || got[0] != (grid.Position{Row: 3, Col: 0}) {
		t.Errorf("Candidates = %v, want only stay", got)
	}
}

func TestResolve_FastMove(t *testing.T) {
	g, agents := setup(t, 7, []grid.Position{{Row: 3, Col: 1}}, models.SpeedFast)
	res := NewResolver(FirstSelector).Resolve(g, agents)

	if agents[0].Pos != (grid.Position{Row: 0, Col: 1}) {
		t.Errorf("fast agent moved to %v, want (0,1)", agents[0].Pos)
	}
	if res.Moved != 1 || res.Stayed != 0 {
		t.Errorf("result = %+v", res)
	}
	assertConsistent(t, g, agents)
}

func TestResolve_FirstClaimWins(t *testing.T) {
	target := grid.Position{Row: 2, Col: 2}
	g, agents := setup(t, 5, []grid.Position{{Row: 2, Col: 1}, {Row: 2, Col: 3}})

	r := NewResolver(prefer(target))
	res := r.Resolve(g, agents)

	if agents[0].Pos != target {
		t.Errorf("agent 0 at %v, want %v", agents[0].Pos, target)
	}
	if agents[1].Pos != (grid.Position{Row: 2, Col: 3}) {
		t.Errorf("agent 1 at %v, want to stay at (2,3)", agents[1].Pos)
	}
	wantCollisions := 1 + r.MaxRetries()
	if res.Collisions != wantCollisions || res.Fallbacks != 1 {
		t.Errorf("collisions=%d fallbacks=%d, want %d and 1", res.Collisions, res.Fallbacks, wantCollisions)
	}
	if res.Moved != 1 || res.Stayed != 1 {
		t.Errorf("moved=%d stayed=%d", res.Moved, res.Stayed)
	}
	assertConsistent(t, g, agents)
}

func TestResolve_RerollSucceeds(t *testing.T) {
	target := grid.Position{Row: 2, Col: 2}
	g, agents := setup(t, 5, []grid.Position{{Row: 2, Col: 1}, {Row: 2, Col: 3}})

	// agent 1's first re-roll takes its first candidate, (1,3)
	calls := 0
	sel := SelectorFunc(func(c []grid.Position) grid.Position {
		calls++
		if calls <= 2 {
			return target
		}
		return c[0]
	})
	res := NewResolver(sel).Resolve(g, agents)

	if agents[1].Pos != (grid.Position{Row: 1, Col: 3}) {
		t.Errorf("agent 1 at %v, want (1,3)", agents[1].Pos)
	}
	if res.Collisions != 1 || res.Fallbacks != 0 {
		t.Errorf("collisions=%d fallbacks=%d", res.Collisions, res.Fallbacks)
	}
	assertConsistent(t, g, agents)
}

func TestResolve_CannotEnterOccupiedCell(t *testing.T) {
	// agent 1 stays; agent 0 would like its cell but it is never offered
	g, agents := setup(t, 4, []grid.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}})
	NewResolver(prefer(grid.Position{Row: 0, Col: 1})).Resolve(g, agents)

	if agents[0].Pos != (grid.Position{Row: 0, Col: 0}) {
		t.Errorf("agent 0 entered an occupied cell: %v", agents[0].Pos)
	}
	assertConsistent(t, g, agents)
}

func TestResolve_VacatedCellNotReusedSameTick(t *testing.T) {
	// agent 0 leaves (0,0); agent 1 may not move in because (0,0) was
	// occupied when intents were taken
	g, agents := setup(t, 5, []grid.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}})
	sel := SelectorFunc(func(c []grid.Position) grid.Position {
		for _, p := range c {
			if p == (grid.Position{Row: 1, Col: 0}) || p == (grid.Position{Row: 0, Col: 0}) {
				return p
			}
		}
		return c[len(c)-1]
	})
	NewResolver(sel).Resolve(g, agents)
	if agents[0].Pos != (grid.Position{Row: 1, Col: 0}) {
		t.Fatalf("agent 0 at %v", agents[0].Pos)
	}
	if agents[1].Pos == (grid.Position{Row: 0, Col: 0}) {
		t.Error("agent 1 moved into a cell that was occupied before the generation")
	}
	assertConsistent(t, g, agents)
}

func TestResolve_StaySelector(t *testing.T) {
	g, agents := setup(t, 5, []grid.Position{{Row: 0, Col: 0}, {Row: 4, Col: 4}})
	res := NewResolver(StaySelector).Resolve(g, agents)
	if res.Moved != 0 || res.Stayed != 2 || res.Collisions != 0 {
		t.Errorf("result = %+v", res)
	}
	assertConsistent(t, g, agents)
}

func TestResolve_RandomInvariants(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		agents    int
		fastEvery int
	}{
		{"dense small grid", 6, 30, 3},
		{"full grid", 4, 16, 2},
		{"sparse with fast wrap", 12, 40, 2},
		{"single cell", 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			cells := rng.Perm(tt.size * tt.size)[:tt.agents]
			positions := make([]grid.Position, tt.agents)
			speeds := make([]models.Speed, tt.agents)
			for i, off := range cells {
				positions[i] = grid.Position{Row: off / tt.size, Col: off % tt.size}
				speeds[i] = models.SpeedNormal
				if i%tt.fastEvery == 0 {
					speeds[i] = models.SpeedFast
				}
			}
			g, agents := setup(t, tt.size, positions, speeds...)
			r := NewResolver(NewUniformSelector(rng))

			for gen := 0; gen < 200; gen++ {
				before := make([]grid.Position, len(agents))
				occupied := make(map[grid.Position]bool, len(agents))
				for i := range agents {
					before[i] = agents[i].Pos
					occupied[agents[i].Pos] = true
				}

				res := r.Resolve(g, agents)
				if res.Moved+res.Stayed != len(agents) {
					t.Fatalf("gen %d: moved+stayed=%d, population %d", gen, res.Moved+res.Stayed, len(agents))
				}
				for i, a := range agents {
					if a.Pos != before[i] && occupied[a.Pos] {
						t.Fatalf("gen %d: agent %d moved onto %v which was occupied", gen, i, a.Pos)
					}
				}
				assertConsistent(t, g, agents)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	run := func() []grid.Position {
		positions := []grid.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 5, Col: 5}}
		g, agents := setup(t, 8, positions)
		r := NewResolver(NewUniformSelector(rand.New(rand.NewSource(11))))
		for i := 0; i < 50; i++ {
			r.Resolve(g, agents)
		}
		out := make([]grid.Position, len(agents))
		for i, a := range agents {
			out[i] = a.Pos
		}
		return out
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different runs:\n%v\n%v", a, b)
	}
}

func TestUniformSelector_CoversCandidates(t *testing.T) {
	sel := NewUniformSelector(rand.New(rand.NewSource(3)))
	cands := []grid.Position{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}}
	seen := map[grid.Position]int{}
	for i := 0; i < 300; i++ {
		seen[sel.SelectOne(cands)]++
	}
	for _, c := range cands {
		if seen[c] == 0 {
			t.Errorf("candidate %v never selected", c)
		}
	}
}
