package simulation

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"

	"github.com/shaigundersen/CoronaSimulator/internal/grid"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
)

// AssertOccupancyInvariant asserts that no two agents share a cell in any
// captured snapshot.
func AssertOccupancyInvariant(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, snap := range result.Snapshots() {
		seen := make(map[grid.Position]int, len(snap.Agents))
		for _, a := range snap.Agents {
			if other, ok := seen[a.Pos]; ok {
				t.Errorf("AssertOccupancyInvariant: generation %d: agents %d and %d share %s", snap.Generation, other, a.ID, a.Pos)
			}
			seen[a.Pos] = a.ID
			if a.Pos.Row < 0 || a.Pos.Row >= snap.Size || a.Pos.Col < 0 || a.Pos.Col >= snap.Size {
				t.Errorf("AssertOccupancyInvariant: generation %d: agent %d at %s outside %dx%d", snap.Generation, a.ID, a.Pos, snap.Size, snap.Size)
			}
		}
	}
}

// AssertConservation asserts that the population size never changes.
func AssertConservation(t *testing.T, result SimulationResult) {
	t.Helper()
	want := len(result.Initial.Agents)
	for _, gr := range result.Generations {
		if got := len(gr.Snapshot.Agents); got != want {
			t.Errorf("AssertConservation: generation %d: population %d, want %d", gr.Stats.Generation, got, want)
		}
		st := gr.Stats
		if total := st.Susceptible + st.Infected + st.Immune; total != want {
			t.Errorf("AssertConservation: generation %d: status counts sum to %d, want %d", st.Generation, total, want)
		}
	}
}

// AssertImmunityMonotonic asserts that an agent never leaves the immune
// state once it has entered it.
func AssertImmunityMonotonic(t *testing.T, result SimulationResult) {
	t.Helper()
	immuneSince := make(map[int]int)
	for _, snap := range result.Snapshots() {
		for _, a := range snap.Agents {
			since, was := immuneSince[a.ID]
			switch {
			case a.Status == models.StatusImmune && !was:
				immuneSince[a.ID] = snap.Generation
			case a.Status != models.StatusImmune && was:
				t.Errorf("AssertImmunityMonotonic: agent %d immune since generation %d is %s at generation %d", a.ID, since, a.Status, snap.Generation)
			}
		}
	}
}

// AssertNeverInfected asserts that an agent stays uninfected throughout.
func AssertNeverInfected(t *testing.T, result SimulationResult, id int) {
	t.Helper()
	for _, snap := range result.Snapshots() {
		if snap.Agents[id].Status == models.StatusInfected {
			t.Errorf("AssertNeverInfected: agent %d infected at generation %d", id, snap.Generation)
			return
		}
	}
}

// AssertInfectedAt asserts that an agent is first infected in exactly the
// given generation.
func AssertInfectedAt(t *testing.T, result SimulationResult, id, generation int) {
	t.Helper()
	got := firstGeneration(result, id, models.StatusInfected)
	if got != generation {
		t.Errorf("AssertInfectedAt: agent %d first infected at generation %d, want %d", id, got, generation)
	}
}

// AssertImmuneAt asserts that an agent first becomes immune in exactly the
// given generation.
func AssertImmuneAt(t *testing.T, result SimulationResult, id, generation int) {
	t.Helper()
	got := firstGeneration(result, id, models.StatusImmune)
	if got != generation {
		t.Errorf("AssertImmuneAt: agent %d first immune at generation %d, want %d", id, got, generation)
	}
}

// AssertEventuallyClear asserts that the run ended with no infected agents.
func AssertEventuallyClear(t *testing.T, result SimulationResult) {
	t.Helper()
	if _, infected, _ := result.Final().Counts(); infected != 0 {
		t.Errorf("AssertEventuallyClear: %d agents still infected after generation %d", infected, result.Final().Generation)
	}
}

// AssertEventCount asserts that the event trace holds at least min events
// of the given kind.
func AssertEventCount(t *testing.T, result SimulationResult, kind string, min int) {
	t.Helper()
	if result.EventsPath == "" {
		t.Fatal("AssertEventCount: scenario did not trace events")
	}
	f, err := os.Open(result.EventsPath)
	if err != nil {
		t.Fatalf("AssertEventCount: %v", err)
	}
	defer f.Close()

	count := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev struct {
			Event string `json:"event"`
		}
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("AssertEventCount: malformed line %q: %v", sc.Text(), err)
		}
		if ev.Event == kind {
			count++
		}
	}
	if count < min {
		t.Errorf("AssertEventCount: %d %q events, want at least %d", count, kind, min)
	}
}

// firstGeneration returns the first captured generation where agent id has
// status, or -1.
func firstGeneration(result SimulationResult, id int, status models.Status) int {
	for _, snap := range result.Snapshots() {
		if snap.Agents[id].Status == status {
			return snap.Generation
		}
	}
	return -1
}
