package models

import (
	"testing"

	"github.com/shaigundersen/CoronaSimulator/internal/grid"
)

func TestStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"susceptible is valid", StatusSusceptible, true},
		{"infected is valid", StatusInfected, true},
		{"immune is valid", StatusImmune, true},
		{"empty string is invalid", Status(""), false},
		{"uppercase is invalid", Status("INFECTED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("Status.Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpeed_String(t *testing.T) {
	if SpeedNormal.String() != "normal" || SpeedFast.String() != "fast" {
		t.Errorf("got %q and %q", SpeedNormal, SpeedFast)
	}
}

func TestAgent_InfectRecover(t *testing.T) {
	a := Agent{Status: StatusSusceptible, InfectedSince: NotInfected}

	if !a.Infect(4) {
		t.Fatal("Infect on susceptible returned false")
	}
	if !a.IsInfected() || a.InfectedSince != 4 {
		t.Fatalf("after Infect: status=%s since=%d", a.Status, a.InfectedSince)
	}
	if a.Infect(5) {
		t.Error("Infect on an infected agent should be a no-op")
	}
	if a.InfectedSince != 4 {
		t.Errorf("re-infection reset InfectedSince to %d", a.InfectedSince)
	}

	if !a.Recover() {
		t.Fatal("Recover on infected returned false")
	}
	if !a.IsImmune() || a.InfectedSince != NotInfected {
		t.Fatalf("after Recover: status=%s since=%d", a.Status, a.InfectedSince)
	}
}

func TestAgent_ImmuneIsTerminal(t *testing.T) {
	a := Agent{Status: StatusImmune, InfectedSince: NotInfected}
	if a.Infect(1) {
		t.Error("immune agent was infected")
	}
	if a.Recover() {
		t.Error("immune agent recovered again")
	}
	if a.Status != StatusImmune {
		t.Errorf("status changed to %s", a.Status)
	}
}

func TestAgent_RecoverSusceptible(t *testing.T) {
	a := Agent{Status: StatusSusceptible}
	if a.Recover() {
		t.Error("susceptible agent became immune without infection")
	}
}

func TestSnapshot_CountsAndFraction(t *testing.T) {
	s := Snapshot{
		Size: 3,
		Agents: []AgentSnapshot{
			{ID: 0, Pos: grid.Position{Row: 0, Col: 0}, Status: StatusInfected},
			{ID: 1, Pos: grid.Position{Row: 1, Col: 1}, Status: StatusSusceptible},
			{ID: 2, Pos: grid.Position{Row: 2, Col: 2}, Status: StatusImmune},
			{ID: 3, Pos: grid.Position{Row: 2, Col: 0}, Status: StatusInfected},
		},
	}
	sus, inf, imm := s.Counts()
	if sus != 1 || inf != 2 || imm != 1 {
		t.Errorf("Counts() = %d,%d,%d", sus, inf, imm)
	}
	if f := s.InfectedFraction(); f != 0.5 {
		t.Errorf("InfectedFraction() = %v, want 0.5", f)
	}
	if f := (Snapshot{}).InfectedFraction(); f != 0 {
		t.Errorf("empty InfectedFraction() = %v", f)
	}
}

func TestSnapshot_Occupancy(t *testing.T) {
	s := Snapshot{
		Size: 2,
		Agents: []AgentSnapshot{
			{ID: 0, Pos: grid.Position{Row: 1, Col: 0}},
		},
	}
	occ := s.Occupancy()
	if occ[1][0] != 0 {
		t.Errorf("occ[1][0] = %d, want 0", occ[1][0])
	}
	for _, p := range []grid.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1}} {
		if occ[p.Row][p.Col] != grid.Empty {
			t.Errorf("occ%v = %d, want Empty", p, occ[p.Row][p.Col])
		}
	}
}

func TestAgent_StatusOnCopies(t *testing.T) {
	byStatus := func(s Status) Agent { return Agent{Status: s} }

	tests := []struct {
		status       Status
		wantInfected bool
		wantImmune   bool
	}{
		{StatusSusceptible, false, false},
		{StatusInfected, true, false},
		{StatusImmune, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := byStatus(tt.status).IsInfected(); got != tt.wantInfected {
				t.Errorf("IsInfected() = %v, want %v", got, tt.wantInfected)
			}
			if got := byStatus(tt.status).IsImmune(); got != tt.wantImmune {
				t.Errorf("IsImmune() = %v, want %v", got, tt.wantImmune)
			}
		})
	}
}
