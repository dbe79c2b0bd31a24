package visualization

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/shaigundersen/CoronaSimulator/internal/config"
	"github.com/shaigundersen/CoronaSimulator/internal/epidemic"
	"github.com/shaigundersen/CoronaSimulator/internal/grid"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
	"github.com/shaigundersen/CoronaSimulator/internal/movement"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)
	return screen
}

func pairSim(t *testing.T, horizon int) *epidemic.Simulation {
	t.Helper()
	cfg := *config.Default()
	cfg.Dimension = 5
	cfg.LowInfectionProb = 0
	cfg.HighInfectionProb = 0
	cfg.RecoveryHorizon = horizon
	sim, err := epidemic.New(cfg, rand.New(rand.NewSource(1)),
		epidemic.WithSelector(movement.StaySelector),
		epidemic.WithPlacement([]epidemic.Seed{
			{Pos: grid.Position{Row: 1, Col: 2}, Status: models.StatusInfected},
			{Pos: grid.Position{Row: 3, Col: 4}, Speed: models.SpeedFast},
			{Pos: grid.Position{Row: 0, Col: 0}},
		}))
	if err != nil {
		t.Fatalf("epidemic.New: %v", err)
	}
	return sim
}

func TestCellStyle(t *testing.T) {
	tests := []struct {
		name   string
		agent  models.AgentSnapshot
		glyph  rune
		wantFg tcell.Color
	}{
		{"susceptible", models.AgentSnapshot{Status: models.StatusSusceptible, Speed: models.SpeedNormal}, GlyphAgent, tcell.ColorRed},
		{"fast susceptible", models.AgentSnapshot{Status: models.StatusSusceptible, Speed: models.SpeedFast}, GlyphAgent, tcell.ColorGreen},
		{"infected", models.AgentSnapshot{Status: models.StatusInfected, Speed: models.SpeedFast}, GlyphAgent, tcell.ColorBlack},
		{"immune", models.AgentSnapshot{Status: models.StatusImmune}, GlyphImmune, tcell.ColorBlue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			glyph, style := CellStyle(tt.agent)
			fg, _, _ := style.Decompose()
			if glyph != tt.glyph || fg != tt.wantFg {
				t.Errorf("CellStyle() = %q/%v, want %q/%v", glyph, fg, tt.glyph, tt.wantFg)
			}
		})
	}
}

func TestDraw(t *testing.T) {
	screen := newScreen(t, 20, 8)
	sim := pairSim(t, 10)
	v := NewTerminalView(screen)

	v.Draw(sim.Snapshot(), sim.Last())

	tests := []struct {
		x, y   int
		glyph  rune
		wantFg tcell.Color
	}{
		{2, 1, GlyphAgent, tcell.ColorBlack},
		{4, 3, GlyphAgent, tcell.ColorGreen},
		{0, 0, GlyphAgent, tcell.ColorRed},
		{1, 1, GlyphEmpty, tcell.ColorSilver},
	}
	for _, tt := range tests {
		mainc, _, style, _ := screen.GetContent(tt.x, tt.y)
		fg, _, _ := style.Decompose()
		if mainc != tt.glyph || fg != tt.wantFg {
			t.Errorf("cell (%d,%d) = %q/%v, want %q/%v", tt.x, tt.y, mainc, fg, tt.glyph, tt.wantFg)
		}
	}

	// outside the 5x5 board
	if mainc, _, _, _ := screen.GetContent(6, 1); mainc == GlyphEmpty {
		t.Error("board drawn past its size")
	}

	var status strings.Builder
	for x := 0; x < 20; x++ {
		mainc, _, _, _ := screen.GetContent(x, 7)
		status.WriteRune(mainc)
	}
	if !strings.HasPrefix(status.String(), "gen 0  infected") {
		t.Errorf("status line = %q", status.String())
	}
}

func TestDraw_ClipsLargeBoard(t *testing.T) {
	screen := newScreen(t, 3, 3)
	v := NewTerminalView(screen)

	snap := models.Snapshot{
		Size: 10,
		Agents: []models.AgentSnapshot{
			{ID: 0, Pos: grid.Position{Row: 9, Col: 9}, Status: models.StatusInfected},
			{ID: 1, Pos: grid.Position{Row: 1, Col: 1}, Status: models.StatusImmune},
		},
	}
	v.Draw(snap, epidemic.Stats{})

	if mainc, _, _, _ := screen.GetContent(1, 1); mainc != GlyphImmune {
		t.Errorf("visible agent not drawn, got %q", mainc)
	}
}

func TestStatusLine(t *testing.T) {
	got := StatusLine(models.Snapshot{Size: 200}, epidemic.Stats{
		Generation: 12, InfectedFraction: 0.125, Susceptible: 3, Infected: 1, Immune: 4,
	})
	want := "gen 12  infected 12.5%  S 3  I 1  R 4  200x200  [q] quit"
	if got != want {
		t.Errorf("StatusLine() = %q, want %q", got, want)
	}
}

func TestWatch_StopsWhenOutbreakEnds(t *testing.T) {
	screen := newScreen(t, 20, 8)
	sim := pairSim(t, 2)
	v := NewTerminalView(screen)

	var seen []int
	err := v.Watch(context.Background(), sim, time.Millisecond, 0, func(st epidemic.Stats) {
		seen = append(seen, st.Generation)
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if !sim.Done() {
		t.Error("Watch returned before the outbreak ended")
	}
	if len(seen) != 3 {
		t.Errorf("saw generations %v, want 1..3", seen)
	}
}

func TestWatch_Limit(t *testing.T) {
	screen := newScreen(t, 20, 8)
	sim := pairSim(t, 50)
	v := NewTerminalView(screen)

	if err := v.Watch(context.Background(), sim, time.Millisecond, 4, nil); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if sim.Generation() != 4 {
		t.Errorf("Generation() = %d, want 4", sim.Generation())
	}
}

func TestWatch_Cancelled(t *testing.T) {
	screen := newScreen(t, 20, 8)
	sim := pairSim(t, 50)
	v := NewTerminalView(screen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := v.Watch(ctx, sim, time.Hour, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Watch() error = %v, want context.Canceled", err)
	}
}

func TestWatch_QuitKey(t *testing.T) {
	screen := newScreen(t, 20, 8)
	sim := pairSim(t, 50)
	v := NewTerminalView(screen)

	if err := screen.PostEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)); err != nil {
		t.Fatalf("PostEvent: %v", err)
	}
	if err := v.Watch(context.Background(), sim, time.Hour, 0, nil); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if sim.Generation() != 0 {
		t.Errorf("Generation() = %d after quit, want 0", sim.Generation())
	}
}

func TestIsQuitKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want bool
	}{
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), true},
		{"Q", tcell.NewEventKey(tcell.KeyRune, 'Q', tcell.ModNone), true},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), true},
		{"ctrl-c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), true},
		{"other rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), false},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuitKey(tt.ev); got != tt.want {
				t.Errorf("IsQuitKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func history(fractions ...float64) epidemic.History {
	var h epidemic.History
	for i, f := range fractions {
		h.Record(epidemic.Stats{Generation: i + 1, InfectedFraction: f})
	}
	return h
}

func TestRenderChart(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderChart(history(0.04, 0.2, 0.35, 0.1, 0), DefaultChartOptions(), &buf); err != nil {
		t.Fatalf("RenderChart() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Errorf("output is not a PNG (%d bytes)", buf.Len())
	}
}

func TestRenderChart_TooFewPoints(t *testing.T) {
	var buf bytes.Buffer
	err := RenderChart(history(0.5), DefaultChartOptions(), &buf)
	if !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("RenderChart() error = %v, want ErrTooFewPoints", err)
	}
}

func TestSaveChart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "infected.png")

	if err := SaveChart(path, history(0.1, 0.2, 0), DefaultChartOptions()); err != nil {
		t.Fatalf("SaveChart() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Error("saved file is not a PNG")
	}

	if err := SaveChart(filepath.Join(dir, "infected.jpg"), history(0.1, 0.2), DefaultChartOptions()); err == nil {
		t.Error("SaveChart() accepted a non-png path")
	}
}
