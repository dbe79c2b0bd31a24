// Package visualization renders the simulation: live in a terminal through
// tcell, and as an infected-percentage plot through go-chart.
package visualization

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/shaigundersen/CoronaSimulator/internal/epidemic"
	"github.com/shaigundersen/CoronaSimulator/internal/grid"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
)

// Glyphs used on the board.
const (
	GlyphEmpty  = '·'
	GlyphAgent  = '●'
	GlyphImmune = '○'
)

var (
	boardStyle       = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorSilver)
	susceptibleStyle = boardStyle.Foreground(tcell.ColorRed)
	fastStyle        = boardStyle.Foreground(tcell.ColorGreen)
	infectedStyle    = boardStyle.Foreground(tcell.ColorBlack)
	immuneStyle      = boardStyle.Foreground(tcell.ColorBlue)
	statusStyle      = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// CellStyle returns the glyph and style for an agent. Infection shows over
// speed; a fast susceptible agent is green.
func CellStyle(a models.AgentSnapshot) (rune, tcell.Style) {
	switch a.Status {
	case models.StatusInfected:
		return GlyphAgent, infectedStyle
	case models.StatusImmune:
		return GlyphImmune, immuneStyle
	}
	if a.Speed == models.SpeedFast {
		return GlyphAgent, fastStyle
	}
	return GlyphAgent, susceptibleStyle
}

// Stepper is the part of the simulation the live view drives.
type Stepper interface {
	Tick() epidemic.Stats
	Snapshot() models.Snapshot
	Last() epidemic.Stats
	Done() bool
}

// TerminalView draws snapshots onto a tcell screen. Boards larger than the
// screen are clipped to the top-left corner; the last row is a status line.
type TerminalView struct {
	screen tcell.Screen
}

// NewTerminalView wraps an initialized screen. The caller owns the screen
// and must call Fini.
func NewTerminalView(screen tcell.Screen) *TerminalView {
	return &TerminalView{screen: screen}
}

// Draw renders one snapshot and its stats.
func (v *TerminalView) Draw(snap models.Snapshot, st epidemic.Stats) {
	w, h := v.screen.Size()
	v.screen.Clear()

	occ := snap.Occupancy()
	rows := min(snap.Size, h-1)
	cols := min(snap.Size, w)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := occ[r][c]
			if idx == grid.Empty {
				v.screen.SetContent(c, r, GlyphEmpty, nil, boardStyle)
				continue
			}
			ch, style := CellStyle(snap.Agents[idx])
			v.screen.SetContent(c, r, ch, nil, style)
		}
	}

	if h > 0 {
		v.drawText(0, h-1, StatusLine(snap, st), statusStyle)
	}
	v.screen.Show()
}

func (v *TerminalView) drawText(x, y int, s string, style tcell.Style) {
	w, _ := v.screen.Size()
	for _, r := range s {
		if x >= w {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// StatusLine formats the one-line summary shown under the board.
func StatusLine(snap models.Snapshot, st epidemic.Stats) string {
	line := fmt.Sprintf("gen %d  infected %.1f%%  S %d  I %d  R %d",
		st.Generation, st.InfectedFraction*100, st.Susceptible, st.Infected, st.Immune)
	if snap.Size > 0 {
		line += fmt.Sprintf("  %dx%d", snap.Size, snap.Size)
	}
	return line + "  [q] quit"
}

// Watch ticks sim every delay and draws each generation. It returns when
// the outbreak is over, after limit generations (0 means none), when the
// user quits with q, Esc or Ctrl-C, or when ctx is cancelled. fn, if
// non-nil, sees every generation's stats. The final frame stays on screen.
func (v *TerminalView) Watch(ctx context.Context, sim Stepper, delay time.Duration, limit int, fn func(epidemic.Stats)) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	v.Draw(sim.Snapshot(), sim.Last())

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for !sim.Done() && (limit == 0 || sim.Last().Generation < limit) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if IsQuitKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				v.screen.Sync()
				v.Draw(sim.Snapshot(), sim.Last())
			}
		case <-ticker.C:
			st := sim.Tick()
			if fn != nil {
				fn(st)
			}
			v.Draw(sim.Snapshot(), st)
		}
	}
	return nil
}

// IsQuitKey reports whether ev ends a live view.
func IsQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
