package epidemic

import (
	"fmt"
	"math/rand"

	"github.com/shaigundersen/CoronaSimulator/internal/config"
	"github.com/shaigundersen/CoronaSimulator/internal/grid"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
)

// Seed places one agent explicitly.
type Seed struct {
	Pos    grid.Position
	Status models.Status // empty means susceptible
	Speed  models.Speed  // zero means normal
}

// seedRandom scatters cfg.Creatures agents over distinct random cells, then
// independently draws SickCount of them to start infected and FastCount of
// them to be fast. The two sets may overlap.
func seedRandom(g *grid.Grid, cfg *config.SimConfig, rng *rand.Rand) ([]models.Agent, error) {
	n := cfg.Creatures
	cells := rng.Perm(g.Cells())[:n]

	sick := make([]bool, n)
	for _, i := range rng.Perm(n)[:cfg.SickCount()] {
		sick[i] = true
	}
	fast := make([]bool, n)
	for _, i := range rng.Perm(n)[:cfg.FastCount()] {
		fast[i] = true
	}

	agents := make([]models.Agent, n)
	size := g.Size()
	for i, off := range cells {
		a := models.Agent{
			ID:            i,
			Pos:           grid.Position{Row: off / size, Col: off % size},
			Speed:         models.SpeedNormal,
			Status:        models.StatusSusceptible,
			InfectedSince: models.NotInfected,
		}
		if fast[i] {
			a.Speed = models.SpeedFast
		}
		if sick[i] {
			a.Infect(0)
		}
		agents[i] = a
		g.Place(i, a.Pos)
	}
	return agents, nil
}

// placeSeeds builds the population from explicit seeds in order.
func placeSeeds(g *grid.Grid, seeds []Seed) ([]models.Agent, error) {
	agents := make([]models.Agent, len(seeds))
	for i, sd := range seeds {
		p := sd.Pos
		if p.Row < 0 || p.Row >= g.Size() || p.Col < 0 || p.Col >= g.Size() {
			return nil, invalidf("seed %d at %s is outside the %dx%d grid", i, p, g.Size(), g.Size())
		}
		if other := g.At(p); other != grid.Empty {
			return nil, invalidf("seeds %d and %d share cell %s", other, i, p)
		}

		status := sd.Status
		if status == "" {
			status = models.StatusSusceptible
		}
		if !status.Valid() {
			return nil, invalidf("seed %d has unknown status %q", i, status)
		}
		speed := sd.Speed
		if speed == 0 {
			speed = models.SpeedNormal
		}
		if speed != models.SpeedNormal && speed != models.SpeedFast {
			return nil, invalidf("seed %d has unsupported speed %d", i, speed)
		}

		a := models.Agent{ID: i, Pos: p, Speed: speed, Status: status, InfectedSince: models.NotInfected}
		if status == models.StatusInfected {
			a.InfectedSince = 0
		}
		agents[i] = a
		g.Place(i, p)
	}
	return agents, nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", config.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
