package grid

// Direction is a unit offset to one of the eight surrounding cells.
type Direction struct {
	DRow int
	DCol int
}

// The eight compass directions, plus Stay.
var (
	Stay      = Direction{0, 0}
	Up        = Direction{-1, 0}
	Right     = Direction{0, 1}
	Down      = Direction{1, 0}
	Left      = Direction{0, -1}
	UpLeft    = Direction{-1, -1}
	UpRight   = Direction{-1, 1}
	DownRight = Direction{1, 1}
	DownLeft  = Direction{1, -1}
)

// Directions lists the eight neighbor offsets in the fixed order every
// movement and infection pass iterates them. Changing the order changes
// which candidate a seeded run picks.
var Directions = [8]Direction{Up, Right, Left, Down, UpLeft, UpRight, DownRight, DownLeft}

// Step returns the wrapped position reached from p by moving scale cells
// in direction d.
func (g *Grid) Step(p Position, d Direction, scale int) Position {
	return g.Wrap(p.Row+d.DRow*scale, p.Col+d.DCol*scale)
}

// Neighbors returns the eight positions around p at distance scale, in
// Directions order. On small grids some of them may coincide or equal p.
func (g *Grid) Neighbors(p Position, scale int) [8]Position {
	var out [8]Position
	for i, d := range Directions {
		out[i] = g.Step(p, d, scale)
	}
	return out
}
