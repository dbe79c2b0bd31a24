// Package grid implements the toroidal occupancy grid the epidemic runs on.
//
// Cells hold agent indices rather than references: the population slice
// owns the agents, and the grid only records which slot sits where. Every
// coordinate wraps modulo the grid size on both axes.
package grid

import (
	"errors"
	"fmt"
)

// Empty marks a cell with no occupant.
const Empty = -1

// ErrInvalidSize is returned when a grid is built with a non-positive size.
var ErrInvalidSize = errors.New("grid size must be positive")

// Position is a (row, col) coordinate on the grid.
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// String returns "(row,col)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Grid is a square toroidal grid of cells.
type Grid struct {
	size  int
	cells []int
	used  int
}

// New creates an empty size×size grid.
func New(size int) (*Grid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, size)
	}
	cells := make([]int, size*size)
	for i := range cells {
		cells[i] = Empty
	}
	return &Grid{size: size, cells: cells}, nil
}

// Size returns the side length of the grid.
func (g *Grid) Size() int {
	return g.size
}

// Cells returns the total number of cells.
func (g *Grid) Cells() int {
	return len(g.cells)
}

// Occupied returns the number of cells holding an agent.
func (g *Grid) Occupied() int {
	return g.used
}

// Wrap normalizes any coordinate pair into [0, size) on both axes. It uses
// true modular reduction, so inputs that wrap several times (a fast agent on
// a small grid) land on the right cell.
func (g *Grid) Wrap(row, col int) Position {
	return Position{Row: mod(row, g.size), Col: mod(col, g.size)}
}

// CellAt returns the index of the agent at (row, col), or Empty.
// The coordinate must already be wrapped.
func (g *Grid) CellAt(row, col int) int {
	return g.cells[g.offset(row, col)]
}

// At is CellAt for a Position.
func (g *Grid) At(p Position) int {
	return g.CellAt(p.Row, p.Col)
}

// IsFree reports whether (row, col) holds no agent.
func (g *Grid) IsFree(row, col int) bool {
	return g.CellAt(row, col) == Empty
}

// Place puts agent idx on p. It panics if the cell is taken: a double
// occupancy is a defect in the caller, never a runtime condition.
func (g *Grid) Place(idx int, p Position) {
	off := g.offset(p.Row, p.Col)
	if cur := g.cells[off]; cur != Empty {
		panic(fmt.Sprintf("grid: place agent %d on %s occupied by agent %d", idx, p, cur))
	}
	g.cells[off] = idx
	g.used++
}

// Vacate clears p. Clearing an empty cell is a no-op.
func (g *Grid) Vacate(p Position) {
	off := g.offset(p.Row, p.Col)
	if g.cells[off] == Empty {
		return
	}
	g.cells[off] = Empty
	g.used--
}

// Move relocates agent idx from one cell to another in a single step.
// Moving onto the same cell leaves the grid unchanged.
func (g *Grid) Move(idx int, from, to Position) {
	if from == to {
		return
	}
	src := g.offset(from.Row, from.Col)
	if g.cells[src] != idx {
		panic(fmt.Sprintf("grid: agent %d is not on %s", idx, from))
	}
	dst := g.offset(to.Row, to.Col)
	if cur := g.cells[dst]; cur != Empty {
		panic(fmt.Sprintf("grid: move agent %d onto %s occupied by agent %d", idx, to, cur))
	}
	g.cells[src] = Empty
	g.cells[dst] = idx
}

// Each calls fn for every occupied cell in row-major order.
func (g *Grid) Each(fn func(p Position, idx int)) {
	for off, idx := range g.cells {
		if idx == Empty {
			continue
		}
		fn(Position{Row: off / g.size, Col: off % g.size}, idx)
	}
}

func (g *Grid) offset(row, col int) int {
	if row < 0 || row >= g.size || col < 0 || col >= g.size {
		panic(fmt.Sprintf("grid: (%d,%d) outside %dx%d, wrap before indexing", row, col, g.size, g.size))
	}
	return row*g.size + col
}

func mod(v, n int) int {
	m := v % n
	if m < 0 {
		m += n
	}
	return m
}
