// Package grid rasterizes a rectangular level area into unit cells.
//
// A [Grid] is the walkable domain for corridor pathfinding. It covers every
// integer coordinate in
//
//	x ∈ [-w/2, w/2], y ∈ [-h/2, h/2]
//
// using integer division, so a 4×4 area yields 25 cells. A Grid is read-only
// after [Build] and is safe to share between goroutines.
package grid

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
)

// Cell is an integer grid coordinate. X maps to world x, Y to world z.
type Cell struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// Cardinal step offsets in the order north, east, south, west.
var (
	North = Cell{X: 0, Y: 1}
	East  = Cell{X: 1, Y: 0}
	South = Cell{X: 0, Y: -1}
	West  = Cell{X: -1, Y: 0}
)

// Directions lists the four cardinal offsets in a fixed order.
var Directions = [4]Cell{North, East, South, West}

// Add returns c translated by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Neighbors returns the four cardinal neighbours of c in [Directions] order.
func (c Cell) Neighbors() [4]Cell {
	var out [4]Cell
	for i, d := range Directions {
		out[i] = c.Add(d)
	}
	return out
}

// Point returns the cell centre as a world position.
func (c Cell) Point() orb.Point {
	return orb.Point{float64(c.X), float64(c.Y)}
}

// Distance returns the Euclidean distance between two cells.
func (c Cell) Distance(o Cell) float64 {
	return math.Hypot(float64(c.X-o.X), float64(c.Y-o.Y))
}

// CellAt rounds a world position to the nearest cell. Halves round to the
// even neighbour, so x.5 anchors on the positive edge of an even-sized grid
// stay inside it.
func CellAt(p orb.Point) Cell {
	return Cell{X: int(math.RoundToEven(p[0])), Y: int(math.RoundToEven(p[1]))}
}

// Grid is the set of cells covering a level area.
type Grid struct {
	width, height int
	cells         map[Cell]struct{}
}

// Build returns the grid covering a width×height area centred on the origin.
// Non-positive dimensions are treated as zero and yield the single origin cell.
func Build(width, height int) *Grid {
	width, height = max(width, 0), max(height, 0)
	hw, hh := width/2, height/2

	g := &Grid{
		width:  width,
		height: height,
		cells:  make(map[Cell]struct{}, (2*hw+1)*(2*hh+1)),
	}
	for x := -hw; x <= hw; x++ {
		for y := -hh; y <= hh; y++ {
			g.cells[Cell{X: x, Y: y}] = struct{}{}
		}
	}
	return g
}

// Contains reports whether c belongs to the grid.
func (g *Grid) Contains(c Cell) bool {
	if g == nil {
		return false
	}
	_, ok := g.cells[c]
	return ok
}

// Clamp returns the grid cell nearest to c.
func (g *Grid) Clamp(c Cell) Cell {
	if g == nil {
		return c
	}
	hw, hh := g.width/2, g.height/2
	return Cell{X: min(max(c.X, -hw), hw), Y: min(max(c.Y, -hh), hh)}
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	return len(g.cells)
}

// Width returns the width the grid was built with.
func (g *Grid) Width() int { return g.width }

// Height returns the height the grid was built with.
func (g *Grid) Height() int { return g.height }

// Cells returns all cells sorted row-major (by Y, then X).
func (g *Grid) Cells() []Cell {
	if g == nil {
		return nil
	}
	out := make([]Cell, 0, len(g.cells))
	for c := range g.cells {
		out = append(out, c)
	}
	SortCells(out)
	return out
}

// SortCells sorts cells row-major (by Y, then X) in place.
func SortCells(cells []Cell) {
	slices.SortFunc(cells, Compare)
}

// Compare orders cells by Y, then X.
func Compare(a, b Cell) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}
