package corridor

import (
	"strings"

	"github.com/matzehuels/levelgen/pkg/grid"
)

// Side is a bit mask of cardinal tile sides.
type Side uint8

// Cardinal sides. North is +Y and East is +X.
const (
	North Side = 1 << iota
	East
	South
	West

	AllSides = North | East | South | West
)

var sideDirs = [4]struct {
	side Side
	dir  grid.Cell
	name string
}{
	{North, grid.North, "N"},
	{East, grid.East, "E"},
	{South, grid.South, "S"},
	{West, grid.West, "W"},
}

// Has reports whether all sides in o are set.
func (s Side) Has(o Side) bool { return s&o == o }

// Count returns the number of sides set.
func (s Side) Count() int {
	n := 0
	for _, d := range sideDirs {
		if s&d.side != 0 {
			n++
		}
	}
	return n
}

// String renders the mask as compass letters, e.g. "NS", or "-" when empty.
func (s Side) String() string {
	var b strings.Builder
	for _, d := range sideDirs {
		if s&d.side != 0 {
			b.WriteString(d.name)
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// Tile is a corridor floor cell. Open marks the sides that continue into
// another corridor tile; every other side needs a wall. Entrance marks tiles
// that touch a room floor.
type Tile struct {
	grid.Cell `bson:",inline"`
	Open      Side `json:"open" bson:"open"`
	Entrance  bool `json:"entrance,omitempty" bson:"entrance,omitempty"`
}

// Walls returns the closed sides of the tile.
func (t Tile) Walls() Side {
	return AllSides &^ t.Open
}

// openSides computes the open mask of c against the tile set.
func openSides(c grid.Cell, tiles map[grid.Cell]struct{}) Side {
	var s Side
	for _, d := range sideDirs {
		if _, ok := tiles[c.Add(d.dir)]; ok {
			s |= d.side
		}
	}
	return s
}
