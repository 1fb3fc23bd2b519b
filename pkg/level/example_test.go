package level_test

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/matzehuels/levelgen/pkg/corridor"
	"github.com/matzehuels/levelgen/pkg/grid"
	"github.com/matzehuels/levelgen/pkg/layout"
	"github.com/matzehuels/levelgen/pkg/level"
)

func ExampleRenderASCII() {
	l := &level.Level{
		Bounds: layout.Bounds{Width: 6, Height: 2},
		Rooms: []layout.Room{
			{Width: 1, Depth: 1, Pos: orb.Point{-2, 0}},
			{Width: 1, Depth: 1, Pos: orb.Point{2, 0}},
		},
		Tiles: []corridor.Tile{
			{Cell: grid.Cell{X: -1, Y: 0}, Open: corridor.East, Entrance: true},
			{Cell: grid.Cell{X: 0, Y: 0}, Open: corridor.East | corridor.West},
			{Cell: grid.Cell{X: 1, Y: 0}, Open: corridor.West, Entrance: true},
		},
	}
	fmt.Print(level.RenderASCII(l))
	// Output:
	//
	//  #+.+#
	//
}
