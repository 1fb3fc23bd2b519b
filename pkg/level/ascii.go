package level

import (
	"strings"

	"github.com/matzehuels/levelgen/pkg/corridor"
	"github.com/matzehuels/levelgen/pkg/grid"
	"github.com/matzehuels/levelgen/pkg/layout"
)

// Map glyphs.
const (
	GlyphEmpty    = ' '
	GlyphRoom     = '#'
	GlyphCorridor = '.'
	GlyphEntrance = '+'
)

// Glyphs rasterises the level into rows of map glyphs. The first row is the
// northern edge of the bounds, so the map reads with +Y up.
func Glyphs(l *Level) [][]rune {
	hw, hh := l.Bounds.Width/2, l.Bounds.Height/2

	tiles := make(map[grid.Cell]corridor.Tile, len(l.Tiles))
	for _, t := range l.Tiles {
		tiles[t.Cell] = t
	}

	rows := make([][]rune, 0, 2*hh+1)
	for y := hh; y >= -hh; y-- {
		row := make([]rune, 0, 2*hw+1)
		for x := -hw; x <= hw; x++ {
			c := grid.Cell{X: x, Y: y}
			row = append(row, glyphAt(c, tiles, l.Rooms))
		}
		rows = append(rows, row)
	}
	return rows
}

func glyphAt(c grid.Cell, tiles map[grid.Cell]corridor.Tile, rooms []layout.Room) rune {
	if t, ok := tiles[c]; ok {
		if t.Entrance {
			return GlyphEntrance
		}
		return GlyphCorridor
	}
	if layout.InAnyRoom(rooms, c.Point()) {
		return GlyphRoom
	}
	return GlyphEmpty
}

// RenderASCII draws the level as text: '#' room floor, '.' corridor, '+'
// corridor entrance. Trailing blanks are trimmed.
func RenderASCII(l *Level) string {
	var b strings.Builder
	for _, row := range Glyphs(l) {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteByte('\n')
	}
	return b.String()
}
