package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/matzehuels/levelgen/pkg/corridor"
	"github.com/matzehuels/levelgen/pkg/delaunay"
	"github.com/matzehuels/levelgen/pkg/layout"
	"github.com/matzehuels/levelgen/pkg/level"
	"github.com/matzehuels/levelgen/pkg/mst"
)

// triangleLevel has three rooms, one triangle, a two-edge spanning tree and
// one side hall closing the triangle.
func triangleLevel() *level.Level {
	rooms := []layout.Room{
		{Index: 0, Template: "hall", Width: 4, Depth: 2, MaxDoors: 3, Pos: orb.Point{0, 0}},
		{Index: 1, Template: "cell", Width: 2, Depth: 2, Pos: orb.Point{10, 0}},
		{Index: 2, Template: "cell", Width: 2, Depth: 2, Pos: orb.Point{0, 10}},
	}
	vs := []delaunay.Vertex{
		{Pos: rooms[0].Pos, Index: 0},
		{Pos: rooms[1].Pos, Index: 1},
		{Pos: rooms[2].Pos, Index: 2},
	}
	return &level.Level{
		Rooms:     rooms,
		Vertices:  vs,
		Triangles: []delaunay.Triangle{{A: vs[0], B: vs[1], C: vs[2]}},
		Edges: []mst.Edge{
			{Source: 0, Destination: 1, Weight: 10},
			{Source: 0, Destination: 2, Weight: 10},
		},
		Halls: []corridor.Hall{
			{From: 0, To: 1, Kind: corridor.KindSpanning},
			{From: 0, To: 2, Kind: corridor.KindSpanning},
			{From: 1, To: 2, Kind: corridor.KindSide},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(triangleLevel(), Options{})

	wants := []string{
		"graph G {",
		`r0 [label="0", pos="0,0!", width=0.6666666666666666, height=0.3333333333333333]`,
		`r1 [label="1", pos="120,0!"`,
		`r0 -- r1 [` + styleSpanning + `]`,
		`r0 -- r2 [` + styleSpanning + `]`,
		`r1 -- r2 [` + styleSide + `]`,
		`r1 -- r2 [` + styleTriangulation + `]`,
	}
	for _, want := range wants {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `r0 -- r1 [`+styleTriangulation) {
		t.Error("spanning edges should not be repeated as triangulation edges")
	}
	if strings.Contains(dot, "->") {
		t.Error("room graph should be undirected")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(triangleLevel(), Options{Detailed: true, Scale: 1})

	for _, want := range []string{`"0\nhall\ndoors: 3"`, `label="10.0"`, `pos="10,0!"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() detailed missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTFailedHall(t *testing.T) {
	l := triangleLevel()
	l.Failed = []corridor.Hall{{From: 1, To: 2, Kind: corridor.KindSpanning}}
	l.Vertices = l.Vertices[:2]

	dot := ToDOT(l, Options{})
	if strings.Contains(dot, styleFailed) {
		t.Error("halls with out-of-range vertices should be skipped")
	}
	if strings.Contains(dot, "r0 -- r2 ["+styleSpanning) {
		t.Error("spanning edge with out-of-range vertex should be skipped")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(triangleLevel(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
