package level

import (
	"bytes"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/levelgen/pkg/corridor"
	"github.com/matzehuels/levelgen/pkg/delaunay"
	"github.com/matzehuels/levelgen/pkg/grid"
	"github.com/matzehuels/levelgen/pkg/layout"
)

// twoRoomLevel is two 3x3 rooms joined by a three-tile corridor.
func twoRoomLevel() *Level {
	return &Level{
		ID:     "6f1c2b7e-3d4a-4c5b-9e8f-0a1b2c3d4e5f",
		Seed:   7,
		Bounds: layout.Bounds{Width: 10, Height: 6},
		Rooms: []layout.Room{
			{Index: 0, Template: "small", Width: 3, Depth: 3, MaxDoors: 2, Pos: orb.Point{-3, 0}},
			{Index: 1, Template: "small", Width: 3, Depth: 3, Pos: orb.Point{3, 0}},
		},
		Vertices: []delaunay.Vertex{
			{Pos: orb.Point{-3, 0}, Index: 0},
			{Pos: orb.Point{3, 0}, Index: 1},
		},
		Halls: []corridor.Hall{{
			From: 0, To: 1, Kind: corridor.KindSpanning,
			Path: []grid.Cell{{X: -2, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}},
		}},
		Tiles: []corridor.Tile{
			{Cell: grid.Cell{X: -1, Y: 0}, Open: corridor.East, Entrance: true},
			{Cell: grid.Cell{X: 0, Y: 0}, Open: corridor.East | corridor.West},
			{Cell: grid.Cell{X: 1, Y: 0}, Open: corridor.West, Entrance: true},
		},
	}
}

func TestRenderASCII(t *testing.T) {
	want := "\n" +
		"\n" +
		" ###   ###\n" +
		" ###+.+###\n" +
		" ###   ###\n" +
		"\n" +
		"\n"

	if got := RenderASCII(twoRoomLevel()); got != want {
		t.Errorf("RenderASCII() =\n%q\nwant\n%q", got, want)
	}
}

func TestGlyphsDimensions(t *testing.T) {
	rows := Glyphs(twoRoomLevel())
	if len(rows) != 7 {
		t.Fatalf("rows = %d, want 7", len(rows))
	}
	for i, row := range rows {
		if len(row) != 11 {
			t.Errorf("row %d has %d columns, want 11", i, len(row))
		}
	}
	if rows[3][5] != GlyphCorridor {
		t.Errorf("centre glyph = %q, want %q", rows[3][5], GlyphCorridor)
	}
}

func TestEntrancesAndRoom(t *testing.T) {
	l := twoRoomLevel()
	if got := len(l.Entrances()); got != 2 {
		t.Errorf("Entrances() = %d, want 2", got)
	}
	r, ok := l.Room(1)
	if !ok || r.Pos != (orb.Point{3, 0}) {
		t.Errorf("Room(1) = %+v, %v", r, ok)
	}
	if _, ok := l.Room(9); ok {
		t.Error("Room(9) should not exist")
	}
}

func TestWriteRead(t *testing.T) {
	l := twoRoomLevel()

	var buf bytes.Buffer
	if err := Write(&buf, l); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.ID != l.ID || got.Seed != l.Seed {
		t.Errorf("identity lost: got %s/%d", got.ID, got.Seed)
	}
	if len(got.Tiles) != 3 || !got.Tiles[0].Entrance || got.Tiles[1].Open != corridor.East|corridor.West {
		t.Errorf("tiles not preserved: %+v", got.Tiles)
	}
	if got.Rooms[0].MaxDoors != 2 {
		t.Errorf("MaxDoors = %d, want 2", got.Rooms[0].MaxDoors)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	if _, err := Unmarshal([]byte("{")); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestToGeoJSON(t *testing.T) {
	data, err := MarshalGeoJSON(twoRoomLevel())
	if err != nil {
		t.Fatalf("MarshalGeoJSON: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("UnmarshalFeatureCollection: %v", err)
	}

	counts := map[string]int{}
	for _, f := range fc.Features {
		counts[f.Properties.MustString("kind")]++
	}
	if counts[FeatureRoom] != 2 || counts[FeatureTile] != 3 || counts[FeatureHall] != 1 {
		t.Errorf("feature counts = %v", counts)
	}

	room := fc.Features[0]
	poly, ok := room.Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("room geometry = %T, want orb.Polygon", room.Geometry)
	}
	if b := poly.Bound(); b.Min != (orb.Point{-4.5, -1.5}) || b.Max != (orb.Point{-1.5, 1.5}) {
		t.Errorf("room bound = %v", b)
	}

	hall := fc.Features[len(fc.Features)-1]
	line, ok := hall.Geometry.(orb.LineString)
	if !ok {
		t.Fatalf("hall geometry = %T, want orb.LineString", hall.Geometry)
	}
	if len(line) != 7 || line[0] != (orb.Point{-3, 0}) {
		t.Errorf("hall line = %v, want 7 points starting at anchor", line)
	}
}
