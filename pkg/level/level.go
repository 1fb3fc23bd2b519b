// Package level defines the serialisable result of one generation run.
//
// A [Level] carries everything downstream consumers need: room anchors and
// floors for the room renderer, corridor tiles with their open-side masks
// for the corridor renderer, and the intermediate graph (triangulation,
// spanning tree, side halls) for debugging and visualisation.
//
// Levels are stored as JSON in caches and as BSON documents in MongoDB; all
// types carry tags for both encodings.
package level

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/levelgen/pkg/corridor"
	"github.com/matzehuels/levelgen/pkg/delaunay"
	"github.com/matzehuels/levelgen/pkg/layout"
	"github.com/matzehuels/levelgen/pkg/mst"
)

// Level is a generated level.
type Level struct {
	// ID is a UUID assigned when the level is generated.
	ID string `json:"id" bson:"_id"`

	// Seed reproduces the level together with the generation options.
	// BSON cannot hold every uint64, so stores persist it separately.
	Seed uint64 `json:"seed" bson:"-"`

	// OptionsHash identifies the generation options the level was built from.
	OptionsHash string `json:"options_hash,omitempty" bson:"options_hash,omitempty"`

	Bounds layout.Bounds `json:"bounds" bson:"bounds"`
	Rooms  []layout.Room `json:"rooms" bson:"rooms"`

	// Triangles is the Delaunay triangulation of room anchors.
	Triangles []delaunay.Triangle `json:"triangles,omitempty" bson:"triangles,omitempty"`

	// Vertices are the unique triangulation vertices; Edges and Halls index
	// into this slice.
	Vertices []delaunay.Vertex `json:"vertices,omitempty" bson:"vertices,omitempty"`

	// Edges is the minimum spanning tree over Vertices.
	Edges []mst.Edge `json:"edges,omitempty" bson:"edges,omitempty"`

	// Halls are the routed corridors, spanning halls first.
	Halls []corridor.Hall `json:"halls,omitempty" bson:"halls,omitempty"`

	// Failed are halls whose endpoints could not be connected.
	Failed []corridor.Hall `json:"failed,omitempty" bson:"failed,omitempty"`

	Tiles []corridor.Tile `json:"tiles" bson:"tiles"`

	Stats     Stats     `json:"stats" bson:"stats"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Stats summarises a generation run.
type Stats struct {
	Rooms            int           `json:"rooms" bson:"rooms"`
	Triangles        int           `json:"triangles" bson:"triangles"`
	SpanningEdges    int           `json:"spanning_edges" bson:"spanning_edges"`
	SideHalls        int           `json:"side_halls" bson:"side_halls"`
	FailedPaths      int           `json:"failed_paths" bson:"failed_paths"`
	Tiles            int           `json:"tiles" bson:"tiles"`
	RemovedTiles     int           `json:"removed_tiles" bson:"removed_tiles"`
	SeparationSweeps int           `json:"separation_sweeps" bson:"separation_sweeps"`
	CorridorRestarts int           `json:"corridor_restarts" bson:"corridor_restarts"`
	Duration         time.Duration `json:"duration_ns" bson:"duration_ns"`
}

// Room returns the room with the given index.
func (l *Level) Room(index int) (layout.Room, bool) {
	for _, r := range l.Rooms {
		if r.Index == index {
			return r, true
		}
	}
	return layout.Room{}, false
}

// Entrances returns the corridor tiles that touch a room floor.
func (l *Level) Entrances() []corridor.Tile {
	var out []corridor.Tile
	for _, t := range l.Tiles {
		if t.Entrance {
			out = append(out, t)
		}
	}
	return out
}

// Marshal encodes the level as JSON.
func Marshal(l *Level) ([]byte, error) {
	return json.Marshal(l)
}

// Unmarshal decodes a level from JSON.
func Unmarshal(data []byte) (*Level, error) {
	var l Level
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode level: %w", err)
	}
	return &l, nil
}

// Write encodes the level as indented JSON.
func Write(w io.Writer, l *Level) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// Read decodes a level from r.
func Read(r io.Reader) (*Level, error) {
	var l Level
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode level: %w", err)
	}
	return &l, nil
}
