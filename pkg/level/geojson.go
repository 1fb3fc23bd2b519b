package level

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/levelgen/pkg/corridor"
)

// Feature kinds written to the "kind" property.
const (
	FeatureRoom = "room"
	FeatureTile = "tile"
	FeatureHall = "hall"
)

// ToGeoJSON exports the level in plane coordinates: rooms and corridor
// tiles as polygons, halls as line strings.
func ToGeoJSON(l *Level) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, r := range l.Rooms {
		f := geojson.NewFeature(r.Floor().ToPolygon())
		f.ID = r.Index
		f.Properties["kind"] = FeatureRoom
		f.Properties["index"] = r.Index
		f.Properties["template"] = r.Template
		if r.MaxDoors > 0 {
			f.Properties["max_doors"] = r.MaxDoors
		}
		fc.Append(f)
	}

	for _, t := range l.Tiles {
		f := geojson.NewFeature(tileBound(t).ToPolygon())
		f.Properties["kind"] = FeatureTile
		f.Properties["open"] = t.Open.String()
		f.Properties["entrance"] = t.Entrance
		fc.Append(f)
	}

	for _, h := range l.Halls {
		if len(h.Path) == 0 {
			continue
		}
		line := make(orb.LineString, 0, len(h.Path)+1)
		if h.From >= 0 && h.From < len(l.Vertices) {
			line = append(line, l.Vertices[h.From].Pos)
		}
		for _, c := range h.Path {
			line = append(line, c.Point())
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = FeatureHall
		f.Properties["hall"] = string(h.Kind)
		f.Properties["from"] = h.From
		f.Properties["to"] = h.To
		fc.Append(f)
	}

	return fc
}

// MarshalGeoJSON encodes [ToGeoJSON] of the level.
func MarshalGeoJSON(l *Level) ([]byte, error) {
	return ToGeoJSON(l).MarshalJSON()
}

func tileBound(t corridor.Tile) orb.Bound {
	p := t.Point()
	return orb.Bound{
		Min: orb.Point{p[0] - 0.5, p[1] - 0.5},
		Max: orb.Point{p[0] + 0.5, p[1] + 0.5},
	}
}
