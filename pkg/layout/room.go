package layout

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Epsilon is the tolerance used when testing whether a point lies on a room floor.
const Epsilon = 1e-4

// Template describes a room shape that can be instantiated by [Place].
type Template struct {
	Name     string  `json:"name" toml:"name" bson:"name"`
	Width    float64 `json:"width" toml:"width" bson:"width"`
	Depth    float64 `json:"depth" toml:"depth" bson:"depth"`
	MaxDoors int     `json:"max_doors,omitempty" toml:"max_doors" bson:"max_doors,omitempty"`
}

// Valid reports whether the template has a positive floor area.
func (t Template) Valid() bool {
	return t.Width > 0 && t.Depth > 0
}

// Room is a placed room instance. Pos is the floor centre; Pos[0] is world x
// and Pos[1] is world z.
type Room struct {
	Index    int       `json:"index" bson:"index"`
	Template string    `json:"template" bson:"template"`
	Width    float64   `json:"width" bson:"width"`
	Depth    float64   `json:"depth" bson:"depth"`
	MaxDoors int       `json:"max_doors,omitempty" bson:"max_doors,omitempty"`
	Pos      orb.Point `json:"pos" bson:"pos"`
}

// Floor returns the axis-aligned floor region centred on the room position.
func (r Room) Floor() orb.Bound {
	hw, hd := r.Width/2, r.Depth/2
	return orb.Bound{
		Min: orb.Point{r.Pos[0] - hw, r.Pos[1] - hd},
		Max: orb.Point{r.Pos[0] + hw, r.Pos[1] + hd},
	}
}

// Overlaps reports whether two room floors intersect. Touching edges count.
func (r Room) Overlaps(o Room) bool {
	return r.Floor().Intersects(o.Floor())
}

// ContainsPoint reports whether p lies on the room floor, boundary included.
// Points up to Epsilon outside the floor also count, so grid cells computed
// from floating-point room edges are not misclassified; orb.Bound.Contains
// has no such tolerance, hence the nearest-point distance.
func (r Room) ContainsPoint(p orb.Point) bool {
	return planar.Distance(p, closestPoint(r.Floor(), p)) < Epsilon
}

// InAnyRoom reports whether p lies on the floor of any room.
func InAnyRoom(rooms []Room, p orb.Point) bool {
	for _, r := range rooms {
		if r.ContainsPoint(p) {
			return true
		}
	}
	return false
}

func closestPoint(b orb.Bound, p orb.Point) orb.Point {
	return orb.Point{
		math.Max(b.Min[0], math.Min(p[0], b.Max[0])),
		math.Max(b.Min[1], math.Min(p[1], b.Max[1])),
	}
}
