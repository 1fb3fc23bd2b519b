package layout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/paulmach/orb"
)

// Default separation parameters.
const (
	// DefaultPadding is the distance a colliding room is nudged per sweep.
	DefaultPadding = 2.0

	// DefaultBoundsMargin is subtracted from each bounds dimension before a
	// nudge is accepted, keeping rooms away from the level edge.
	DefaultBoundsMargin = 5.0

	// DefaultMaxIterations caps the number of separation sweeps.
	DefaultMaxIterations = 500
)

var (
	// ErrSeparationExhausted is returned when rooms still overlap after the
	// maximum number of separation sweeps.
	ErrSeparationExhausted = errors.New("room separation exhausted")

	// ErrNoTemplates is returned by [Place] when no valid template is given.
	ErrNoTemplates = errors.New("no room templates")
)

// Bounds is the level area, centred on the origin.
type Bounds struct {
	Width  int `json:"width" toml:"width" bson:"width"`
	Height int `json:"height" toml:"height" bson:"height"`
}

// Contains reports whether p lies inside the bounds shrunk by margin.
func (b Bounds) Contains(p orb.Point, margin float64) bool {
	hw := (float64(b.Width) - margin) / 2
	hh := (float64(b.Height) - margin) / 2
	return p[0] >= -hw && p[0] <= hw && p[1] >= -hh && p[1] <= hh
}

// Place instantiates count rooms from randomly chosen templates and drops
// them at random integer positions inside bounds. An axis whose floor
// dimension is even is offset by half a unit so room edges land between
// grid cells.
func Place(rng *rand.Rand, templates []Template, count int, bounds Bounds) ([]Room, error) {
	valid := make([]Template, 0, len(templates))
	for _, t := range templates {
		if t.Valid() {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoTemplates
	}

	rooms := make([]Room, count)
	for i := range rooms {
		t := valid[rng.IntN(len(valid))]
		rooms[i] = Room{
			Index:    i,
			Template: t.Name,
			Width:    t.Width,
			Depth:    t.Depth,
			MaxDoors: t.MaxDoors,
		}
	}
	for i := range rooms {
		x := math.Round(uniform(rng, float64(bounds.Width)))
		z := math.Round(uniform(rng, float64(bounds.Height)))
		rooms[i].Pos = orb.Point{x + evenOffset(rooms[i].Width), z + evenOffset(rooms[i].Depth)}
	}
	return rooms, nil
}

// uniform draws from [-extent/2, extent/2).
func uniform(rng *rand.Rand, extent float64) float64 {
	return -extent/2 + rng.Float64()*extent
}

func evenOffset(dim float64) float64 {
	if dim == math.Trunc(dim) && int64(dim)%2 == 0 {
		return 0.5
	}
	return 0
}

// Colliding returns the indices of rooms whose floors overlap another room,
// in discovery order and without duplicates.
func Colliding(rooms []Room) []int {
	var out []int
	seen := make(map[int]bool)
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	for i := range rooms {
		for j := i + 1; j < len(rooms); j++ {
			if rooms[i].Overlaps(rooms[j]) {
				add(i)
				add(j)
			}
		}
	}
	return out
}

// SeparateOptions configures [Separate].
type SeparateOptions struct {
	Padding       float64
	BoundsMargin  float64
	MaxIterations int
}

func (o *SeparateOptions) setDefaults() {
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.BoundsMargin == 0 {
		o.BoundsMargin = DefaultBoundsMargin
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
}

// Separate nudges overlapping rooms apart in place. Each sweep moves every
// colliding room one padding step along a random cardinal axis, skipping
// moves that would leave the shrunk bounds. It returns the number of sweeps
// performed.
//
// Separate stops with [ErrSeparationExhausted] after MaxIterations sweeps
// and with the context error if ctx is done between sweeps.
func Separate(ctx context.Context, rng *rand.Rand, rooms []Room, bounds Bounds, opts SeparateOptions) (int, error) {
	opts.setDefaults()

	for sweep := 0; ; sweep++ {
		colliding := Colliding(rooms)
		if len(colliding) == 0 {
			return sweep, nil
		}
		if sweep >= opts.MaxIterations {
			return sweep, fmt.Errorf("%w: %d rooms still overlap after %d sweeps",
				ErrSeparationExhausted, len(colliding), sweep)
		}
		if err := ctx.Err(); err != nil {
			return sweep, err
		}

		for _, i := range colliding {
			d := randomAxis(rng)
			next := orb.Point{rooms[i].Pos[0] + d[0]*opts.Padding, rooms[i].Pos[1] + d[1]*opts.Padding}
			if bounds.Contains(next, opts.BoundsMargin) {
				rooms[i].Pos = next
			}
		}
	}
}

var axes = [4]orb.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func randomAxis(rng *rand.Rand) orb.Point {
	return axes[rng.IntN(len(axes))]
}
