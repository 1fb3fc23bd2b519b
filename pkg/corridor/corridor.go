package corridor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/levelgen/pkg/astar"
	"github.com/matzehuels/levelgen/pkg/delaunay"
	"github.com/matzehuels/levelgen/pkg/grid"
	"github.com/matzehuels/levelgen/pkg/layout"
	"github.com/matzehuels/levelgen/pkg/mst"
)

// Default assembly parameters.
const (
	DefaultSideHallFrequency = 0.15
	DefaultMaxSampleAttempts = 32
	DefaultMaxRestarts       = 8
)

// ErrSamplingExhausted is returned when no unused vertex pair could be found
// for a side hall within the sampling budget.
var ErrSamplingExhausted = errors.New("side hall sampling exhausted")

// Kind distinguishes spanning-tree halls from extra side halls.
type Kind string

const (
	KindSpanning Kind = "spanning"
	KindSide     Kind = "side"
)

// Hall is a corridor between two triangulation vertices. From and To index
// into [Input.Vertices].
type Hall struct {
	From int         `json:"from" bson:"from"`
	To   int         `json:"to" bson:"to"`
	Kind Kind        `json:"kind" bson:"kind"`
	Path []grid.Cell `json:"path,omitempty" bson:"path,omitempty"`
}

// Input is everything the assembler reads. It is never mutated.
type Input struct {
	Grid     *grid.Grid
	Rooms    []layout.Room
	Vertices []delaunay.Vertex
	Edges    []mst.Edge
}

// Options configures assembly.
type Options struct {
	// SideHallFrequency is the number of side halls per spanning edge (0–1).
	SideHallFrequency float64

	// MaxSampleAttempts caps random vertex draws per side hall.
	MaxSampleAttempts int

	// MaxRestarts caps how often [Build] restarts after sampling is exhausted.
	MaxRestarts int

	// Parallelism bounds concurrent pathfinding. Zero uses GOMAXPROCS.
	Parallelism int

	// CellSize scales pathfinding costs.
	CellSize float64

	// OnRestart is called by [Build] before each restart.
	OnRestart func(attempt int, err error)

	Logger *log.Logger
}

// SetDefaults fills zero fields. A zero SideHallFrequency is kept.
func (o *Options) SetDefaults() {
	if o.MaxSampleAttempts <= 0 {
		o.MaxSampleAttempts = DefaultMaxSampleAttempts
	}
	if o.MaxRestarts <= 0 {
		o.MaxRestarts = DefaultMaxRestarts
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	if o.CellSize <= 0 {
		o.CellSize = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Result is the assembled corridor network.
type Result struct {
	// Halls holds every hall that was routed, spanning halls first.
	Halls []Hall

	// Failed holds halls whose endpoints could not be connected.
	Failed []Hall

	// Tiles is the final corridor floor, sorted row-major.
	Tiles []Tile

	// Restarts is the number of restarts [Build] needed.
	Restarts int

	// RemovedTiles counts path cells dropped for lying on a room floor.
	RemovedTiles int

	Duration time.Duration
}

// SideHallCount returns round(edges × frequency).
func SideHallCount(edges int, frequency float64) int {
	return int(math.Round(float64(edges) * frequency))
}

// Build runs [Assemble], restarting from scratch while side hall sampling
// is exhausted. After MaxRestarts restarts the sampling error is returned.
func Build(ctx context.Context, rng *rand.Rand, in Input, opts Options) (*Result, error) {
	opts.SetDefaults()

	var lastErr error
	for attempt := 0; attempt <= opts.MaxRestarts; attempt++ {
		if attempt > 0 {
			opts.Logger.Warn("restarting corridor assembly", "attempt", attempt, "err", lastErr)
			if opts.OnRestart != nil {
				opts.OnRestart(attempt, lastErr)
			}
		}

		res, err := Assemble(ctx, rng, in, opts)
		if err == nil {
			res.Restarts = attempt
			return res, nil
		}
		if !errors.Is(err, ErrSamplingExhausted) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w after %d restarts", lastErr, opts.MaxRestarts)
}

// Assemble routes a hall for every spanning edge plus the configured number
// of side halls, merges the paths and strips cells lying on room floors.
// Halls without a path are recorded in [Result.Failed] and skipped.
func Assemble(ctx context.Context, rng *rand.Rand, in Input, opts Options) (*Result, error) {
	opts.SetDefaults()
	start := time.Now()

	halls := make([]Hall, 0, len(in.Edges))
	for _, e := range in.Edges {
		if e.Source >= len(in.Vertices) || e.Destination >= len(in.Vertices) {
			return nil, fmt.Errorf("edge %d-%d out of range for %d vertices", e.Source, e.Destination, len(in.Vertices))
		}
		halls = append(halls, Hall{From: e.Source, To: e.Destination, Kind: KindSpanning})
	}

	side, err := sampleSideHalls(rng, len(in.Vertices), SideHallCount(len(in.Edges), opts.SideHallFrequency), opts.MaxSampleAttempts)
	if err != nil {
		return nil, err
	}
	halls = append(halls, side...)

	paths, err := route(ctx, in, halls, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, h := range halls {
		if paths[i] == nil {
			opts.Logger.Warn("no path for hall", "kind", h.Kind, "from", h.From, "to", h.To)
			res.Failed = append(res.Failed, h)
			continue
		}
		h.Path = paths[i]
		res.Halls = append(res.Halls, h)
	}

	res.Tiles, res.RemovedTiles = merge(res.Halls, in.Rooms)
	res.Duration = time.Since(start)

	opts.Logger.Debug("assembled corridors",
		"halls", len(res.Halls),
		"failed", len(res.Failed),
		"tiles", len(res.Tiles),
		"removed", res.RemovedTiles)
	return res, nil
}

// sampleSideHalls draws count vertex pairs. Every endpoint is a vertex not
// used by an earlier side hall.
func sampleSideHalls(rng *rand.Rand, vertices, count, maxAttempts int) ([]Hall, error) {
	if count <= 0 {
		return nil, nil
	}

	used := make(map[int]bool)
	draw := func(exclude int) (int, bool) {
		for range maxAttempts {
			v := rng.IntN(max(vertices, 1))
			if vertices > 0 && !used[v] && v != exclude {
				return v, true
			}
		}
		return 0, false
	}

	halls := make([]Hall, 0, count)
	for len(halls) < count {
		a, ok := draw(-1)
		if !ok {
			return nil, fmt.Errorf("%w: %d of %d side halls placed", ErrSamplingExhausted, len(halls), count)
		}
		b, ok := draw(a)
		if !ok {
			return nil, fmt.Errorf("%w: %d of %d side halls placed", ErrSamplingExhausted, len(halls), count)
		}
		used[a], used[b] = true, true
		halls = append(halls, Hall{From: a, To: b, Kind: KindSide})
	}
	return halls, nil
}

// route pathfinds every hall concurrently. A nil entry means no path.
func route(ctx context.Context, in Input, halls []Hall, opts Options) ([][]grid.Cell, error) {
	paths := make([][]grid.Cell, len(halls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for i, h := range halls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			from := in.Grid.Clamp(grid.CellAt(in.Vertices[h.From].Pos))
			to := in.Grid.Clamp(grid.CellAt(in.Vertices[h.To].Pos))
			path, err := astar.FindPath(from, to, in.Grid, astar.WithCellSize(opts.CellSize))
			if errors.Is(err, astar.ErrNoPath) {
				return nil
			}
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// merge unions all hall paths, removes cells on room floors and computes
// the open mask of each remaining tile.
func merge(halls []Hall, rooms []layout.Room) ([]Tile, int) {
	set := make(map[grid.Cell]struct{})
	for _, h := range halls {
		for _, c := range h.Path {
			set[c] = struct{}{}
		}
	}

	removed := 0
	for c := range set {
		if layout.InAnyRoom(rooms, c.Point()) {
			delete(set, c)
			removed++
		}
	}

	cells := make([]grid.Cell, 0, len(set))
	for c := range set {
		cells = append(cells, c)
	}
	grid.SortCells(cells)

	tiles := make([]Tile, len(cells))
	for i, c := range cells {
		tiles[i] = Tile{Cell: c, Open: openSides(c, set), Entrance: touchesRoom(c, rooms)}
	}
	return tiles, removed
}

func touchesRoom(c grid.Cell, rooms []layout.Room) bool {
	for _, n := range c.Neighbors() {
		if layout.InAnyRoom(rooms, n.Point()) {
			return true
		}
	}
	return false
}
