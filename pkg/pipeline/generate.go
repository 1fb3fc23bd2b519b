package pipeline

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/matzehuels/levelgen/pkg/corridor"
	"github.com/matzehuels/levelgen/pkg/delaunay"
	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/grid"
	"github.com/matzehuels/levelgen/pkg/layout"
	"github.com/matzehuels/levelgen/pkg/level"
	"github.com/matzehuels/levelgen/pkg/mst"
	"github.com/matzehuels/levelgen/pkg/observability"
)

// NewRand returns the random source for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Run generates a level without caching. Options are validated and
// defaulted first.
func Run(ctx context.Context, opts Options) (*level.Level, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.Timeout))
		defer cancel()
	}

	start := time.Now()
	hooks := observability.Generation()
	logger := opts.Logger
	rng := NewRand(opts.Seed)
	l := &level.Level{
		ID:     uuid.NewString(),
		Seed:   opts.Seed,
		Bounds: opts.Bounds,
	}

	// Stage 1: Place
	err := stage(ctx, observability.StagePlace, func() error {
		rooms, err := layout.Place(rng, opts.Templates, opts.Rooms, opts.Bounds)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "place %d rooms", opts.Rooms)
		}
		l.Rooms = rooms
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stage 2: Separate
	err = stage(ctx, observability.StageSeparate, func() error {
		sweeps, err := layout.Separate(ctx, rng, l.Rooms, opts.Bounds, layout.SeparateOptions{
			Padding:       opts.Padding,
			BoundsMargin:  opts.BoundsMargin,
			MaxIterations: opts.MaxIterations,
		})
		l.Stats.SeparationSweeps = sweeps
		switch {
		case stderrors.Is(err, layout.ErrSeparationExhausted):
			return errors.Wrap(errors.ErrCodeSeparationExhausted, err, "separate %d rooms", len(l.Rooms))
		case err != nil:
			return contextError(err, "separate rooms")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("separated rooms", "rooms", len(l.Rooms), "sweeps", l.Stats.SeparationSweeps)

	// Stage 3: Triangulate
	_ = stage(ctx, observability.StageTriangulate, func() error {
		anchors := make([]delaunay.Vertex, len(l.Rooms))
		for i, r := range l.Rooms {
			anchors[i] = delaunay.Vertex{Pos: r.Pos, Index: r.Index}
		}
		l.Triangles = delaunay.Triangulate(anchors)
		l.Vertices = delaunay.UniqueVertices(l.Triangles)
		if len(l.Triangles) == 0 {
			l.Vertices = fallbackVertices(anchors)
			logger.Warn("degenerate triangulation, connecting anchors directly",
				"anchors", len(anchors), "vertices", len(l.Vertices))
		}
		return nil
	})
	logger.Debug("triangulated anchors", "triangles", len(l.Triangles), "vertices", len(l.Vertices))

	// Stage 4: Spanning tree
	_ = stage(ctx, observability.StageSpanningTree, func() error {
		points := make([]orb.Point, len(l.Vertices))
		for i, v := range l.Vertices {
			points[i] = v.Pos
		}
		l.Edges = mst.Kruskal(points)
		return nil
	})
	logger.Debug("built spanning tree", "edges", len(l.Edges), "length", mst.TotalWeight(l.Edges))

	// Stage 5: Corridors
	err = stage(ctx, observability.StageCorridors, func() error {
		res, err := corridor.Build(ctx, rng, corridor.Input{
			Grid:     grid.Build(opts.Bounds.Width, opts.Bounds.Height),
			Rooms:    l.Rooms,
			Vertices: l.Vertices,
			Edges:    l.Edges,
		}, corridor.Options{
			SideHallFrequency: opts.SideHallFrequency,
			MaxSampleAttempts: opts.MaxSampleAttempts,
			MaxRestarts:       opts.MaxRestarts,
			Parallelism:       opts.Parallelism,
			CellSize:          opts.CellSize,
			OnRestart: func(attempt int, err error) {
				hooks.OnCorridorRestart(ctx, attempt, err)
			},
			Logger: logger,
		})
		switch {
		case stderrors.Is(err, corridor.ErrSamplingExhausted):
			return errors.Wrap(errors.ErrCodeSamplingExhausted, err, "place side halls")
		case err != nil:
			return contextError(err, "assemble corridors")
		}

		for _, h := range res.Failed {
			hooks.OnPathNotFound(ctx, h.From, h.To)
		}
		l.Halls = res.Halls
		l.Failed = res.Failed
		l.Tiles = res.Tiles
		l.Stats.RemovedTiles = res.RemovedTiles
		l.Stats.CorridorRestarts = res.Restarts
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Stats.Rooms = len(l.Rooms)
	l.Stats.Triangles = len(l.Triangles)
	l.Stats.SpanningEdges = len(l.Edges)
	l.Stats.FailedPaths = len(l.Failed)
	l.Stats.Tiles = len(l.Tiles)
	for _, h := range l.Halls {
		if h.Kind == corridor.KindSide {
			l.Stats.SideHalls++
		}
	}
	l.Stats.Duration = time.Since(start)
	l.CreatedAt = time.Now().UTC()

	hooks.OnLevelGenerated(ctx, l.Stats.Rooms, l.Stats.Tiles, l.Stats.Duration)
	logger.Info("generated level",
		"rooms", l.Stats.Rooms,
		"halls", len(l.Halls),
		"failed", l.Stats.FailedPaths,
		"tiles", l.Stats.Tiles,
		"duration", l.Stats.Duration)
	return l, nil
}

// stage runs fn between the stage hooks.
func stage(ctx context.Context, s observability.Stage, fn func() error) error {
	hooks := observability.Generation()
	hooks.OnStageStart(ctx, s)
	start := time.Now()
	err := fn()
	hooks.OnStageComplete(ctx, s, time.Since(start), err)
	return err
}

// fallbackVertices returns the anchors at distinct positions when they cannot
// be triangulated (fewer than three, or all collinear), or nothing when they
// share a single position.
func fallbackVertices(anchors []delaunay.Vertex) []delaunay.Vertex {
	seen := make(map[orb.Point]bool, len(anchors))
	var out []delaunay.Vertex
	for _, a := range anchors {
		if !seen[a.Pos] {
			seen[a.Pos] = true
			out = append(out, a)
		}
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

// contextError codes cancellation and deadline errors as timeouts.
func contextError(err error, op string) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s", op)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "%s", op)
}
