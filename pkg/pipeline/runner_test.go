package pipeline

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/matzehuels/levelgen/pkg/cache"
	"github.com/matzehuels/levelgen/pkg/delaunay"
	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/grid"
	"github.com/matzehuels/levelgen/pkg/layout"
	"github.com/matzehuels/levelgen/pkg/level"
)

func smallOptions(seed uint64) Options {
	o := DefaultOptions()
	o.Rooms = 8
	o.Bounds = layout.Bounds{Width: 80, Height: 80}
	o.Seed = seed
	return o
}

func TestRunProducesValidLevel(t *testing.T) {
	l, err := Run(context.Background(), smallOptions(7))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(l.Rooms) != 8 {
		t.Fatalf("rooms = %d, want 8", len(l.Rooms))
	}
	if c := layout.Colliding(l.Rooms); len(c) != 0 {
		t.Errorf("rooms still overlap: %v", c)
	}
	if len(l.Vertices) != len(l.Rooms) {
		t.Errorf("vertices = %d, want one per room (%d)", len(l.Vertices), len(l.Rooms))
	}
	if len(l.Edges) != len(l.Vertices)-1 {
		t.Errorf("spanning tree has %d edges for %d vertices", len(l.Edges), len(l.Vertices))
	}

	g := grid.Build(80, 80)
	for _, tile := range l.Tiles {
		if !g.Contains(tile.Cell) {
			t.Errorf("tile %v outside grid", tile.Cell)
		}
		if layout.InAnyRoom(l.Rooms, tile.Point()) {
			t.Errorf("tile %v lies on a room floor", tile.Cell)
		}
	}

	if l.Stats.Rooms != 8 || l.Stats.Tiles != len(l.Tiles) || l.Stats.FailedPaths != len(l.Failed) {
		t.Errorf("stats inconsistent: %+v", l.Stats)
	}
	if l.ID == "" || errors.ValidateLevelID(l.ID) != nil {
		t.Errorf("invalid level id %q", l.ID)
	}
}

func TestRunConnectsEveryRoom(t *testing.T) {
	for seed := uint64(1); seed <= 60; seed++ {
		o := smallOptions(seed)
		o.Rooms = 3
		l, err := Run(context.Background(), o)
		if errors.IsExhausted(err) {
			continue
		}
		if err != nil {
			t.Fatalf("seed %d: Run: %v", seed, err)
		}
		if len(l.Vertices) != len(l.Rooms) {
			t.Errorf("seed %d: vertices = %d, want %d", seed, len(l.Vertices), len(l.Rooms))
		}
		if len(l.Edges) != len(l.Rooms)-1 {
			t.Errorf("seed %d: spanning edges = %d, want %d", seed, len(l.Edges), len(l.Rooms)-1)
		}
	}
}

func TestFallbackVertices(t *testing.T) {
	tests := []struct {
		name string
		in   []orb.Point
		want int
	}{
		{"none", nil, 0},
		{"shared position", []orb.Point{{1, 1}, {1, 1}}, 0},
		{"two", []orb.Point{{0, 0}, {4, 0}}, 2},
		{"collinear", []orb.Point{{0, 0}, {4, 0}, {8, 0}, {4, 0}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchors := make([]delaunay.Vertex, len(tt.in))
			for i, p := range tt.in {
				anchors[i] = delaunay.Vertex{Pos: p, Index: i}
			}
			if got := fallbackVertices(anchors); len(got) != tt.want {
				t.Errorf("fallbackVertices() = %d vertices, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRunDeterministic(t *testing.T) {
	a, err := Run(context.Background(), smallOptions(11))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(context.Background(), smallOptions(11))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(a.Rooms, b.Rooms) {
		t.Error("same seed produced different rooms")
	}
	if !reflect.DeepEqual(a.Halls, b.Halls) {
		t.Error("same seed produced different halls")
	}
	if !reflect.DeepEqual(a.Tiles, b.Tiles) {
		t.Error("same seed produced different tiles")
	}
	if a.ID == b.ID {
		t.Error("each run should get a fresh id")
	}
}

func TestRunSingleRoom(t *testing.T) {
	o := smallOptions(3)
	o.Rooms = 1
	l, err := Run(context.Background(), o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(l.Triangles) != 0 || len(l.Edges) != 0 || len(l.Tiles) != 0 {
		t.Errorf("single room should have no corridors: %+v", l.Stats)
	}
}

func TestRunTwoRoomsFallback(t *testing.T) {
	o := smallOptions(5)
	o.Rooms = 2
	o.SideHallFrequency = 0
	l, err := Run(context.Background(), o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(l.Triangles) != 0 {
		t.Fatalf("two anchors cannot be triangulated, got %d triangles", len(l.Triangles))
	}
	if len(l.Vertices) != 2 || len(l.Edges) != 1 {
		t.Errorf("fallback should connect both anchors: vertices=%d edges=%d", len(l.Vertices), len(l.Edges))
	}
	if len(l.Halls)+len(l.Failed) != 1 {
		t.Errorf("want exactly one hall, got %d routed and %d failed", len(l.Halls), len(l.Failed))
	}
}

// crowdedOptions cannot be separated: ten 8x8 rooms never fit into a
// 20x20 level.
func crowdedOptions() Options {
	o := DefaultOptions()
	o.Rooms = 10
	o.Bounds = layout.Bounds{Width: 20, Height: 20}
	o.Templates = []layout.Template{{Name: "block", Width: 8, Depth: 8}}
	o.MaxIterations = 5
	return o
}

func TestRunSeparationExhausted(t *testing.T) {
	_, err := Run(context.Background(), crowdedOptions())
	if !errors.Is(err, errors.ErrCodeSeparationExhausted) {
		t.Fatalf("err = %v, want SEPARATION_EXHAUSTED", err)
	}
	if !errors.IsExhausted(err) {
		t.Error("IsExhausted should report separation failures")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, crowdedOptions())
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Fatalf("err = %v, want TIMEOUT", err)
	}
}

func TestRunInvalidOptions(t *testing.T) {
	o := DefaultOptions()
	o.SideHallFrequency = 2
	if _, err := Run(context.Background(), o); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestRunnerGenerateCaches(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()
	ctx := context.Background()

	first, hit, err := r.GenerateWithCacheInfo(ctx, smallOptions(21))
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if hit {
		t.Error("first generate should miss")
	}
	if first.OptionsHash == "" {
		t.Error("OptionsHash not set")
	}

	second, hit, err := r.GenerateWithCacheInfo(ctx, smallOptions(21))
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if !hit {
		t.Error("second generate should hit the cache")
	}
	if second.ID != first.ID {
		t.Errorf("cached level id = %s, want %s", second.ID, first.ID)
	}

	refresh := smallOptions(21)
	refresh.Refresh = true
	third, hit, err := r.GenerateWithCacheInfo(ctx, refresh)
	if err != nil {
		t.Fatalf("refresh generate: %v", err)
	}
	if hit || third.ID == first.ID {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerExecute(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	opts := smallOptions(4)
	opts.Formats = []string{FormatASCII, FormatJSON, FormatGeoJSON, FormatDOT, FormatSVG}

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, f := range opts.Formats {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !strings.Contains(string(res.Artifacts[FormatASCII]), "#") {
		t.Error("ascii map has no rooms")
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact is not svg")
	}
	decoded, err := level.Unmarshal(res.Artifacts[FormatJSON])
	if err != nil || decoded.ID != res.Level.ID {
		t.Errorf("json artifact does not decode to the level: %v", err)
	}
	if res.LevelHash == "" || res.CacheInfo.LevelHit || res.CacheInfo.RenderHit {
		t.Errorf("unexpected first-run info: hash=%q cache=%+v", res.LevelHash, res.CacheInfo)
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.LevelHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run should hit both caches: %+v", again.CacheInfo)
	}
}

func TestRenderLevelUnsupported(t *testing.T) {
	_, err := RenderLevel(context.Background(), &level.Level{}, []string{"png"}, false)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}
