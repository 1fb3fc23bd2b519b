// Package pipeline runs level generation end to end.
//
// This package implements the place → separate → triangulate → spanning
// tree → corridors pipeline used by the CLI and the HTTP API. By keeping
// defaults, validation and caching here, every entry point produces the
// same level for the same options.
//
// # Architecture
//
// A run consists of five stages:
//
//  1. Place: choose a template per room and drop anchors inside the bounds
//  2. Separate: nudge colliding rooms apart until no floors overlap
//  3. Triangulate: Delaunay triangulation of the room anchors
//  4. Spanning tree: Kruskal over the triangulation's unique vertices
//  5. Corridors: A* paths for tree edges plus side halls, merged into tiles
//
// All randomness comes from a PCG source seeded with [Options.Seed], so the
// same options always produce the same level.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Rooms = 20
//	opts.Formats = []string{"svg", "ascii"}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(string(result.Artifacts["ascii"]))
//
// Run stages independently:
//
//	l, err := runner.Generate(ctx, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/levelgen/pkg/cache"
	"github.com/matzehuels/levelgen/pkg/corridor"
	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/layout"
	"github.com/matzehuels/levelgen/pkg/level"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultRooms is the number of rooms placed when none is configured.
	DefaultRooms = 12

	// DefaultWidth and DefaultHeight are the level bounds in grid units.
	DefaultWidth  = 100
	DefaultHeight = 100

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultCellSize is the world size of one grid cell.
	DefaultCellSize = 1.0

	// MaxRooms caps the room count accepted from callers.
	MaxRooms = 1000

	// MaxArea caps width × height of the level bounds.
	MaxArea = 1000 * 1000
)

// DefaultTemplates are used when no templates are configured.
var DefaultTemplates = []layout.Template{
	{Name: "closet", Width: 3, Depth: 3, MaxDoors: 1},
	{Name: "chamber", Width: 5, Depth: 5, MaxDoors: 2},
	{Name: "hall", Width: 9, Depth: 5, MaxDoors: 3},
	{Name: "gallery", Width: 4, Depth: 10, MaxDoors: 2},
}

// Format constants for output formats.
const (
	FormatSVG     = "svg"
	FormatDOT     = "dot"
	FormatGeoJSON = "geojson"
	FormatASCII   = "ascii"
	FormatJSON    = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatDOT:     true,
	FormatGeoJSON: true,
	FormatASCII:   true,
	FormatJSON:    true,
}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:     "image/svg+xml",
	FormatDOT:     "text/vnd.graphviz; charset=utf-8",
	FormatGeoJSON: "application/geo+json",
	FormatASCII:   "text/plain; charset=utf-8",
	FormatJSON:    "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a generation run. It is read from
// TOML config files and JSON API requests.
type Options struct {
	// Layout options
	Rooms     int               `json:"rooms" toml:"rooms"`
	Templates []layout.Template `json:"templates,omitempty" toml:"templates"`
	Bounds    layout.Bounds     `json:"bounds" toml:"bounds"`

	// Separation options
	Padding       float64 `json:"padding,omitempty" toml:"padding"`
	BoundsMargin  float64 `json:"bounds_margin,omitempty" toml:"bounds_margin"`
	MaxIterations int     `json:"max_iterations,omitempty" toml:"max_iterations"`

	// Corridor options. A zero SideHallFrequency disables side halls.
	SideHallFrequency float64 `json:"side_hall_frequency" toml:"side_hall_frequency"`
	MaxSampleAttempts int     `json:"max_sample_attempts,omitempty" toml:"max_sample_attempts"`
	MaxRestarts       int     `json:"max_restarts,omitempty" toml:"max_restarts"`
	CellSize          float64 `json:"cell_size,omitempty" toml:"cell_size"`

	Seed uint64 `json:"seed,omitempty" toml:"seed"`

	// Render options
	Formats  []string `json:"formats,omitempty" toml:"formats"`
	Detailed bool     `json:"detailed,omitempty" toml:"detailed"`

	// Runtime options. These never change the generated level.
	Parallelism int         `json:"parallelism,omitempty" toml:"parallelism"`
	Timeout     Duration    `json:"timeout,omitempty" toml:"timeout"`
	Refresh     bool        `json:"refresh,omitempty" toml:"-"`
	Logger      *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns options with every default filled in, including
// the default side hall frequency.
func DefaultOptions() Options {
	o := Options{SideHallFrequency: corridor.DefaultSideHallFrequency}
	o.SetDefaults()
	return o
}

// Clone returns a copy that shares no slices with o and must be validated
// again.
func (o Options) Clone() Options {
	o.Templates = slices.Clone(o.Templates)
	o.Formats = slices.Clone(o.Formats)
	o.validated = false
	return o
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Level is the generated level.
	Level *level.Level

	// LevelHash is the content hash of the level, used for artifact keys.
	LevelHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LevelHit  bool // Whether the level came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, dot, geojson, ascii, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero fields with defaults. SideHallFrequency is left
// alone since zero is meaningful; see [DefaultOptions].
func (o *Options) SetDefaults() {
	if o.Rooms == 0 {
		o.Rooms = DefaultRooms
	}
	if len(o.Templates) == 0 {
		o.Templates = append([]layout.Template(nil), DefaultTemplates...)
	}
	if o.Bounds.Width == 0 {
		o.Bounds.Width = DefaultWidth
	}
	if o.Bounds.Height == 0 {
		o.Bounds.Height = DefaultHeight
	}
	if o.Padding == 0 {
		o.Padding = layout.DefaultPadding
	}
	if o.BoundsMargin == 0 {
		o.BoundsMargin = layout.DefaultBoundsMargin
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = layout.DefaultMaxIterations
	}
	if o.MaxSampleAttempts == 0 {
		o.MaxSampleAttempts = corridor.DefaultMaxSampleAttempts
	}
	if o.MaxRestarts == 0 {
		o.MaxRestarts = corridor.DefaultMaxRestarts
	}
	if o.CellSize == 0 {
		o.CellSize = DefaultCellSize
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatASCII}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option ranges. It expects defaults to be set.
func (o *Options) Validate() error {
	if o.Rooms < 0 || o.Rooms > MaxRooms {
		return errors.New(errors.ErrCodeInvalidConfig, "rooms must be between 1 and %d, got %d", MaxRooms, o.Rooms)
	}
	if o.Bounds.Width < 0 || o.Bounds.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "bounds must not be negative, got %dx%d", o.Bounds.Width, o.Bounds.Height)
	}
	if w, h := o.Bounds.Width, o.Bounds.Height; w > MaxArea || h > MaxArea || (h > 0 && w > MaxArea/h) {
		return errors.New(errors.ErrCodeInvalidConfig, "bounds %dx%d exceed the maximum area of %d cells",
			o.Bounds.Width, o.Bounds.Height, MaxArea)
	}
	valid := 0
	for _, t := range o.Templates {
		if err := errors.ValidateTemplateName(t.Name); err != nil {
			return err
		}
		if t.Width < 0 || t.Depth < 0 || t.MaxDoors < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "template %q has negative dimensions", t.Name)
		}
		if t.Valid() {
			valid++
		}
	}
	if valid == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one template with a positive floor is required")
	}
	if o.Padding < 0 || o.BoundsMargin < 0 || o.CellSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "padding, bounds_margin and cell_size must not be negative")
	}
	if o.MaxIterations < 0 || o.MaxSampleAttempts < 0 || o.MaxRestarts < 0 || o.Parallelism < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "iteration and attempt limits must not be negative")
	}
	if math.IsNaN(o.SideHallFrequency) || o.SideHallFrequency < 0 || o.SideHallFrequency > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "side_hall_frequency must be between 0 and 1, got %v", o.SideHallFrequency)
	}
	if o.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative")
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults applies defaults and validates the result.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// generationKey returns the canonical encoding of the options that affect
// the generated level. Render and runtime options are excluded.
func (o *Options) generationKey() ([]byte, error) {
	key := struct {
		Rooms             int               `json:"rooms"`
		Templates         []layout.Template `json:"templates"`
		Bounds            layout.Bounds     `json:"bounds"`
		Padding           float64           `json:"padding"`
		BoundsMargin      float64           `json:"bounds_margin"`
		MaxIterations     int               `json:"max_iterations"`
		SideHallFrequency float64           `json:"side_hall_frequency"`
		MaxSampleAttempts int               `json:"max_sample_attempts"`
		MaxRestarts       int               `json:"max_restarts"`
		CellSize          float64           `json:"cell_size"`
		Seed              uint64            `json:"seed"`
	}{
		o.Rooms, o.Templates, o.Bounds, o.Padding, o.BoundsMargin, o.MaxIterations,
		o.SideHallFrequency, o.MaxSampleAttempts, o.MaxRestarts, o.CellSize, o.Seed,
	}
	data, err := json.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	return data, nil
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}

// =============================================================================
// Duration
// =============================================================================

// Duration is a time.Duration that encodes as a string like "30s" in TOML
// and JSON.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
