package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/levelgen/pkg/cache"
	"github.com/matzehuels/levelgen/pkg/level"
	"github.com/matzehuels/levelgen/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLevel    = "level"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute generates a level and renders it in every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Generate
	genStart := time.Now()
	l, levelHit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Level = l
	result.Stats.GenerateTime = time.Since(genStart)
	result.CacheInfo.LevelHit = levelHit
	if data, err := level.Marshal(l); err == nil {
		result.LevelHash = cache.Hash(data)
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo generates a level with caching and reports whether
// it came from the cache.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*level.Level, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	keyData, err := opts.generationKey()
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LevelKey(keyData)
	hooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if l, err := level.Unmarshal(data); err == nil {
				hooks.OnCacheHit(ctx, keyTypeLevel)
				r.Logger.Debug("level cache hit", "id", l.ID, "seed", l.Seed)
				return l, true, nil
			}
			// If deserialization fails, fall through to regenerate
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, keyTypeLevel)
	}

	l, err := Run(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	l.OptionsHash = cache.Hash(keyData)

	if data, err := level.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLevel); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeLevel, len(data))
		}
	}
	return l, false, nil
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (*level.Level, error) {
	l, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return l, err
}

// RenderWithCacheInfo renders a level in opts.Formats with caching and
// reports whether every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *level.Level, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	data, err := level.Marshal(l)
	if err != nil {
		return nil, false, err
	}
	levelHash := cache.Hash(data)
	hooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(levelHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
			continue
		}
		hooks.OnCacheMiss(ctx, keyTypeArtifact)
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	rendered, err := RenderLevel(ctx, l, missing, opts.Detailed)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(levelHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *level.Level, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
