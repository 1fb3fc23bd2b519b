// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about level generation, cache operations, and API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGenerationHooks(&myGenerationHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Generation().OnStageStart(ctx, observability.StageSeparate)
//	// ... separate rooms ...
//	observability.Generation().OnStageComplete(ctx, observability.StageSeparate, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Stage names a generation pipeline stage.
type Stage string

// Generation stages in execution order.
const (
	StagePlace        Stage = "place"
	StageSeparate     Stage = "separate"
	StageTriangulate  Stage = "triangulate"
	StageSpanningTree Stage = "spanning_tree"
	StageCorridors    Stage = "corridors"
)

// =============================================================================
// Generation Hooks
// =============================================================================

// GenerationHooks receives events from the level generation pipeline.
type GenerationHooks interface {
	// Stage events
	OnStageStart(ctx context.Context, stage Stage)
	OnStageComplete(ctx context.Context, stage Stage, duration time.Duration, err error)

	// OnPathNotFound records a hall that could not be routed.
	OnPathNotFound(ctx context.Context, from, to int)

	// OnCorridorRestart records a restart of corridor assembly.
	OnCorridorRestart(ctx context.Context, attempt int, err error)

	// OnLevelGenerated records a finished level.
	OnLevelGenerated(ctx context.Context, rooms, tiles int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response to a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGenerationHooks is a no-op implementation of GenerationHooks.
type NoopGenerationHooks struct{}

func (NoopGenerationHooks) OnStageStart(context.Context, Stage)                          {}
func (NoopGenerationHooks) OnStageComplete(context.Context, Stage, time.Duration, error) {}
func (NoopGenerationHooks) OnPathNotFound(context.Context, int, int)                     {}
func (NoopGenerationHooks) OnCorridorRestart(context.Context, int, error)                {}
func (NoopGenerationHooks) OnLevelGenerated(context.Context, int, int, time.Duration)    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	generationHooks GenerationHooks = NoopGenerationHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	httpHooks       HTTPHooks       = NoopHTTPHooks{}
	hooksMu         sync.RWMutex
)

// SetGenerationHooks registers custom generation hooks.
// This should be called once at application startup before any generation.
func SetGenerationHooks(h GenerationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		generationHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Generation returns the registered generation hooks.
func Generation() GenerationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return generationHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	generationHooks = NoopGenerationHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
