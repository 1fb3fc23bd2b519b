// Package cache provides byte-level caching for generated levels and
// rendered artifacts.
//
// A [Cache] stores opaque values under string keys with an optional TTL.
// Keys are produced by a [Keyer] so that every entry point (CLI, API) agrees
// on the layout of the key space.
//
// Implementations:
//   - [FileCache]: one JSON file per entry, for CLI use
//   - [RedisCache]: shared cache for the HTTP service
//   - [NullCache]: disables caching
package cache

import (
	"context"
	"time"
)

// TTLs for the different kinds of cached data. Generated levels are pure
// functions of their options, so they are kept for a long time.
const (
	TTLLevel    = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a key/value store for serialized pipeline results.
type Cache interface {
	// Get returns the value for key. The bool reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// LevelKey returns the key for a level generated from the given
	// canonical options encoding.
	LevelKey(options []byte) string

	// ArtifactKey returns the key for a rendering of a level.
	ArtifactKey(levelHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that affect an artifact's bytes.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LevelKey returns "level:<sha256(options)>".
func (DefaultKeyer) LevelKey(options []byte) string {
	return hashKey("level", string(options))
}

// ArtifactKey returns "artifact:<sha256(levelHash, opts)>".
func (DefaultKeyer) ArtifactKey(levelHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", levelHash, opts)
}
