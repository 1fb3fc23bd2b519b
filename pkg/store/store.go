// Package store persists generated levels.
//
// The HTTP API saves every level it generates so clients can fetch it and
// its renderings later by ID. [Memory] keeps levels in process; [MongoStore]
// stores them in a MongoDB collection.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/level"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Store saves and loads levels by ID.
type Store interface {
	// Save stores l, replacing any level with the same ID.
	Save(ctx context.Context, l *level.Level) error

	// Get returns the level with the given ID or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*level.Level, error)

	// List returns summaries of the most recently created levels.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a level. Deleting a missing level is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases resources held by the store.
	Close(ctx context.Context) error
}

// Summary is the listing view of a stored level.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Seed      uint64    `json:"seed" bson:"-"`
	Rooms     int       `json:"rooms" bson:"-"`
	Tiles     int       `json:"tiles" bson:"-"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func summarize(l *level.Level) Summary {
	return Summary{
		ID:        l.ID,
		Seed:      l.Seed,
		Rooms:     l.Stats.Rooms,
		Tiles:     l.Stats.Tiles,
		CreatedAt: l.CreatedAt,
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "level %s not found", id)
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	levels map[string]*level.Level
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{levels: make(map[string]*level.Level)}
}

func (m *Memory) Save(_ context.Context, l *level.Level) error {
	if l == nil || l.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "level has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[l.ID] = l
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*level.Level, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.levels[id]
	if !ok {
		return nil, notFound(id)
	}
	return l, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	m.mu.RLock()
	out := make([]Summary, 0, len(m.levels))
	for _, l := range m.levels {
		out = append(out, summarize(l))
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.levels, id)
	return nil
}

func (m *Memory) Close(context.Context) error { return nil }

var _ Store = (*Memory)(nil)
