package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level. It implements
// [GenerationHooks], [CacheHooks] and [HTTPHooks].
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnStageStart(_ context.Context, stage Stage) {
	h.Logger.Debug("stage start", "stage", stage)
}

func (h *LogHooks) OnStageComplete(_ context.Context, stage Stage, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("stage failed", "stage", stage, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("stage done", "stage", stage, "duration", d)
}

func (h *LogHooks) OnPathNotFound(_ context.Context, from, to int) {
	h.Logger.Debug("path not found", "from", from, "to", to)
}

func (h *LogHooks) OnCorridorRestart(_ context.Context, attempt int, err error) {
	h.Logger.Debug("corridor restart", "attempt", attempt, "err", err)
}

func (h *LogHooks) OnLevelGenerated(_ context.Context, rooms, tiles int, d time.Duration) {
	h.Logger.Debug("level generated", "rooms", rooms, "tiles", tiles, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ GenerationHooks = (*LogHooks)(nil)
	_ CacheHooks      = (*LogHooks)(nil)
	_ HTTPHooks       = (*LogHooks)(nil)
)
