package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// logger. The CLI installs it under --verbose.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l.WithPrefix("hooks")}
}

// Install registers h for every hook category.
func (h *LogHooks) Install() {
	SetPlacementHooks(h)
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnCycle(_ context.Context, id string, clamped bool, d time.Duration) {
	h.Logger.Debug("placement cycle", "callout", id, "clamped", clamped, "duration", d)
}

func (h *LogHooks) OnSkip(_ context.Context, id string, failures int, err error) {
	h.Logger.Debug("placement skipped", "callout", id, "failures", failures, "err", err)
}

func (h *LogHooks) OnResolveStart(_ context.Context, scene string, callouts int) {
	h.Logger.Debug("resolve start", "scene", scene, "callouts", callouts)
}

func (h *LogHooks) OnResolveComplete(_ context.Context, scene string, d time.Duration, err error) {
	h.Logger.Debug("resolve complete", "scene", scene, "duration", d, "err", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render complete", "formats", formats, "duration", d, "err", err)
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
	h.Logger.Debug("http request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ PlacementHooks = (*LogHooks)(nil)
	_ PipelineHooks  = (*LogHooks)(nil)
	_ CacheHooks     = (*LogHooks)(nil)
	_ HTTPHooks      = (*LogHooks)(nil)
)
