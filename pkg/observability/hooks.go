// Package observability carries instrumentation events out of the callout
// engine, the scene pipeline, the artifact cache and the HTTP API.
//
// Each event family is an interface with a no-op default. Programs swap in
// their own implementation before work starts; the libraries only ever call
// the getters:
//
//	observability.Placement().OnCycle(ctx, id, clamped, time.Since(start))
//
// LogHooks is the implementation the command line uses under --verbose.
package observability

import (
	"context"
	"sync"
	"time"
)

// PlacementHooks receives events from callout recomputation cycles.
type PlacementHooks interface {
	// OnCycle records a successful recomputation. clamped reports whether
	// the boundary moved the box.
	OnCycle(ctx context.Context, calloutID string, clamped bool, duration time.Duration)

	// OnSkip records a cycle skipped because a node could not be measured
	// or positioned. failures is the number of consecutive skips.
	OnSkip(ctx context.Context, calloutID string, failures int, err error)
}

// PipelineHooks receives events from the scene pipeline.
type PipelineHooks interface {
	OnResolveStart(ctx context.Context, scene string, callouts int)
	OnResolveComplete(ctx context.Context, scene string, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// NoopPlacementHooks discards PlacementHooks.
type NoopPlacementHooks struct{}

func (NoopPlacementHooks) OnCycle(context.Context, string, bool, time.Duration) {}
func (NoopPlacementHooks) OnSkip(context.Context, string, int, error)           {}

// NoopPipelineHooks discards PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnResolveStart(context.Context, string, int)                      {}
func (NoopPipelineHooks) OnResolveComplete(context.Context, string, time.Duration, error)  {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks discards CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// registry holds the active hooks. Setters ignore nil.
var registry = struct {
	sync.RWMutex
	placement PlacementHooks
	pipeline  PipelineHooks
	cache     CacheHooks
	http      HTTPHooks
}{
	placement: NoopPlacementHooks{},
	pipeline:  NoopPipelineHooks{},
	cache:     NoopCacheHooks{},
	http:      NoopHTTPHooks{},
}

func set[T any](dst *T, h T, isNil bool) {
	if isNil {
		return
	}
	registry.Lock()
	*dst = h
	registry.Unlock()
}

func get[T any](src *T) T {
	registry.RLock()
	defer registry.RUnlock()
	return *src
}

// SetPlacementHooks installs h for callout recomputation events.
func SetPlacementHooks(h PlacementHooks) { set(&registry.placement, h, h == nil) }

// SetPipelineHooks installs h for resolve and render events.
func SetPipelineHooks(h PipelineHooks) { set(&registry.pipeline, h, h == nil) }

// SetCacheHooks installs h for cache lookups and writes.
func SetCacheHooks(h CacheHooks) { set(&registry.cache, h, h == nil) }

// SetHTTPHooks installs h for API requests.
func SetHTTPHooks(h HTTPHooks) { set(&registry.http, h, h == nil) }

// Placement returns the active placement hooks.
func Placement() PlacementHooks { return get(&registry.placement) }

// Pipeline returns the active pipeline hooks.
func Pipeline() PipelineHooks { return get(&registry.pipeline) }

// Cache returns the active cache hooks.
func Cache() CacheHooks { return get(&registry.cache) }

// HTTP returns the active HTTP hooks.
func HTTP() HTTPHooks { return get(&registry.http) }

// Reset puts every family back to its no-op default. Tests call it in
// cleanup.
func Reset() {
	registry.Lock()
	defer registry.Unlock()
	registry.placement = NoopPlacementHooks{}
	registry.pipeline = NoopPipelineHooks{}
	registry.cache = NoopCacheHooks{}
	registry.http = NoopHTTPHooks{}
}
