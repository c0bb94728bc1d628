package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/callout/pkg/cache"
	"github.com/matzehuels/callout/pkg/observability"
	"github.com/matzehuels/callout/pkg/scene"
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

// Execute runs the complete resolve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, s *scene.Scene, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Resolve
	resolveStart := time.Now()
	layout, hash, layoutHit, err := r.ResolveWithCacheInfo(ctx, s, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Layout = layout
	result.SceneHash = hash
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.Stats.Targets = len(layout.Targets)
	result.Stats.Callouts = len(layout.Callouts)
	for _, c := range layout.Callouts {
		if c.Placed {
			result.Stats.Placed++
		}
	}
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("resolved scene",
		"callouts", result.Stats.Callouts,
		"placed", result.Stats.Placed,
		"tick", layout.Tick,
		"duration", result.Stats.ResolveTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, s, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SceneHash returns the content hash of the canonical encoding of s.
func SceneHash(s *scene.Scene) (string, error) {
	data, err := scene.Canonical(s)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// ResolveWithCacheInfo resolves s with caching. It returns the layout, the
// scene hash and whether the layout came from cache.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, s *scene.Scene, opts Options) (*scene.Layout, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForResolve(); err != nil {
		return nil, "", false, err
	}
	if err := s.Validate(); err != nil {
		return nil, "", false, err
	}

	hash, err := SceneHash(s)
	if err != nil {
		return nil, "", false, err
	}
	cacheKey := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if l, ok := r.cachedLayout(ctx, cacheKey); ok {
			return l, hash, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, s.Name, len(s.Callouts))
	start := time.Now()

	resolveOpts, err := opts.ResolveOptions()
	if err != nil {
		return nil, "", false, err
	}
	layout, err := scene.Resolve(ctx, s, resolveOpts)
	hooks.OnResolveComplete(ctx, s.Name, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	if data, err := json.Marshal(layout); err == nil {
		r.store(ctx, cacheKey, data, cache.LayoutTTL)
	}
	return layout, hash, false, nil
}

// Resolve is a convenience wrapper that calls ResolveWithCacheInfo and
// discards the hash and cache hit info.
func (r *Runner) Resolve(ctx context.Context, s *scene.Scene, opts Options) (*scene.Layout, error) {
	l, _, _, err := r.ResolveWithCacheInfo(ctx, s, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every artifact came from cache. sceneHash must be the hash the layout was
// resolved from.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *scene.Layout, s *scene.Scene, sceneHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForResolve(); err != nil {
		return nil, false, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutOpts := opts.LayoutKeyOpts()
	keys := make(map[string]string, len(opts.Formats))
	for _, format := range opts.Formats {
		keys[format] = r.Keyer.ArtifactKey(sceneHash, layoutOpts, opts.ArtifactKeyOpts(format))
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			if data, ok := r.lookup(ctx, keys[format]); ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()

	sub := opts
	sub.Formats = missing
	rendered, err := Render(ctx, l, s, sub)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		r.store(ctx, keys[format], data, cache.ArtifactTTL)
	}
	r.Logger.Debug("rendered formats", "rendered", missing, "cached", len(opts.Formats)-len(missing))
	return artifacts, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string) (*scene.Layout, bool) {
	data, ok := r.lookup(ctx, key)
	if !ok {
		return nil, false
	}
	var l scene.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		r.Logger.Warn("discarding unreadable cached layout", "key", key, "error", err)
		return nil, false
	}
	return &l, true
}

func (r *Runner) lookup(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	return data, true
}

func (r *Runner) store(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
