// Package pkg holds the callout libraries.
//
// # Overview
//
// A callout is an annotation box with a pointer arrow, placed next to a
// target element on one of its four sides, aligned along that side and
// optionally kept inside a boundary element. The pkg directory is organized
// bottom-up:
//
//  1. [geom] and [placement] - rectangles and the pure placement math
//  2. [callout] - a placed box bound to a host and a trigger scheduler
//  3. [host/memhost] and [host/chromehost] - in-memory and browser hosts
//  4. [scene] - documents of targets and callouts, resolved on a memhost
//  5. [pipeline] - resolve → render with caching, shared by CLI and server
//
// # Data Flow
//
//	scene.toml / scene.json
//	         ↓
//	    [scene] package (validate, open on a memhost, step ticks)
//	         ↓
//	    [callout] package (measure, place, apply)
//	         ↓
//	    [render/sink] package (SVG, JSON, PNG, DOT)
//
// # Quick Start
//
// Compute one placement:
//
//	res, err := placement.Place(placement.Input{
//	    Target: geom.NewRect(100, 100, 50, 20),
//	    Box:    geom.NewRect(0, 0, 80, 40),
//	    Arrow:  geom.NewRect(0, 0, 10, 10),
//	    Side:   placement.Top,
//	    Align:  0.5,
//	})
//	// res.Box == {85 50}
//
// Resolve and render a scene:
//
//	s, _ := scene.Load("demo.toml")
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(ctx, s, pipeline.Options{Formats: []string{"svg"}})
//
// # Supporting Packages
//
// [trigger] - schedulers deciding when callouts recompute: a real-time
// clock and a manual one for deterministic stepping.
//
// [motion] - scripted target movement, one JavaScript expression per
// target evaluated each tick.
//
// [textsize] - text measurers used to size boxes.
//
// [cache] and [store] - layout and artifact caching (file, memory, Redis)
// and scene storage (file, memory, MongoDB).
//
// [config], [errors], [observability] and [buildinfo] - shared plumbing.
//
// [client] - typed client for the HTTP API.
package pkg
