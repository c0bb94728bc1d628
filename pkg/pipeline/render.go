package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/callout/pkg/render/sink"
	"github.com/matzehuels/callout/pkg/scene"
)

// Render generates output artifacts in the requested formats. Formats are
// rendered concurrently; the first failure cancels the rest.
func Render(ctx context.Context, l *scene.Layout, s *scene.Scene, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))

	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := RenderFormat(gctx, l, s, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// RenderFormat renders a single format. s may be nil; it is only embedded
// in JSON output.
func RenderFormat(ctx context.Context, l *scene.Layout, s *scene.Scene, format string, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch format {
	case FormatDOT:
		return []byte(sink.RenderDOT(l)), nil
	case FormatJSON:
		var jsonOpts []sink.JSONOption
		if s != nil {
			jsonOpts = append(jsonOpts, sink.WithJSONScene(s))
		}
		return sink.RenderJSON(l, jsonOpts...)
	}

	if opts.Graphviz {
		return sink.RenderGraphviz(ctx, sink.RenderDOT(l), format)
	}

	switch format {
	case FormatSVG:
		var svgOpts []sink.SVGOption
		if opts.Live {
			svgOpts = append(svgOpts, sink.WithLiveScript())
		}
		if opts.Labels {
			svgOpts = append(svgOpts, sink.WithTargetLabels())
		}
		return sink.RenderSVG(l, svgOpts...), nil
	default: // FormatPNG
		pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
		if opts.Labels {
			pngOpts = append(pngOpts, sink.WithPNGTargetLabels())
		}
		return sink.RenderPNG(l, pngOpts...)
	}
}
