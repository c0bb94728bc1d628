// Package sink renders resolved scenes.
//
// A sink turns a [scene.Layout] into an output format:
//
//   - SVG: targets, boundary and callouts, optionally with a live script
//     that keeps the callouts placed when the document is resized
//   - JSON: the layout itself, for external tools
//   - PNG: a raster image drawn with fogleman/gg
//   - DOT: a Graphviz graph with pinned positions, which [RenderGraphviz]
//     lays out with neato and renders to SVG or PNG
//
// Basic usage:
//
//	layout, _ := scene.Resolve(ctx, s, scene.Options{})
//	svg := sink.RenderSVG(layout, sink.WithLiveScript())
//	png, err := sink.RenderPNG(layout, sink.WithScale(2))
//
// All sinks draw the same geometry: the box rectangles and arrow nodes
// reported by the layout, with each arrow drawn as a triangle whose tip
// points at the target.
package sink
