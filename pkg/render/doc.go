// Package render groups the output formats of resolved scenes.
//
// The [sink] subpackage turns a scene.Layout into bytes:
//
//   - SVG: native rendering, optionally with an embedded script that keeps
//     callouts placed when the page is resized
//   - PNG: rasterized with fogleman/gg
//   - JSON: the layout itself, optionally with the source scene
//   - DOT: a Graphviz graph with pinned positions, also used to render
//     SVG and PNG through Graphviz
//
// [sink]: https://pkg.go.dev/github.com/matzehuels/callout/pkg/render/sink
package render
