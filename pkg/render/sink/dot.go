package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/placement"
	"github.com/matzehuels/callout/pkg/scene"
)

// pointsPerInch converts frame units to Graphviz inches.
const pointsPerInch = 72.0

// Graphviz output formats accepted by RenderGraphviz.
const (
	GraphvizSVG = "svg"
	GraphvizPNG = "png"
)

// RenderDOT converts the layout to a Graphviz graph. Every node is pinned
// at its resolved position, so neato reproduces the layout instead of
// computing one. Edges connect each callout to its target.
func RenderDOT(l *scene.Layout) string {
	var buf bytes.Buffer
	buf.WriteString("digraph callouts {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%s,%s\";\n", num(l.Frame.Width), num(l.Frame.Height))
	buf.WriteString("  node [shape=box, fixedsize=true, fontname=\"monospace\", fontsize=10];\n")
	buf.WriteString("  edge [arrowsize=0.5, color=\"#333333\"];\n")
	buf.WriteString("\n")

	if b := l.Boundary; b != nil {
		fmt.Fprintf(&buf, "  %q [%s, label=\"\", style=dashed, color=\"#8a8a8a\"];\n",
			"@boundary", placeAttrs(*b, l.Frame))
	}
	for _, t := range l.Targets {
		fmt.Fprintf(&buf, "  %q [%s, label=%q, style=filled, fillcolor=\"#e8f1fb\", color=\"#3b82c4\"];\n",
			"target:"+t.ID, placeAttrs(t.Rect, l.Frame), t.ID)
	}
	for _, c := range l.Callouts {
		style := "\"rounded,filled\""
		if !c.Visible {
			style = "\"rounded,filled,dotted\""
		}
		fmt.Fprintf(&buf, "  %q [%s, label=%q, style=%s, fillcolor=\"#fffbe6\"];\n",
			"callout:"+c.ID, placeAttrs(c.Box, l.Frame), c.Text, style)
	}

	buf.WriteString("\n")
	for _, c := range l.Callouts {
		fmt.Fprintf(&buf, "  %q -> %q [tailport=%s];\n", "callout:"+c.ID, "target:"+c.Target, tailPort(c))
	}
	buf.WriteString("}\n")
	return buf.String()
}

// placeAttrs pins r's centre. Graphviz puts the origin at the bottom
// left, so y is flipped against the frame height.
func placeAttrs(r geom.Rect, frame geom.Rect) string {
	cx := r.X + r.Width/2
	cy := frame.Height - (r.Y + r.Height/2)
	return fmt.Sprintf("pos=\"%s,%s!\", width=%s, height=%s",
		num(cx), num(cy), num(r.Width/pointsPerInch), num(r.Height/pointsPerInch))
}

func tailPort(c scene.Placed) string {
	switch c.Side {
	case placement.Top:
		return "s"
	case placement.Bottom:
		return "n"
	case placement.Left:
		return "e"
	}
	return "w"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderGraphviz lays out and renders a DOT graph with neato.
func RenderGraphviz(ctx context.Context, dot, format string) ([]byte, error) {
	var gvFormat graphviz.Format
	switch strings.ToLower(format) {
	case GraphvizSVG:
		gvFormat = graphviz.SVG
	case GraphvizPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported graphviz format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if gvFormat == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the output scales like the native SVG sink.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
