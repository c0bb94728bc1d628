package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/callout/pkg/scene"
)

const lineHeight = 13.0

const calloutCSS = `
    .frame { fill: #ffffff; stroke: #d0d0d0; }
    .boundary { fill: none; stroke: #8a8a8a; stroke-dasharray: 6 4; }
    .target rect { fill: #e8f1fb; stroke: #3b82c4; }
    .target text { fill: #3b82c4; font: 11px monospace; }
    .callout { transition: opacity 0.5s; }
    .callout-box { fill: #fffbe6; stroke: #333333; }
    .callout-arrow { fill: #333333; }
    .callout-text { fill: #222222; font: 13px monospace; }`

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	live    bool
	labels  bool
	padding float64
}

// WithLiveScript embeds a script that re-places callouts in the browser
// on resize (event callouts) or on their polling interval.
func WithLiveScript() SVGOption { return func(r *svgRenderer) { r.live = true } }

// WithTargetLabels prints each target's id inside its rectangle.
func WithTargetLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithPadding adds a margin around the frame.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// RenderSVG renders the layout as a standalone SVG document.
func RenderSVG(l *scene.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := l.Frame.Width+2*r.padding, l.Frame.Height+2*r.padding
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		-r.padding, -r.padding, w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", calloutCSS)
	fmt.Fprintf(&buf, `  <rect class="frame" x="0" y="0" width="%.1f" height="%.1f"/>`+"\n", l.Frame.Width, l.Frame.Height)

	if b := l.Boundary; b != nil {
		fmt.Fprintf(&buf, `  <rect class="boundary" id="boundary" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			b.X, b.Y, b.Width, b.Height)
	}

	for _, t := range l.Targets {
		renderTarget(&buf, t, r.labels)
	}
	for _, c := range l.Callouts {
		renderCallout(&buf, c)
	}

	if r.live {
		renderLiveScript(&buf)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderTarget(buf *bytes.Buffer, t scene.PlacedTarget, label bool) {
	id := escapeXML(t.ID)
	fmt.Fprintf(buf, `  <g class="target" id="target-%s">`+"\n", id)
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
		t.Rect.X, t.Rect.Y, t.Rect.Width, t.Rect.Height)
	if label {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			t.Rect.X+t.Rect.Width/2, t.Rect.Y+t.Rect.Height/2, id)
	}
	buf.WriteString("  </g>\n")
}

func renderCallout(buf *bytes.Buffer, c scene.Placed) {
	opacity := "1"
	if !c.Visible {
		opacity = "0"
	}
	fmt.Fprintf(buf, `  <g class="callout" id="callout-%s" data-target="target-%s" data-side="%s" data-align="%g" data-mode="%s" data-bounded="%t" data-arrow-w="%.1f" data-arrow-h="%.1f" opacity="%s" transform="translate(%.0f,%.0f)">`+"\n",
		escapeXML(c.ID), escapeXML(c.Target), c.Side, c.Align, c.Mode, c.Bounded,
		c.Arrow.Width, c.Arrow.Height, opacity, c.Box.X, c.Box.Y)
	fmt.Fprintf(buf, `    <rect class="callout-box" x="0" y="0" width="%.1f" height="%.1f" rx="3"/>`+"\n", c.Box.Width, c.Box.Height)

	tri := local(arrowTriangle(c), c.Box)
	fmt.Fprintf(buf, `    <polygon class="callout-arrow" points="%.1f,%.1f %.1f,%.1f %.1f,%.1f"/>`+"\n",
		tri[0].X, tri[0].Y, tri[1].X, tri[1].Y, tri[2].X, tri[2].Y)

	lines := textLines(c.Text)
	top := (c.Box.Height - float64(len(lines))*lineHeight) / 2
	fmt.Fprintf(buf, `    <text class="callout-text" text-anchor="middle" dominant-baseline="central">`)
	for i, line := range lines {
		fmt.Fprintf(buf, `<tspan x="%.1f" y="%.1f">%s</tspan>`,
			c.Box.Width/2, top+(float64(i)+0.5)*lineHeight, escapeXML(line))
	}
	buf.WriteString("</text>\n  </g>\n")
}

func escapeXML(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
