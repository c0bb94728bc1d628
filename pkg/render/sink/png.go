package sink

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/callout/pkg/scene"
)

// PNGOption configures RenderPNG.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale  float64
	face   font.Face
	labels bool
}

// WithScale sets the raster scale factor (default 1).
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithFontFace sets the face used for callout text. Boxes are sized when
// the scene is resolved, so the face should match the measurer used there.
func WithFontFace(f font.Face) PNGOption { return func(r *pngRenderer) { r.face = f } }

// WithPNGTargetLabels prints each target's id inside its rectangle.
func WithPNGTargetLabels() PNGOption { return func(r *pngRenderer) { r.labels = true } }

// RenderPNG rasterises the layout.
func RenderPNG(l *scene.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1, face: basicfont.Face7x13}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", r.scale)
	}

	w := int(l.Frame.Width*r.scale + 0.5)
	h := int(l.Frame.Height*r.scale + 0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty frame %v", l.Frame)
	}

	dc := gg.NewContext(w, h)
	dc.Scale(r.scale, r.scale)
	dc.SetFontFace(r.face)

	dc.SetHexColor("#ffffff")
	dc.Clear()

	if b := l.Boundary; b != nil {
		dc.SetHexColor("#8a8a8a")
		dc.SetLineWidth(1)
		dc.SetDash(6, 4)
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		dc.Stroke()
		dc.SetDash()
	}

	for _, t := range l.Targets {
		dc.DrawRectangle(t.Rect.X, t.Rect.Y, t.Rect.Width, t.Rect.Height)
		dc.SetHexColor("#e8f1fb")
		dc.FillPreserve()
		dc.SetHexColor("#3b82c4")
		dc.Stroke()
		if r.labels {
			dc.DrawStringAnchored(t.ID, t.Rect.X+t.Rect.Width/2, t.Rect.Y+t.Rect.Height/2, 0.5, 0.5)
		}
	}

	for _, c := range l.Callouts {
		if !c.Visible {
			continue
		}
		drawCallout(dc, c)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCallout(dc *gg.Context, c scene.Placed) {
	b := c.Box
	dc.DrawRoundedRectangle(b.X, b.Y, b.Width, b.Height, 3)
	dc.SetHexColor("#fffbe6")
	dc.FillPreserve()
	dc.SetHexColor("#333333")
	dc.SetLineWidth(1)
	dc.Stroke()

	tri := arrowTriangle(c)
	dc.MoveTo(tri[0].X, tri[0].Y)
	dc.LineTo(tri[1].X, tri[1].Y)
	dc.LineTo(tri[2].X, tri[2].Y)
	dc.ClosePath()
	dc.Fill()

	lines := textLines(c.Text)
	lh := dc.FontHeight()
	top := b.Y + (b.Height-float64(len(lines))*lh)/2
	dc.SetHexColor("#222222")
	for i, line := range lines {
		dc.DrawStringAnchored(line, b.X+b.Width/2, top+(float64(i)+0.5)*lh, 0.5, 0.5)
	}
}
