package sink

import (
	"strings"

	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/placement"
	"github.com/matzehuels/callout/pkg/scene"
)

type point struct{ X, Y float64 }

// arrowTriangle returns the arrow in frame coordinates: a base centred on
// the arrow's base point on the box edge facing the target, and a tip one
// arrow length beyond it. The base spans the arrow size along the
// perpendicular axis.
func arrowTriangle(p scene.Placed) [3]point {
	base := p.Result.ArrowBase(p.Box)
	cx, cy := p.Box.X+float64(base.X), p.Box.Y+float64(base.Y)
	w, h := p.Arrow.Width, p.Arrow.Height
	switch p.Side {
	case placement.Top:
		return [3]point{{cx - w/2, cy}, {cx + w/2, cy}, {cx, cy + h}}
	case placement.Bottom:
		return [3]point{{cx - w/2, cy}, {cx + w/2, cy}, {cx, cy - h}}
	case placement.Left:
		return [3]point{{cx, cy - h/2}, {cx, cy + h/2}, {cx + w, cy}}
	default:
		return [3]point{{cx, cy - h/2}, {cx, cy + h/2}, {cx - w, cy}}
	}
}

// local translates a triangle into box coordinates.
func local(tri [3]point, box geom.Rect) [3]point {
	for i := range tri {
		tri[i].X -= box.X
		tri[i].Y -= box.Y
	}
	return tri
}

func textLines(s string) []string {
	return strings.Split(s, "\n")
}
