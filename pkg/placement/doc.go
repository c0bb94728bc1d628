// Package placement computes where a callout box and its arrow go relative
// to a target rectangle.
//
// # Rules
//
// A placement is described by an [Input]: the target, box and arrow
// rectangles (all in the same reference frame, see [geom.ToRelative]), the
// [Side] of the target the box points from, an alignment fraction in
// [0, 1] and an optional boundary.
//
// Two axes matter:
//
//   - The perpendicular axis (horizontal for Top/Bottom, vertical for
//     Left/Right) is where alignment applies. The box is centred on the
//     point align*target.size along the target edge, then clamped into
//     the boundary if one is given.
//   - The fixed axis is where the box keeps a constant [Gap] from the
//     target edge. It is never clamped: the gap wins over the boundary.
//
// When clamping moves the box, the arrow offset compensates by the same
// amount so it keeps pointing at the original anchor, and is finally
// pinned to the box's extent.
//
// Every computation is pure and stateless: identical inputs always yield
// identical results.
//
// # Example
//
//	res, err := placement.Place(placement.Input{
//	    Target: geom.Rect{X: 100, Y: 100, Width: 50, Height: 20},
//	    Box:    geom.Rect{Width: 80, Height: 40},
//	    Arrow:  geom.Rect{Width: 10, Height: 10},
//	    Side:   placement.Top,
//	    Align:  0.5,
//	})
//	// res.Box == geom.Point{X: 85, Y: 50}
package placement
