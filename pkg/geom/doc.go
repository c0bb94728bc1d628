// Package geom holds the rectangle and axis types shared by the placement
// engine, the hosts and the renderers.
//
// All coordinates are pixels (or terminal cells for the TUI host) in a
// shared reference frame. Rectangles are values: every operation returns a
// new Rect and never modifies its receiver.
//
// # Relative positions
//
// Hosts report rectangles in absolute viewport coordinates. [ToRelative]
// rebases such a rectangle onto an explicit reference frame (typically the
// document body), so that callers never depend on a hidden global origin:
//
//	body := geom.Rect{X: 8, Y: 8, Width: 1024, Height: 768}
//	raw := geom.Rect{X: 108, Y: 58, Width: 50, Height: 20}
//	rel := geom.ToRelative(raw, body) // {100, 50, 50, 20}
package geom
