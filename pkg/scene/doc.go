// Package scene describes callout layouts declaratively and resolves them
// through an in-memory host.
//
// A scene is a reference frame, an optional boundary, a set of target
// rectangles and a set of callouts attached to those targets. Scenes are
// written in TOML or JSON:
//
//	name = "demo"
//
//	[frame]
//	x = 0
//	y = 0
//	width = 800
//	height = 600
//
//	[[targets]]
//	id = "save"
//	x = 100
//	y = 100
//	width = 50
//	height = 20
//	motion = "({x: 40*Math.sin(t/20), y: 0})"
//
//	[[callouts]]
//	id = "tip"
//	target = "save"
//	text = "Save all files"
//	side = "top"
//	align = 0.5
//	mode = "polling"
//
// Target and boundary rectangles are relative to the frame. [Resolve]
// places every callout once; [Open] returns a [Live] scene that can be
// stepped tick by tick, which is how polling callouts and scripted motion
// are exercised outside a browser.
package scene
