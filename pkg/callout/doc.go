// Package callout manages the lifecycle of a callout box: a floating box
// with an arrow that points at a target node and follows it.
//
// A [Callout] owns two render nodes (the box and its arrow) created through
// a [Host], and one trigger registration obtained from a
// [trigger.Scheduler]. On every trigger it re-reads the reference frame,
// target, box, arrow and optional boundary rectangles from the host,
// converts them with [geom.ToRelative], runs [placement.Place] and applies
// the result as node positions.
//
// # Modes
//
//   - [ModePolling] recomputes on a fixed interval, for targets that move
//     or resize continuously.
//   - [ModeEvent] recomputes only on resize notifications, for static
//     layouts.
//
// # Failures
//
// Configuration errors (unknown side, alignment outside [0, 1]) are
// reported by [New]. A cycle in which any node cannot be measured is
// skipped: the box keeps its last rendered position, [Callout.Failures]
// counts consecutive skips and nothing is returned to the scheduler.
//
// # Teardown
//
// [Callout.Close] cancels the trigger and hover registrations and removes
// the box from the host, so no callback keeps a reference to removed nodes.
package callout
