// Package trigger provides the recomputation triggers a callout registers
// with: a fixed-interval tick (polling mode) and a resize notification
// (event mode).
//
// Every registration returns a [Registration] whose Cancel releases the
// callback. Holding the registration, not the callback, is what ties the
// trigger's lifetime to the callout that owns it.
//
// Two schedulers are provided:
//   - [Manual] stores callbacks and runs them when the driver calls Tick or
//     Resize. Used by tests, scene resolution and the TUI, where an outer
//     loop already owns time.
//   - [Clock] runs a time.Ticker per registration and fans resize
//     notifications out to subscribers.
package trigger

import (
	"sync"
	"time"
)

// Registration is a cancellable trigger subscription.
type Registration interface {
	// Cancel stops further invocations. It is safe to call more than once.
	Cancel()
}

// Func adapts a plain function to Registration. The function runs at most
// once.
type Func func()

// Cancel implements Registration. Func values are not safe for concurrent
// Cancel calls; use [Once] for that.
func (f Func) Cancel() {
	if f != nil {
		f()
	}
}

// Once wraps fn so that concurrent and repeated Cancel calls run it once.
func Once(fn func()) Registration {
	var once sync.Once
	return Func(func() { once.Do(fn) })
}

// Nop is a registration with nothing to cancel.
var Nop Registration = Func(nil)

// Scheduler registers tick and resize callbacks.
type Scheduler interface {
	// Every calls fn every interval until the registration is cancelled.
	Every(interval time.Duration, fn func()) Registration

	// OnResize calls fn whenever the viewport size changes.
	OnResize(fn func()) Registration
}
