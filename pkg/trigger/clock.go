package trigger

import (
	"context"
	"sync"
	"time"
)

// Clock is a Scheduler backed by real time. Interval callbacks run on one
// goroutine per registration; resize callbacks run on the goroutine calling
// NotifyResize. All goroutines stop when the registration is cancelled or
// the clock's context is done.
type Clock struct {
	ctx context.Context

	mu     sync.Mutex
	nextID int
	resize map[int]func()
	wg     sync.WaitGroup
}

// NewClock creates a clock scheduler bound to ctx.
func NewClock(ctx context.Context) *Clock {
	return &Clock{ctx: ctx, resize: make(map[int]func())}
}

// Every implements Scheduler.
func (c *Clock) Every(interval time.Duration, fn func()) Registration {
	if interval <= 0 {
		interval = time.Millisecond
	}
	ctx, cancel := context.WithCancel(c.ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Cancel may race with the tick; prefer cancellation.
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()

	// Cancel does not wait for an in-flight callback, so a callback may
	// cancel its own registration.
	return Once(cancel)
}

// OnResize implements Scheduler.
func (c *Clock) OnResize(fn func()) Registration {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.resize[id] = fn
	return Once(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.resize, id)
	})
}

// NotifyResize runs all resize callbacks.
func (c *Clock) NotifyResize() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.resize))
	for _, fn := range c.resize {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Wait blocks until all interval goroutines have exited.
func (c *Clock) Wait() { c.wg.Wait() }

var _ Scheduler = (*Clock)(nil)
