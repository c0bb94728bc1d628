package trigger

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// Manual is a Scheduler driven explicitly by its owner. Tick runs every
// live interval callback once regardless of its interval; Resize runs every
// resize callback. Callbacks run synchronously on the caller's goroutine in
// registration order.
type Manual struct {
	mu     sync.Mutex
	nextID int
	ticks  map[int]manualEntry
	resize map[int]manualEntry
}

type manualEntry struct {
	interval time.Duration
	fn       func()
}

// NewManual creates an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{
		ticks:  make(map[int]manualEntry),
		resize: make(map[int]manualEntry),
	}
}

// Every implements Scheduler.
func (m *Manual) Every(interval time.Duration, fn func()) Registration {
	return m.add(m.ticks, manualEntry{interval: interval, fn: fn})
}

// OnResize implements Scheduler.
func (m *Manual) OnResize(fn func()) Registration {
	return m.add(m.resize, manualEntry{fn: fn})
}

func (m *Manual) add(set map[int]manualEntry, e manualEntry) Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	set[id] = e
	return Once(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(set, id)
	})
}

// Tick runs all interval callbacks once.
func (m *Manual) Tick() { m.run(m.ticks) }

// Resize runs all resize callbacks once.
func (m *Manual) Resize() { m.run(m.resize) }

// Pending returns the number of live tick and resize registrations.
func (m *Manual) Pending() (ticks, resizes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ticks), len(m.resize)
}

// Intervals returns the intervals of live tick registrations, in
// registration order.
func (m *Manual) Intervals() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, 0, len(m.ticks))
	for _, id := range sortedIDs(m.ticks) {
		out = append(out, m.ticks[id].interval)
	}
	return out
}

// run snapshots the callbacks so that a callback may cancel registrations
// without deadlocking.
func (m *Manual) run(set map[int]manualEntry) {
	m.mu.Lock()
	ids := sortedIDs(set)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, set[id].fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func sortedIDs(set map[int]manualEntry) []int {
	return slices.Sorted(maps.Keys(set))
}

var _ Scheduler = (*Manual)(nil)
