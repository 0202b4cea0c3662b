package timeutil

import (
	"sync"
	"time"
)

// Debouncer delays calls to fn until wait has passed without another Invoke.
// Each Debouncer owns its own timer; instances share nothing.
type Debouncer struct {
	clock Clock
	wait  time.Duration
	fn    func()

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewDebouncer returns a Debouncer that calls fn on clock after wait.
// A nil clock uses RealClock.
func NewDebouncer(clock Clock, wait time.Duration, fn func()) *Debouncer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Debouncer{clock: clock, wait: wait, fn: fn}
}

// Invoke (re)starts the wait. Only the last Invoke of a burst calls fn.
func (d *Debouncer) Invoke() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.wait, func() {
		d.mu.Lock()
		current := gen == d.gen
		d.mu.Unlock()
		// a real timer may already be running when Stop is called
		if current {
			d.fn()
		}
	})
}

// Cancel drops a pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
