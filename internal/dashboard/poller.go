package dashboard

import (
	"sync"
	"time"

	"github.com/banshee-data/parking.report/internal/timeutil"
)

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 30 * time.Second

// State is the poller lifecycle state.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Poller calls tick every interval while Running. Stopping it only prevents
// future ticks; a tick already in progress is left alone.
type Poller struct {
	clock    timeutil.Clock
	interval time.Duration
	tick     func()

	mu    sync.Mutex
	state State
	timer timeutil.Timer
	gen   uint64
}

// NewPoller returns a Stopped poller. A nil clock uses the real clock and a
// non-positive interval uses DefaultInterval.
func NewPoller(clock timeutil.Clock, interval time.Duration, tick func()) *Poller {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{clock: clock, interval: interval, tick: tick}
}

// Start schedules the repeating tick. It reports false if already Running.
func (p *Poller) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Running {
		return false
	}
	p.state = Running
	p.gen++
	gen := p.gen
	p.timer = p.clock.AfterFunc(p.interval, func() { p.fire(gen) })
	return true
}

// Stop cancels the scheduled tick. It reports false if already Stopped.
func (p *Poller) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Stopped {
		return false
	}
	p.state = Stopped
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	return true
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Running reports whether ticks are scheduled.
func (p *Poller) Running() bool { return p.State() == Running }

// Interval returns the tick period.
func (p *Poller) Interval() time.Duration { return p.interval }

// fire re-arms the timer before running tick so the period does not drift
// with tick duration. A stale generation means Stop (and maybe Start) ran
// after this timer was armed.
func (p *Poller) fire(gen uint64) {
	p.mu.Lock()
	if p.state != Running || gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.timer.Reset(p.interval)
	p.mu.Unlock()

	p.tick()
}
