package history

import (
	"context"
	"sync"
	"time"

	"github.com/banshee-data/parking.report/internal/monitoring"
	"github.com/banshee-data/parking.report/internal/timeutil"
)

// DefaultPruneEvery is how often the retainer deletes expired samples.
const DefaultPruneEvery = time.Hour

// Retainer periodically deletes samples older than the retention window.
type Retainer struct {
	store     *Store
	clock     timeutil.Clock
	retention time.Duration
	every     time.Duration

	mu      sync.Mutex
	timer   timeutil.Timer
	running bool
}

// NewRetainer prunes store every interval, keeping retention worth of
// samples. A zero retention keeps everything and Start does nothing.
func NewRetainer(store *Store, clock timeutil.Clock, retention, every time.Duration) *Retainer {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if every <= 0 {
		every = DefaultPruneEvery
	}
	return &Retainer{store: store, clock: clock, retention: retention, every: every}
}

// Start prunes once immediately and then on every tick.
func (r *Retainer) Start() {
	if r.retention <= 0 {
		return
	}
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	r.PruneNow(context.Background())

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.timer = r.clock.AfterFunc(r.every, r.tick)
	}
}

// Stop cancels future prunes.
func (r *Retainer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// PruneNow deletes every sample older than the retention window.
func (r *Retainer) PruneNow(ctx context.Context) int64 {
	cutoff := r.clock.Now().Add(-r.retention)
	n, err := r.store.Prune(ctx, cutoff)
	if err != nil {
		monitoring.Logf("history: prune failed: %v", err)
		return 0
	}
	if n > 0 {
		monitoring.Logf("history: pruned %d samples older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n
}

func (r *Retainer) tick() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.PruneNow(context.Background())

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running && r.timer != nil {
		r.timer.Reset(r.every)
	}
}
