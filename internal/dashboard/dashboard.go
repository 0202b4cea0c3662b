// Package dashboard drives the parking dashboard: a visibility-aware poller
// triggers refreshes that fetch occupancy and vehicles from the backend and
// reconcile them into one or more views.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/banshee-data/parking.report/internal/monitoring"
	"github.com/banshee-data/parking.report/internal/parking"
	"github.com/banshee-data/parking.report/internal/timeutil"
)

// RefreshErrorMessage is shown when the status fetch fails.
const RefreshErrorMessage = "Error al actualizar los datos"

// Source is the backend the dashboard polls. *parking.Client implements it.
type Source interface {
	Status(ctx context.Context) (parking.OccupancyStatus, error)
	Vehicles(ctx context.Context) ([]parking.VehicleRecord, error)
}

// SubscriptionSource is an optional Source extension for monthly-plan stats.
type SubscriptionSource interface {
	Subscriptions(ctx context.Context) (parking.SubscriptionStats, error)
}

// SubscriptionView is an optional View extension that shows plan stats.
type SubscriptionView interface {
	SetSubscriptions(s parking.SubscriptionStats)
}

// SampleRecorder receives every status sample that was rendered.
type SampleRecorder interface {
	Record(ctx context.Context, s parking.OccupancyStatus, at time.Time) error
}

// Options tune a Dashboard. The zero value polls every DefaultInterval with
// last-write-wins rendering.
type Options struct {
	Interval time.Duration
	// DiscardStale drops a response when a newer request of the same kind
	// has been issued since, so out-of-order arrivals never render.
	DiscardStale bool
	Clock        timeutil.Clock
	Recorder     SampleRecorder
}

// Dashboard owns the poller and the refresh operation.
type Dashboard struct {
	source       Source
	view         View
	notifier     Notifier
	clock        timeutil.Clock
	recorder     SampleRecorder
	discardStale bool
	poller       *Poller

	// renderMu serialises the check-latest-then-render step.
	renderMu     sync.Mutex
	statusIssued uint64
	tableIssued  uint64
	plansIssued  uint64

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// New wires a dashboard to its source and view. notifier may be nil. If the
// view is a VisibilitySource, the dashboard subscribes to it here: hidden
// stops polling, visible restarts it and refreshes at once.
func New(source Source, view View, notifier Notifier, opts Options) *Dashboard {
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dashboard{
		source:       source,
		view:         view,
		notifier:     notifier,
		clock:        clock,
		recorder:     opts.Recorder,
		discardStale: opts.DiscardStale,
		ctx:          ctx,
		cancel:       cancel,
	}
	d.poller = NewPoller(clock, opts.Interval, d.Trigger)

	if vs, ok := view.(VisibilitySource); ok {
		vs.OnVisibilityChange(func(visible bool) {
			if visible {
				d.Visible()
			} else {
				d.Hidden()
			}
		})
	}
	return d
}

// Start begins periodic polling. Refreshes run under ctx until Close.
// It does nothing after Close.
func (d *Dashboard) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.cancel()
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.poller.Start()
}

// Close stops polling, cancels in-flight refreshes and waits for them.
// Polling cannot be restarted afterwards.
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.cancel()
	d.mu.Unlock()
	d.poller.Stop()
	d.wg.Wait()
}

// Poller exposes the lifecycle for status reporting.
func (d *Dashboard) Poller() *Poller { return d.poller }

// Trigger starts one refresh in the background. It backs the poll tick and
// the manual refresh control. It does nothing after Close.
func (d *Dashboard) Trigger() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	ctx := d.ctx
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.Refresh(ctx)
	}()
}

// Visible resumes polling and refreshes immediately. It does nothing after
// Close.
func (d *Dashboard) Visible() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.poller.Start()
	d.mu.Unlock()
	d.Trigger()
}

// Hidden pauses polling. In-flight refreshes still complete.
func (d *Dashboard) Hidden() {
	d.poller.Stop()
}

// Wait blocks until every background refresh started so far has finished.
func (d *Dashboard) Wait() {
	d.wg.Wait()
}

// Refresh fetches status and renders it; then, if the view has a table,
// fetches and renders the vehicle list. A status failure is logged and
// notified once and leaves the view untouched. A vehicle failure is logged
// only.
func (d *Dashboard) Refresh(ctx context.Context) {
	seq := d.issue(&d.statusIssued)
	status, err := d.source.Status(ctx)
	if err != nil {
		monitoring.Logf("dashboard: status fetch failed: %v", err)
		if d.isLatest(&d.statusIssued, seq) {
			d.notify(LevelError, RefreshErrorMessage)
		}
		return
	}
	if !d.render(&d.statusIssued, seq, func() { RenderStats(d.view, status) }) {
		monitoring.Logf("dashboard: discarded stale status response #%d", seq)
		return
	}
	d.record(ctx, status)

	if d.view.HasTable() {
		d.refreshTable(ctx)
	}
	d.refreshPlans(ctx)
}

func (d *Dashboard) refreshTable(ctx context.Context) {
	seq := d.issue(&d.tableIssued)
	vehicles, err := d.source.Vehicles(ctx)
	if err != nil {
		monitoring.Logf("dashboard: vehicle list fetch failed: %v", err)
		return
	}
	if !d.render(&d.tableIssued, seq, func() { RenderTable(d.view, vehicles) }) {
		monitoring.Logf("dashboard: discarded stale vehicle list #%d", seq)
	}
}

func (d *Dashboard) refreshPlans(ctx context.Context) {
	src, ok := d.source.(SubscriptionSource)
	if !ok {
		return
	}
	sv, ok := d.view.(SubscriptionView)
	if !ok {
		return
	}
	seq := d.issue(&d.plansIssued)
	stats, err := src.Subscriptions(ctx)
	if err != nil {
		monitoring.Logf("dashboard: subscription stats fetch failed: %v", err)
		return
	}
	d.render(&d.plansIssued, seq, func() { sv.SetSubscriptions(stats) })
}

func (d *Dashboard) issue(counter *uint64) uint64 {
	d.renderMu.Lock()
	defer d.renderMu.Unlock()
	*counter++
	return *counter
}

func (d *Dashboard) isLatest(counter *uint64, seq uint64) bool {
	if !d.discardStale {
		return true
	}
	d.renderMu.Lock()
	defer d.renderMu.Unlock()
	return *counter == seq
}

// render applies fn unless the response is stale. It reports whether fn ran.
func (d *Dashboard) render(counter *uint64, seq uint64, fn func()) bool {
	d.renderMu.Lock()
	defer d.renderMu.Unlock()
	if d.discardStale && *counter != seq {
		return false
	}
	fn()
	return true
}

func (d *Dashboard) notify(level Level, msg string) {
	if d.notifier != nil {
		d.notifier.Notify(level, msg)
	}
}

func (d *Dashboard) record(ctx context.Context, s parking.OccupancyStatus) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.Record(ctx, s, d.clock.Now()); err != nil {
		monitoring.Logf("dashboard: failed to record occupancy sample: %v", err)
	}
}
