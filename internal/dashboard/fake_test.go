package dashboard

import (
	"context"
	"sync"

	"github.com/banshee-data/parking.report/internal/parking"
)

// fakeView records what the dashboard rendered.
type fakeView struct {
	mu            sync.Mutex
	stats         map[string]string
	progress      *Progress
	rows          []Row
	replaceCalls  int
	table         bool
	notifications []string
	plans         *parking.SubscriptionStats
	onVisibility  func(bool)
}

func newFakeView(table bool) *fakeView {
	return &fakeView{stats: make(map[string]string), table: table}
}

func (v *fakeView) SetStat(id, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats[id] = value
}

func (v *fakeView) SetProgress(p Progress) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.progress = &p
}

func (v *fakeView) ReplaceRows(rows []Row) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = rows
	v.replaceCalls++
}

func (v *fakeView) HasTable() bool { return v.table }

func (v *fakeView) Notify(level Level, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, string(level)+": "+message)
}

func (v *fakeView) SetSubscriptions(s parking.SubscriptionStats) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.plans = &s
}

func (v *fakeView) OnVisibilityChange(fn func(bool)) { v.onVisibility = fn }

func (v *fakeView) stat(id string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats[id]
}

func (v *fakeView) notes() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.notifications...)
}

// statusReply is one scripted response of fakeSource.
type statusReply struct {
	status parking.OccupancyStatus
	err    error
	// release, when set, blocks the call until closed.
	release chan struct{}
}

// fakeSource serves scripted replies and counts calls.
type fakeSource struct {
	mu            sync.Mutex
	statusReplies []statusReply
	vehicles      []parking.VehicleRecord
	vehiclesErr   error
	statusCalls   int
	vehicleCalls  int
	called        chan int
}

func (s *fakeSource) Status(ctx context.Context) (parking.OccupancyStatus, error) {
	s.mu.Lock()
	s.statusCalls++
	n := s.statusCalls
	var r statusReply
	if len(s.statusReplies) > 0 {
		r = s.statusReplies[0]
		s.statusReplies = s.statusReplies[1:]
	}
	called := s.called
	s.mu.Unlock()

	if called != nil {
		called <- n
	}
	if r.release != nil {
		<-r.release
	}
	return r.status, r.err
}

func (s *fakeSource) Vehicles(ctx context.Context) ([]parking.VehicleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicleCalls++
	return s.vehicles, s.vehiclesErr
}

func (s *fakeSource) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls, s.vehicleCalls
}

// planSource adds subscription stats to fakeSource.
type planSource struct {
	*fakeSource
	stats parking.SubscriptionStats
	err   error
}

func (p *planSource) Subscriptions(ctx context.Context) (parking.SubscriptionStats, error) {
	return p.stats, p.err
}
