// Package liveview serves the dashboard to browsers. It keeps the rendered
// model in memory and pushes every change over a WebSocket; a connected
// browser counts as a visible page.
package liveview

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/parking.report/internal/dashboard"
	"github.com/banshee-data/parking.report/internal/parking"
	"github.com/banshee-data/parking.report/internal/tariff"
	"github.com/banshee-data/parking.report/internal/timeutil"
	"github.com/banshee-data/parking.report/internal/units"
)

// DefaultNotificationTTL is how long a notification stays on the page.
const DefaultNotificationTTL = 5 * time.Second

// Controller is the dashboard as seen by the page controls.
type Controller interface {
	Trigger()
	Poller() *dashboard.Poller
}

// Options configure a Server.
type Options struct {
	Clock             timeutil.Clock
	NotificationTTL   time.Duration
	SimulatorDebounce time.Duration
	Rates             map[string]int
	VehicleType       string
}

// Notification is a transient message shown on the page.
type Notification struct {
	ID        string          `json:"id"`
	Level     dashboard.Level `json:"level"`
	Message   string          `json:"message"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Snapshot is the full page model.
type Snapshot struct {
	Stats                 map[string]string          `json:"stats"`
	Progress              *dashboard.Progress        `json:"progress,omitempty"`
	Rows                  []dashboard.Row            `json:"rows"`
	Notifications         []Notification             `json:"notifications"`
	NotificationTTLMillis int64                      `json:"notification_ttl_ms"`
	Subscriptions         *parking.SubscriptionStats `json:"subscriptions,omitempty"`
	Simulator             *tariff.Quote              `json:"simulator,omitempty"`
	SimulatorText         string                     `json:"simulator_text,omitempty"`
	VehicleTypes          []string                   `json:"vehicle_types"`
	Rates                 map[string]int             `json:"rates"`
	Poller                string                     `json:"poller"`
	Clients               int                        `json:"clients"`
	UpdatedAt             time.Time                  `json:"updated_at"`
}

// Server is the live page model and its WebSocket hub. It implements
// dashboard.View, dashboard.Notifier, dashboard.VisibilitySource and
// dashboard.SubscriptionView.
type Server struct {
	clock timeutil.Clock
	ttl   time.Duration
	rates map[string]int
	hub   *hub
	sim   *tariff.Simulator

	// pub orders model changes and their broadcasts with pages joining and
	// leaving. It is taken before mu.
	pub sync.Mutex

	mu         sync.Mutex
	ctrl       Controller
	stats      map[string]string
	progress   *dashboard.Progress
	rows       []dashboard.Row
	notes      map[string]*note
	noteSeq    uint64
	plans      *parking.SubscriptionStats
	quote      *tariff.Quote
	updatedAt  time.Time
	visibility []func(bool)
}

type note struct {
	Notification
	timer timeutil.Timer
	seq   uint64
}

// New builds a Server. The fee simulator starts with opts.Rates (or the
// stock tariff) and the first vehicle type.
func New(opts Options) *Server {
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	ttl := opts.NotificationTTL
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	rates := opts.Rates
	if len(rates) == 0 {
		rates = tariff.DefaultRates()
	}
	vehicleType := opts.VehicleType
	if vehicleType == "" {
		vehicleType = units.ValidVehicleTypes[0]
	}

	s := &Server{
		clock: clock,
		ttl:   ttl,
		rates: rates,
		stats: make(map[string]string),
		notes: make(map[string]*note),
	}
	s.hub = newHub(s)
	s.sim = tariff.NewSimulator(clock, opts.SimulatorDebounce, vehicleType, rates, s.setQuote)
	return s
}

// Bind attaches the dashboard that the refresh control triggers.
func (s *Server) Bind(ctrl Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl = ctrl
}

// Refresh triggers a dashboard refresh, if one is bound.
func (s *Server) Refresh() bool {
	s.mu.Lock()
	ctrl := s.ctrl
	s.mu.Unlock()
	if ctrl == nil {
		return false
	}
	ctrl.Trigger()
	return true
}

// Simulator returns the shared fee simulator.
func (s *Server) Simulator() *tariff.Simulator { return s.sim }

// Clients returns the number of connected pages.
func (s *Server) Clients() int { return s.hub.count() }

// publish applies update to the model and broadcasts ev as one step, so
// pages see deltas in model order.
func (s *Server) publish(update func(), ev Event) {
	s.pub.Lock()
	defer s.pub.Unlock()
	s.mu.Lock()
	update()
	s.mu.Unlock()
	s.hub.broadcast(ev)
}

func (s *Server) SetStat(id, value string) {
	s.publish(func() {
		s.stats[id] = value
		s.updatedAt = s.clock.Now()
	}, Event{Type: EventStat, ID: id, Value: value, Pulse: true})
}

func (s *Server) SetProgress(p dashboard.Progress) {
	s.publish(func() { s.progress = &p }, Event{Type: EventProgress, Progress: &p})
}

func (s *Server) ReplaceRows(rows []dashboard.Row) {
	s.publish(func() {
		s.rows = rows
		s.updatedAt = s.clock.Now()
	}, Event{Type: EventRows, Rows: rows})
}

// HasTable is always true: the page carries the vehicle table.
func (s *Server) HasTable() bool { return true }

func (s *Server) SetSubscriptions(stats parking.SubscriptionStats) {
	s.publish(func() { s.plans = &stats }, Event{Type: EventSubscriptions, Subscriptions: &stats})
}

// Notify shows message on every page until the TTL expires.
func (s *Server) Notify(level dashboard.Level, message string) {
	now := s.clock.Now()
	n := &note{Notification: Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		ExpiresAt: now.Add(s.ttl),
	}}
	id := n.ID
	nc := n.Notification

	s.publish(func() {
		s.noteSeq++
		n.seq = s.noteSeq
		n.timer = s.clock.AfterFunc(s.ttl, func() { s.Dismiss(id) })
		s.notes[id] = n
	}, Event{Type: EventNotification, Notification: &nc})
}

// Dismiss removes a notification before its TTL. It reports whether the
// notification was still showing.
func (s *Server) Dismiss(id string) bool {
	s.pub.Lock()
	defer s.pub.Unlock()
	s.mu.Lock()
	n, ok := s.notes[id]
	if ok {
		delete(s.notes, id)
		n.timer.Stop()
	}
	s.mu.Unlock()
	if ok {
		s.hub.broadcast(Event{Type: EventDismiss, ID: id})
	}
	return ok
}

// OnVisibilityChange registers fn to run when the first page connects
// (true) or the last one leaves (false). Calls are serialised with joins
// and leaves, so the last call always matches whether a page is connected.
// fn must not call back into the Server synchronously.
func (s *Server) OnVisibilityChange(fn func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibility = append(s.visibility, fn)
}

func (s *Server) visibilityChanged(visible bool) {
	s.mu.Lock()
	fns := append([]func(bool){}, s.visibility...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(visible)
	}
}

func (s *Server) setQuote(q tariff.Quote) {
	s.publish(func() { s.quote = &q }, Event{Type: EventSimulator, Value: q.Text(), Quote: &q})
}

// Snapshot returns a copy of the current page model.
func (s *Server) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Stats:                 make(map[string]string, len(s.stats)),
		Rows:                  append([]dashboard.Row{}, s.rows...),
		Notifications:         make([]Notification, 0, len(s.notes)),
		NotificationTTLMillis: s.ttl.Milliseconds(),
		VehicleTypes:          units.ValidVehicleTypes,
		Rates:                 s.rates,
		Poller:                dashboard.Stopped.String(),
		Clients:               s.hub.count(),
		UpdatedAt:             s.updatedAt,
	}
	for k, v := range s.stats {
		snap.Stats[k] = v
	}
	if s.progress != nil {
		p := *s.progress
		snap.Progress = &p
	}
	if s.plans != nil {
		p := *s.plans
		snap.Subscriptions = &p
	}
	if s.quote != nil {
		q := *s.quote
		snap.Simulator = &q
		snap.SimulatorText = q.Text()
	}
	if s.ctrl != nil {
		snap.Poller = s.ctrl.Poller().State().String()
	}

	notes := make([]*note, 0, len(s.notes))
	for _, n := range s.notes {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].seq < notes[j].seq })
	for _, n := range notes {
		snap.Notifications = append(snap.Notifications, n.Notification)
	}
	return snap
}

// Close drops pending notifications, stops the simulator and disconnects
// every page.
func (s *Server) Close() {
	s.mu.Lock()
	for id, n := range s.notes {
		n.timer.Stop()
		delete(s.notes, id)
	}
	s.mu.Unlock()
	s.sim.Close()
	s.hub.closeAll()
}
