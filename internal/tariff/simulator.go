package tariff

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/banshee-data/parking.report/internal/timeutil"
	"github.com/banshee-data/parking.report/internal/units"
)

// Simulator input names.
const (
	FieldType       = "sim-tipo"
	FieldHours      = "sim-horas"
	RateFieldPrefix = "tarifa_"
)

// DebounceWait delays recomputation after keystroke input.
const DebounceWait = 300 * time.Millisecond

// Simulator holds the simulator inputs as text and publishes a Quote on
// every recompute. Keystroke input is debounced per field; change events
// recompute at once.
type Simulator struct {
	clock timeutil.Clock
	wait  time.Duration
	sink  func(Quote)

	// pubMu serialises publishing; mu guards the inputs.
	pubMu sync.Mutex

	mu          sync.Mutex
	vehicleType string
	hours       string
	rates       map[string]string
	debouncers  map[string]*timeutil.Debouncer
	last        Quote
}

// NewSimulator seeds the rate fields from rates, selects vehicleType and
// publishes the first quote before returning. A nil clock uses the real
// clock and a non-positive wait uses DebounceWait.
func NewSimulator(clock timeutil.Clock, wait time.Duration, vehicleType string, rates map[string]int, sink func(Quote)) *Simulator {
	if wait <= 0 {
		wait = DebounceWait
	}
	if sink == nil {
		sink = func(Quote) {}
	}
	s := &Simulator{
		clock:       clock,
		wait:        wait,
		sink:        sink,
		vehicleType: strings.ToLower(vehicleType),
		hours:       "1",
		rates:       make(map[string]string, len(rates)),
		debouncers:  make(map[string]*timeutil.Debouncer),
	}
	for t, r := range rates {
		s.rates[strings.ToLower(t)] = strconv.Itoa(r)
	}
	s.Calculate()
	return s
}

// DefaultRates are the built-in hourly rates per vehicle type.
func DefaultRates() map[string]int {
	out := make(map[string]int, len(units.ValidVehicleTypes))
	for _, t := range units.ValidVehicleTypes {
		out[t] = units.DefaultHourlyRate(t)
	}
	return out
}

// Input records a keystroke on field and schedules a debounced recompute.
// It reports false for an unknown field.
func (s *Simulator) Input(field, value string) bool {
	if !s.set(field, value) {
		return false
	}
	s.debouncer(field).Invoke()
	return true
}

// Change records a committed value on field and recomputes immediately.
func (s *Simulator) Change(field, value string) bool {
	if !s.set(field, value) {
		return false
	}
	s.Calculate()
	return true
}

// Calculate prices the current inputs and publishes the quote. A type with
// no rate field prices at 0. The sink runs without the input lock held, so
// a slow sink never blocks Input; quotes still reach it in order.
func (s *Simulator) Calculate() Quote {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	q := NewQuote(s.vehicleType, ParseHours(s.hours), ParseRate(s.rates[s.vehicleType]))
	s.last = q
	s.mu.Unlock()

	s.sink(q)
	return q
}

// Last returns the most recently published quote.
func (s *Simulator) Last() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Close drops every pending debounced recompute.
func (s *Simulator) Close() {
	s.mu.Lock()
	ds := make([]*timeutil.Debouncer, 0, len(s.debouncers))
	for _, d := range s.debouncers {
		ds = append(ds, d)
	}
	s.mu.Unlock()
	for _, d := range ds {
		d.Cancel()
	}
}

func (s *Simulator) set(field, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case field == FieldType:
		s.vehicleType = strings.ToLower(strings.TrimSpace(value))
	case field == FieldHours:
		s.hours = value
	case strings.HasPrefix(field, RateFieldPrefix) && len(field) > len(RateFieldPrefix):
		s.rates[strings.ToLower(strings.TrimPrefix(field, RateFieldPrefix))] = value
	default:
		return false
	}
	return true
}

func (s *Simulator) debouncer(field string) *timeutil.Debouncer {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debouncers[field]
	if !ok {
		d = timeutil.NewDebouncer(s.clock, s.wait, func() { s.Calculate() })
		s.debouncers[field] = d
	}
	return d
}
