package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CollapsesBurst(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	calls := 0
	d := NewDebouncer(clock, 300*time.Millisecond, func() { calls++ })

	for i := 0; i < 5; i++ {
		d.Invoke()
		clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 0, calls, "no call while keystrokes keep arriving")

	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, calls)

	clock.Advance(time.Second)
	assert.Equal(t, 1, calls)
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	calls := 0
	d := NewDebouncer(clock, 300*time.Millisecond, func() { calls++ })

	d.Invoke()
	clock.Advance(400 * time.Millisecond)
	d.Invoke()
	clock.Advance(400 * time.Millisecond)

	assert.Equal(t, 2, calls)
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	calls := 0
	d := NewDebouncer(clock, 300*time.Millisecond, func() { calls++ })

	d.Invoke()
	d.Cancel()
	clock.Advance(time.Second)

	assert.Equal(t, 0, calls)
}

func TestDebouncer_InstancesAreIndependent(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	var a, b int
	da := NewDebouncer(clock, 300*time.Millisecond, func() { a++ })
	db := NewDebouncer(clock, 300*time.Millisecond, func() { b++ })

	da.Invoke()
	clock.Advance(200 * time.Millisecond)
	db.Invoke()
	clock.Advance(100 * time.Millisecond)

	assert.Equal(t, 1, a)
	assert.Equal(t, 0, b, "invoking one debouncer must not reset another")

	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, 1, b)
}

func TestDebouncer_RealClock(t *testing.T) {
	done := make(chan struct{}, 1)
	d := NewDebouncer(nil, 5*time.Millisecond, func() { done <- struct{}{} })
	d.Invoke()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
}
