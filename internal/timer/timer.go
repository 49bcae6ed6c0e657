// Package timer provides one-shot callback scheduling for hardware-style
// timer chains. Callbacks run on their own goroutine and must not block.
package timer

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/atomic"
)

// DefaultPoolSize is the number of timers that may be outstanding at
// once, one per hardware alarm slot of a microcontroller port.
const DefaultPoolSize = 16

// ErrPoolExhausted is returned when every timer slot is in use.
var ErrPoolExhausted = errors.New("timer: pool exhausted")

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented
	// the callback from running.
	Stop() bool
}

// Scheduler arranges for fn to be called once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (Timer, error)
}

// ClockScheduler schedules callbacks on a clock.Clock with a bounded
// number of outstanding timers.
type ClockScheduler struct {
	clk    clock.Clock
	limit  int32
	active atomic.Int32
}

// NewClockScheduler returns a scheduler backed by clk. A poolSize <= 0
// selects DefaultPoolSize.
func NewClockScheduler(clk clock.Clock, poolSize int) *ClockScheduler {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	return &ClockScheduler{clk: clk, limit: int32(poolSize)}
}

// AfterFunc schedules fn after d. It returns ErrPoolExhausted without
// scheduling anything when all slots are taken.
func (s *ClockScheduler) AfterFunc(d time.Duration, fn func()) (Timer, error) {
	if s.active.Inc() > s.limit {
		s.active.Dec()
		return nil, ErrPoolExhausted
	}
	t := &clockTimer{sched: s}
	t.timer = s.clk.AfterFunc(d, func() {
		if t.release() {
			fn()
		}
	})
	return t, nil
}

// Active returns the number of outstanding timers.
func (s *ClockScheduler) Active() int {
	return int(s.active.Load())
}

type clockTimer struct {
	sched *ClockScheduler
	timer *clock.Timer
	fired atomic.Bool
}

// release frees the slot exactly once, whichever of fire or stop wins.
func (t *clockTimer) release() bool {
	if !t.fired.CompareAndSwap(false, true) {
		return false
	}
	t.sched.active.Dec()
	return true
}

func (t *clockTimer) Stop() bool {
	if !t.timer.Stop() {
		return false
	}
	return t.release()
}
