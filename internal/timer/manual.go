package timer

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler for tests. Time only moves when
// Advance or FireNext is called, and callbacks run on the caller's
// goroutine in deadline order.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer

	// Limit caps outstanding timers; zero means unlimited.
	Limit int

	// Scheduled records every delay that was requested, in order.
	Scheduled []time.Duration
}

// NewManual returns a Manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTimer struct {
	m   *Manual
	at  time.Duration
	seq int
	fn  func()
}

// AfterFunc queues fn to run once the manual clock reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) (Timer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Limit > 0 && len(m.pending) >= m.Limit {
		return nil, ErrPoolExhausted
	}
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	m.Scheduled = append(m.Scheduled, d)
	return t, nil
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for i, p := range t.m.pending {
		if p == t {
			t.m.pending = append(t.m.pending[:i], t.m.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Now returns the elapsed manual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of outstanding timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance moves time forward by d, running every callback that falls due,
// including ones scheduled by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// FireNext jumps to the earliest pending deadline and runs that callback.
// It reports false when nothing is pending.
func (m *Manual) FireNext() bool {
	t := m.popDue(-1)
	if t == nil {
		return false
	}
	t.fn()
	return true
}

// RunUntilIdle fires callbacks until none remain or max callbacks ran.
// It returns the number of callbacks run.
func (m *Manual) RunUntilIdle(max int) int {
	n := 0
	for n < max && m.FireNext() {
		n++
	}
	return n
}

// popDue removes and returns the earliest timer due at or before limit.
// A negative limit accepts any deadline.
func (m *Manual) popDue(limit time.Duration) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at == m.pending[j].at {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].at < m.pending[j].at
	})
	t := m.pending[0]
	if limit >= 0 && t.at > limit {
		return nil
	}
	m.pending = m.pending[1:]
	if t.at > m.now {
		m.now = t.at
	}
	return t
}
