// Package clocktest provides a hand-driven clock.Scheduler for deterministic tests.
package clocktest

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/courtside/go/internal/clock"
)

// ManualScheduler records armed schedules and only fires them when told to.
type ManualScheduler struct {
	mu        sync.Mutex
	schedules []*Schedule
	armed     int
}

// Schedule is one schedule created by a ManualScheduler
type Schedule struct {
	Interval time.Duration
	owner    *ManualScheduler
	fn       func()
	stopped  bool
}

// Stop cancels the schedule
func (s *Schedule) Stop() {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	s.stopped = true
}

// Stopped reports whether Stop has been called
func (s *Schedule) Stopped() bool {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	return s.stopped
}

var _ clock.Scheduler = (*ManualScheduler)(nil)

// NewManualScheduler creates an empty scheduler
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every records a new schedule
func (m *ManualScheduler) Every(interval time.Duration, fn func()) clock.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &Schedule{Interval: interval, owner: m, fn: fn}
	m.schedules = append(m.schedules, s)
	m.armed++
	return s
}

// Active returns the schedules that have not been stopped, oldest first
func (m *ManualScheduler) Active() []*Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Schedule
	for _, s := range m.schedules {
		if !s.stopped {
			out = append(out, s)
		}
	}
	return out
}

// ArmedCount is the total number of schedules ever created
func (m *ManualScheduler) ArmedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

// Fire runs every active schedule once. Schedules armed while firing are not run.
func (m *ManualScheduler) Fire() {
	for _, s := range m.Active() {
		if s.Stopped() {
			continue
		}
		s.fn()
	}
}

// FireStale runs the callback of every schedule, stopped or not. It simulates
// ticks that were already in flight when their schedule was cancelled.
func (m *ManualScheduler) FireStale() {
	m.mu.Lock()
	all := make([]*Schedule, len(m.schedules))
	copy(all, m.schedules)
	m.mu.Unlock()
	for _, s := range all {
		s.fn()
	}
}

// Step advances the fake clock by d and fires every active schedule.
func (m *ManualScheduler) Step(fc *clockwork.FakeClock, d time.Duration) {
	fc.Advance(d)
	m.Fire()
}

// Run repeatedly steps by the shortest active interval until cond returns true
// or nothing is armed, with an upper bound of limit steps. It returns the number of steps taken.
func (m *ManualScheduler) Run(fc *clockwork.FakeClock, limit int, cond func() bool) int {
	for i := 0; i < limit; i++ {
		if cond() {
			return i
		}
		active := m.Active()
		if len(active) == 0 {
			return i
		}
		step := active[0].Interval
		for _, s := range active[1:] {
			if s.Interval < step {
				step = s.Interval
			}
		}
		m.Step(fc, step)
	}
	return limit
}
