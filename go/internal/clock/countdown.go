package clock

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/models"
)

// Hooks are called by a Countdown while the guard is held.
// They must not try to take the guard again.
type Hooks struct {
	// OnTick receives the milliseconds actually taken off the clock by a tick.
	OnTick func(consumedMs int64)
	// OnExpire runs once the clock has hit zero and stopped.
	OnExpire func()
	// OnRearm runs whenever a new tick schedule is armed.
	OnRearm func(interval time.Duration)
}

// Config parameterizes a Countdown
type Config struct {
	Kind      Kind
	CapMs     int64 // upper bound for Adjust and Reset, zero means unbounded
	Cadence   CadencePolicy
	Clock     clockwork.Clock
	Scheduler Scheduler
	// Guard serializes every mutation of the clock state. Callers of the
	// exported methods must already hold it; scheduled ticks acquire it.
	Guard sync.Locker
	Hooks Hooks
}

// Countdown is a drift-correcting countdown over a models.ClockState.
//
// Each tick subtracts the wall-clock time since the previous anchor, so late or
// dropped ticks never make the clock slow. At most one tick schedule is live at
// a time; every re-arm bumps a generation counter and ticks from an older
// generation are discarded.
type Countdown struct {
	kind    Kind
	state   *models.ClockState
	capMs   int64
	cadence CadencePolicy
	clock   clockwork.Clock
	sched   Scheduler
	guard   sync.Locker
	hooks   Hooks

	active     Schedule
	armed      time.Duration
	generation uint64
}

// New wraps state in a countdown. The pointer must stay valid for the life of the Countdown.
func New(state *models.ClockState, cfg Config) *Countdown {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewTickerScheduler(cfg.Clock)
	}
	if cfg.Cadence == nil {
		cfg.Cadence = GameCadence
	}
	if cfg.Guard == nil {
		cfg.Guard = &sync.Mutex{}
	}
	return &Countdown{
		kind:    cfg.Kind,
		state:   state,
		capMs:   cfg.CapMs,
		cadence: cfg.Cadence,
		clock:   cfg.Clock,
		sched:   cfg.Scheduler,
		guard:   cfg.Guard,
		hooks:   cfg.Hooks,
	}
}

// Kind reports which clock this is
func (c *Countdown) Kind() Kind { return c.kind }

// Running reports whether the clock is counting down
func (c *Countdown) Running() bool { return c.state.Running }

// RemainingMs returns the remaining time as of the last tick
func (c *Countdown) RemainingMs() int64 { return c.state.RemainingMs }

// ArmedInterval returns the interval of the live schedule, or zero when idle.
func (c *Countdown) ArmedInterval() time.Duration { return c.armed }

// Start begins counting down from the current remaining time.
// Starting a running clock settles elapsed time and re-anchors it.
// A clock with nothing left cannot be started and Start returns false.
func (c *Countdown) Start() bool {
	now := c.clock.Now()
	if c.state.Running {
		if c.settle(now) {
			c.expire()
			return false
		}
	}
	if c.state.RemainingMs <= 0 {
		return false
	}
	c.state.Running = true
	c.state.LastTickAnchor = &now
	c.arm()
	return true
}

// Pause stops the clock, keeping the remaining time. Pausing an idle clock is a no-op.
func (c *Countdown) Pause() {
	if c.state.Running && c.settle(c.clock.Now()) {
		c.expire()
		return
	}
	c.disarm()
	c.state.Running = false
	c.state.LastTickAnchor = nil
}

// Reset sets the remaining time. A running clock keeps running from the new value.
func (c *Countdown) Reset(ms int64) {
	if c.state.Running {
		c.settle(c.clock.Now())
	}
	c.state.RemainingMs = c.clamp(ms)
	c.restartIfRunning()
}

// Adjust moves the remaining time by delta, clamped to the clock's bounds.
func (c *Countdown) Adjust(deltaMs int64) {
	if c.state.Running {
		c.settle(c.clock.Now())
	}
	c.state.RemainingMs = c.clamp(addSaturating(c.state.RemainingMs, deltaMs))
	c.restartIfRunning()
}

// Halt cancels the schedule without settling elapsed time. It is used when
// the whole match state is being replaced.
func (c *Countdown) Halt() {
	c.disarm()
}

// Resume re-arms a clock whose state says it is running, anchoring it at now.
func (c *Countdown) Resume() {
	if !c.state.Running {
		return
	}
	if c.state.RemainingMs <= 0 {
		c.state.RemainingMs = 0
		c.expire()
		return
	}
	now := c.clock.Now()
	c.state.LastTickAnchor = &now
	c.arm()
}

func (c *Countdown) restartIfRunning() {
	if !c.state.Running {
		return
	}
	if c.state.RemainingMs == 0 {
		c.expire()
		return
	}
	now := c.clock.Now()
	c.state.LastTickAnchor = &now
	c.arm()
}

// addSaturating adds b to a, pinning the result at the int64 limits instead of wrapping.
func addSaturating(a, b int64) int64 {
	sum := a + b
	switch {
	case b > 0 && sum < a:
		return math.MaxInt64
	case b < 0 && sum > a:
		return math.MinInt64
	}
	return sum
}

func (c *Countdown) clamp(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	if c.capMs > 0 && ms > c.capMs {
		return c.capMs
	}
	return ms
}

// arm replaces the live schedule with one at the cadence for the current remaining time.
func (c *Countdown) arm() {
	c.disarm()
	interval := c.cadence(c.state.RemainingMs)
	generation := c.generation
	c.armed = interval
	c.active = c.sched.Every(interval, func() { c.fire(generation) })

	log.Debug().
		Str("clock", string(c.kind)).
		Int64("remaining_ms", c.state.RemainingMs).
		Dur("interval", interval).
		Msg("armed clock")

	if c.hooks.OnRearm != nil {
		c.hooks.OnRearm(interval)
	}
}

func (c *Countdown) disarm() {
	if c.active != nil {
		c.active.Stop()
		c.active = nil
	}
	c.armed = 0
	c.generation++
}

func (c *Countdown) fire(generation uint64) {
	c.guard.Lock()
	defer c.guard.Unlock()

	if generation != c.generation || !c.state.Running {
		return
	}
	c.tick()
}

func (c *Countdown) tick() {
	if c.settle(c.clock.Now()) {
		c.expire()
		return
	}
	if c.cadence(c.state.RemainingMs) != c.armed {
		c.arm()
	}
}

// settle takes the time since the anchor off the clock and reports whether it ran out.
// The anchor advances by whole milliseconds only so sub-millisecond remainders carry over.
func (c *Countdown) settle(now time.Time) bool {
	anchor := now
	if c.state.LastTickAnchor != nil {
		anchor = *c.state.LastTickAnchor
	}
	elapsedMs := now.Sub(anchor).Milliseconds()
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	next := anchor.Add(time.Duration(elapsedMs) * time.Millisecond)
	c.state.LastTickAnchor = &next

	before := c.state.RemainingMs
	c.state.RemainingMs = max(0, before-elapsedMs)
	if consumed := before - c.state.RemainingMs; consumed > 0 && c.hooks.OnTick != nil {
		c.hooks.OnTick(consumed)
	}
	return c.state.RemainingMs == 0
}

func (c *Countdown) expire() {
	c.disarm()
	c.state.RemainingMs = 0
	c.state.Running = false
	c.state.LastTickAnchor = nil

	log.Info().Str("clock", string(c.kind)).Msg("clock expired")

	if c.hooks.OnExpire != nil {
		c.hooks.OnExpire()
	}
}
