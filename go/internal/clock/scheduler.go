package clock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Schedule is a repeating callback that can be cancelled.
type Schedule interface {
	// Stop cancels the schedule. It never blocks and is safe to call more than once.
	Stop()
}

// Scheduler arms repeating callbacks. Production code uses TickerScheduler;
// tests drive ticks by hand.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Schedule
}

// TickerScheduler runs each schedule on its own goroutine fed by a clockwork ticker.
type TickerScheduler struct {
	clock clockwork.Clock
}

// NewTickerScheduler creates a scheduler backed by the given clock
func NewTickerScheduler(clock clockwork.Clock) *TickerScheduler {
	return &TickerScheduler{clock: clock}
}

// Every starts a ticker and calls fn on every tick until the schedule is stopped.
func (s *TickerScheduler) Every(interval time.Duration, fn func()) Schedule {
	t := &tickerSchedule{
		ticker: s.clock.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go t.run(fn)
	return t
}

type tickerSchedule struct {
	ticker clockwork.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *tickerSchedule) run(fn func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.Chan():
			// A tick may race with Stop; prefer the stop.
			select {
			case <-t.done:
				return
			default:
			}
			fn()
		}
	}
}

func (t *tickerSchedule) Stop() {
	t.once.Do(func() {
		close(t.done)
		stopAndDrainTicker(t.ticker)
	})
}

// stopAndDrainTicker stops a ticker and drops a pending tick so nothing is delivered late.
func stopAndDrainTicker(ticker clockwork.Ticker) {
	ticker.Stop()
	select {
	case <-ticker.Chan():
	default:
	}
}
