package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/events"
)

const defaultQueueSize = 256

// Dispatcher hands events to a Notifier on its own goroutine so that the
// engine never waits on a slow sink. Enqueue drops the event when the queue is full.
type Dispatcher struct {
	notifier       Notifier
	queue          chan events.Event
	publishTimeout time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewDispatcher creates a dispatcher with a queue of the given size (0 uses the default)
func NewDispatcher(notifier Notifier, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		notifier:       notifier,
		queue:          make(chan events.Event, queueSize),
		publishTimeout: 5 * time.Second,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start launches the delivery goroutine
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		go d.run(ctx)
	})
}

// Enqueue schedules an event for delivery without blocking
func (d *Dispatcher) Enqueue(event events.Event) {
	select {
	case d.queue <- event:
	default:
		log.Warn().
			Str("event_type", string(event.Type)).
			Str("event_id", event.ID.String()).
			Msg("notification queue full, dropping event")
	}
}

// Stop delivers what is already queued and waits for the goroutine to exit.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
	d.startOnce.Do(func() { close(d.doneCh) })
	<-d.doneCh
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.doneCh)
	for {
		select {
		case e := <-d.queue:
			d.deliver(ctx, e)
		case <-d.stopCh:
			d.drain(ctx)
			return
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx))
			return
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case e := <-d.queue:
			d.deliver(ctx, e)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e events.Event) {
	pctx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()
	if err := d.notifier.Publish(pctx, e); err != nil {
		log.Error().
			Err(err).
			Str("event_type", string(e.Type)).
			Str("event_id", e.ID.String()).
			Msg("failed to deliver notification")
	}
}
