// Package notify delivers engine events to logs, message buses and the buzzer.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/events"
	"github.com/mcdev12/courtside/go/internal/metrics"
)

// Notifier receives engine events
type Notifier interface {
	Publish(ctx context.Context, event events.Event) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, event events.Event) error

func (f NotifierFunc) Publish(ctx context.Context, event events.Event) error { return f(ctx, event) }

// Fanout publishes every event to all notifiers and joins their errors
type Fanout []Notifier

func (f Fanout) Publish(ctx context.Context, event events.Event) error {
	var errs []error
	for _, n := range f {
		if err := n.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes events to the structured log; limit alerts are logged as warnings.
type Log struct{}

func (Log) Publish(_ context.Context, event events.Event) error {
	ev := log.Info()
	if event.Type == events.TypeFoulLimitAlerts {
		ev = log.Warn()
		var p events.FoulLimitAlertsPayload
		if err := event.Decode(&p); err == nil {
			ev = ev.Strs("alerts", p.Messages())
		}
	}
	ev.Str("event_id", event.ID.String()).
		Str("event_type", string(event.Type)).
		Str("match_id", event.MatchID.String()).
		RawJSON("payload", event.Payload).
		Msg("match event")
	return nil
}

// MetricNotifier wraps a Notifier with metrics collection
type MetricNotifier struct {
	notifier Notifier
	metrics  metrics.Collector
}

// NewMetricNotifier creates a MetricNotifier
func NewMetricNotifier(notifier Notifier, collector metrics.Collector) *MetricNotifier {
	return &MetricNotifier{notifier: notifier, metrics: collector}
}

func (m *MetricNotifier) Publish(ctx context.Context, event events.Event) error {
	start := time.Now()
	err := m.notifier.Publish(ctx, event)
	m.metrics.RecordPublish(string(event.Type), err == nil, time.Since(start))
	return err
}
