// Package metrics collects operational metrics of the scorekeeping engine.
package metrics

import "time"

// Collector defines the interface for collecting engine metrics
type Collector interface {
	RecordTick(clock string, consumedMs int64)
	RecordRearm(clock string, interval time.Duration)
	RecordExpiry(clock string)
	RecordClockRemaining(clock string, remainingMs int64)
	RecordPeriod(period int)
	RecordFoul(category string, delta int)
	RecordAlert(kind string)
	RecordSnapshot(success bool, duration time.Duration)
	RecordPublish(eventType string, success bool, duration time.Duration)
	RecordHTTPRequest(route, method string, status int, duration time.Duration)
}

// NoOp is a no-op implementation for when metrics aren't needed
type NoOp struct{}

var _ Collector = NoOp{}

func (NoOp) RecordTick(string, int64)                                 {}
func (NoOp) RecordRearm(string, time.Duration)                        {}
func (NoOp) RecordExpiry(string)                                      {}
func (NoOp) RecordClockRemaining(string, int64)                       {}
func (NoOp) RecordPeriod(int)                                         {}
func (NoOp) RecordFoul(string, int)                                   {}
func (NoOp) RecordAlert(string)                                       {}
func (NoOp) RecordSnapshot(bool, time.Duration)                       {}
func (NoOp) RecordPublish(string, bool, time.Duration)                {}
func (NoOp) RecordHTTPRequest(string, string, int, time.Duration)     {}
