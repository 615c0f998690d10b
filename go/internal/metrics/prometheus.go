package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option applies a configuration option to Prometheus.
type Option func(*Prometheus)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(p *Prometheus) {
		if namespace != "" {
			p.namespace = namespace
		}
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(p *Prometheus) {
		if reg != nil {
			p.registry = reg
		}
	}
}

// WithHistogramBuckets sets custom buckets for latency histograms (seconds).
func WithHistogramBuckets(buckets []float64) Option {
	return func(p *Prometheus) {
		if len(buckets) > 0 {
			p.buckets = buckets
		}
	}
}

// Prometheus implements Collector with client_golang
type Prometheus struct {
	namespace string
	registry  *prometheus.Registry
	buckets   []float64

	ticks          *prometheus.CounterVec
	consumedMs     *prometheus.CounterVec
	rearms         *prometheus.CounterVec
	tickInterval   *prometheus.GaugeVec
	expiries       *prometheus.CounterVec
	remainingMs    *prometheus.GaugeVec
	period         prometheus.Gauge
	fouls          *prometheus.CounterVec
	alerts         *prometheus.CounterVec
	snapshots      *prometheus.CounterVec
	snapshotTime   prometheus.Histogram
	publishes      *prometheus.CounterVec
	publishTime    *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	httpRequestDur *prometheus.HistogramVec
}

var _ Collector = (*Prometheus)(nil)

// NewPrometheus creates the collector. Without WithRegistry it uses its own registry
// so default Go runtime metrics are not exported.
func NewPrometheus(opts ...Option) *Prometheus {
	p := &Prometheus{
		namespace: "courtside",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = prometheus.NewRegistry()
	}
	p.initialize()
	return p
}

func (p *Prometheus) initialize() {
	auto := promauto.With(p.registry)

	p.ticks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace, Subsystem: "clock",
		Name: "ticks_total",
		Help: "Clock ticks that took time off a clock",
	}, []string{"clock"})
	p.consumedMs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace, Subsystem: "clock",
		Name: "consumed_milliseconds_total",
		Help: "Milliseconds counted down per clock",
	}, []string{"clock"})
	p.rearms = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace, Subsystem: "clock",
		Name: "rearms_total",
		Help: "Tick schedules armed per clock",
	}, []string{"clock"})
	p.tickInterval = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: p.namespace, Subsystem: "clock",
		Name: "tick_interval_seconds",
		Help: "Interval of the live tick schedule",
	}, []string{"clock"})
	p.expiries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace, Subsystem: "clock",
		Name: "expiries_total",
		Help: "Times a clock ran out",
	}, []string{"clock"})
	p.remainingMs = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: p.namespace, Subsystem: "clock",
		Name: "remaining_milliseconds",
		Help: "Remaining time per clock",
	}, []string{"clock"})
	p.period = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: p.namespace, Subsystem: "match",
		Name: "period",
		Help: "Current period, 5 and above are overtimes",
	})
	p.fouls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace, Subsystem: "fouls",
		Name: "recorded_total",
		Help: "Foul adjustments by category and direction",
	}, []string{"category", "direction"})
	p.alerts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace, Subsystem: "fouls",
		Name: "limit_alerts_total",
		Help: "Limit alerts raised by kind",
	}, []string{"kind"})
	p.snapshots = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace, Subsystem: "snapshot",
		Name: "writes_total",
		Help: "Match snapshot writes by status",
	}, []string{"status"})
	p.snapshotTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: p.namespace, Subsystem: "snapshot",
		Name:    "write_duration_seconds",
		Help:    "Snapshot write latency",
		Buckets: p.buckets,
	})
	p.publishes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace, Subsystem: "notify",
		Name: "published_total",
		Help: "Events published by type and status",
	}, []string{"event_type", "status"})
	p.publishTime = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: p.namespace, Subsystem: "notify",
		Name:    "publish_duration_seconds",
		Help:    "Event publish latency",
		Buckets: p.buckets,
	}, []string{"event_type"})
	p.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace, Subsystem: "http",
		Name: "requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})
	p.httpRequestDur = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: p.namespace, Subsystem: "http",
		Name:    "request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: p.buckets,
	}, []string{"route", "method"})
}

// Registry exposes the registry the collector writes to
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) RecordTick(clock string, consumedMs int64) {
	p.ticks.WithLabelValues(clock).Inc()
	p.consumedMs.WithLabelValues(clock).Add(float64(consumedMs))
}

func (p *Prometheus) RecordRearm(clock string, interval time.Duration) {
	p.rearms.WithLabelValues(clock).Inc()
	p.tickInterval.WithLabelValues(clock).Set(interval.Seconds())
}

func (p *Prometheus) RecordExpiry(clock string) {
	p.expiries.WithLabelValues(clock).Inc()
}

func (p *Prometheus) RecordClockRemaining(clock string, remainingMs int64) {
	p.remainingMs.WithLabelValues(clock).Set(float64(remainingMs))
}

func (p *Prometheus) RecordPeriod(period int) {
	p.period.Set(float64(period))
}

func (p *Prometheus) RecordFoul(category string, delta int) {
	direction := "add"
	if delta < 0 {
		direction = "remove"
	}
	p.fouls.WithLabelValues(category, direction).Inc()
}

func (p *Prometheus) RecordAlert(kind string) {
	p.alerts.WithLabelValues(kind).Inc()
}

func (p *Prometheus) RecordSnapshot(success bool, duration time.Duration) {
	p.snapshots.WithLabelValues(status(success)).Inc()
	p.snapshotTime.Observe(duration.Seconds())
}

func (p *Prometheus) RecordPublish(eventType string, success bool, duration time.Duration) {
	p.publishes.WithLabelValues(eventType, status(success)).Inc()
	p.publishTime.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (p *Prometheus) RecordHTTPRequest(route, method string, code int, duration time.Duration) {
	p.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	p.httpRequestDur.WithLabelValues(route, method).Observe(duration.Seconds())
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
