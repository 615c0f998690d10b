package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/audio"
	"github.com/mcdev12/courtside/go/internal/config"
	"github.com/mcdev12/courtside/go/internal/gateway"
	"github.com/mcdev12/courtside/go/internal/kvstore"
	"github.com/mcdev12/courtside/go/internal/match"
	"github.com/mcdev12/courtside/go/internal/metrics"
	"github.com/mcdev12/courtside/go/internal/notify"
)

// Services is everything the serve command runs
type Services struct {
	Engine         *match.Engine
	Hub            *gateway.Hub
	Dispatcher     *notify.Dispatcher
	Metrics        metrics.Collector
	MetricsHandler http.Handler
	Buzzer         []byte

	store     kvstore.Store
	redis     *redis.Client
	jetStream *notify.JetStream
}

func setupServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	// Wire up dependency injection chain
	// Storage → Notifiers → Dispatcher → Engine
	s := &Services{Metrics: metrics.NoOp{}}

	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheus()
		s.Metrics = prom
		s.MetricsHandler = prom.Handler()
	}

	rdb, err := setupRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.redis = rdb

	store, err := setupStore(ctx, cfg, rdb)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.store = store

	s.Hub = gateway.NewHub(gateway.DefaultConfig())

	notifiers := notify.Fanout{notify.Log{}, s.Hub}
	if cfg.Buzzer.Enabled {
		horn := audio.DefaultBuzzer()
		horn.Frequency = cfg.Buzzer.FrequencyHz
		horn.Duration = cfg.Buzzer.Duration()
		horn.Volume = cfg.Buzzer.Volume
		buzzer, err := notify.NewBuzzer(horn, s.Hub)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Buzzer = buzzer.Clip()
		notifiers = append(notifiers, buzzer)
	}
	if cfg.NATS.Enabled {
		jsCfg := notify.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		jsCfg.StreamName = cfg.NATS.Stream
		jsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
		js, err := notify.NewJetStream(ctx, jsCfg)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("create JetStream publisher: %w", err)
		}
		s.jetStream = js
		notifiers = append(notifiers, js)
	}
	if cfg.Events.RedisStream {
		notifiers = append(notifiers, notify.NewRedisStream(rdb, cfg.NATS.SubjectPrefix, cfg.Events.RedisStreamMaxLen))
	}
	s.Dispatcher = notify.NewDispatcher(notify.NewMetricNotifier(notifiers, s.Metrics), cfg.Events.QueueSize)

	policy, err := match.ParseResumePolicy(cfg.Match.ResumePolicy)
	if err != nil {
		s.Close()
		return nil, err
	}
	hub := s.Hub
	engine, err := match.New(store,
		match.WithPublisher(s.Dispatcher),
		match.WithRenderer(func(snap match.Snapshot) { hub.BroadcastState(snap) }),
		match.WithMetrics(s.Metrics),
		match.WithResumePolicy(policy),
		match.WithPresets(nil, cfg.Match.Preset),
	)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Engine = engine
	return s, nil
}

// Start launches the background workers and restores the saved match
func (s *Services) Start(ctx context.Context) error {
	go s.Hub.Start(ctx)
	s.Dispatcher.Start(ctx)

	report, err := s.Engine.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load match: %w", err)
	}
	log.Info().
		Bool("fresh", report.Fresh).
		Str("policy", string(report.Policy)).
		Int("resumed", len(report.Resumed)).
		Int64("gap_ms", report.GapMs).
		Int64("discarded_ms", report.DiscardedMs).
		Msg("match loaded")
	return nil
}

// Shutdown stops the clocks, saves the match and drains pending events
func (s *Services) Shutdown(ctx context.Context) error {
	var errs []error
	if s.Engine != nil {
		if err := s.Engine.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close engine: %w", err))
		}
	}
	if s.Dispatcher != nil {
		s.Dispatcher.Stop()
	}
	if err := s.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close releases connections without saving
func (s *Services) Close() error {
	var errs []error
	if s.jetStream != nil {
		errs = append(errs, s.jetStream.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	return errors.Join(errs...)
}
