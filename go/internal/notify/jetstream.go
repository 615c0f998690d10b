package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/events"
)

// JetStreamConfig describes the event stream. Subjects are
// "<prefix>.<match id>.<event type>", so each match keeps its own history.
type JetStreamConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
	// MatchRetention is how long a match's events are kept after they are written.
	MatchRetention time.Duration
	// MaxPerMatchType caps the events kept per match and event type; the oldest go first.
	MaxPerMatchType int64
	Replicas        int
	DuplicateWindow time.Duration
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "COURTSIDE_EVENTS",
		SubjectPrefix:   "courtside.events",
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		MatchRetention:  7 * 24 * time.Hour,
		MaxPerMatchType: 500,
		Replicas:        1,
		DuplicateWindow: 2 * time.Minute,
	}
}

// Subject returns the subject an event of a match is published on
func (c JetStreamConfig) Subject(matchID uuid.UUID, t events.Type) string {
	return fmt.Sprintf("%s.%s.%s", c.SubjectPrefix, matchID, t)
}

// MatchFilter returns the subject filter matching every event of one match
func (c JetStreamConfig) MatchFilter(matchID uuid.UUID) string {
	return fmt.Sprintf("%s.%s.>", c.SubjectPrefix, matchID)
}

// StreamConfig is the stream the publisher creates or updates on connect.
// Limits apply per subject, so a busy match never pushes out another match's history.
func (c JetStreamConfig) StreamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:              c.StreamName,
		Description:       "Scorekeeping events per match: fouls, limit alerts, violations, periods, buzzer",
		Subjects:          []string{c.SubjectPrefix + ".*.>"},
		Retention:         jetstream.LimitsPolicy,
		Discard:           jetstream.DiscardOld,
		MaxAge:            c.MatchRetention,
		MaxMsgsPerSubject: c.MaxPerMatchType,
		Storage:           jetstream.FileStorage,
		Replicas:          max(1, c.Replicas),
		Duplicates:        c.DuplicateWindow,
	}
}

// JetStream publishes events to a NATS JetStream stream, deduplicated by event id.
type JetStream struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

func NewJetStream(ctx context.Context, cfg JetStreamConfig) (*JetStream, error) {
	opts := []nats.Option{
		nats.Name("courtside"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, cfg.StreamConfig())
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create or update stream %s: %w", cfg.StreamName, err)
	}
	info := stream.CachedInfo()
	log.Info().
		Str("stream", info.Config.Name).
		Uint64("messages", info.State.Msgs).
		Dur("match_retention", info.Config.MaxAge).
		Int64("max_per_match_type", info.Config.MaxMsgsPerSubject).
		Msg("JetStream stream ready")

	return &JetStream{nc: nc, js: js, config: cfg}, nil
}

// Publish sends the event envelope; the event id doubles as the JetStream message id.
func (p *JetStream) Publish(ctx context.Context, event events.Event) error {
	subject := p.config.Subject(event.MatchID, event.Type)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ack, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(event.Type)},
			"Match-ID":   []string{event.MatchID.String()},
		},
	},
		jetstream.WithMsgID(event.ID.String()),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish %s to JetStream: %w", event.Type, err)
	}
	if ack.Duplicate {
		log.Debug().Str("event_id", event.ID.String()).Msg("JetStream dropped duplicate event")
	}
	return nil
}

func (p *JetStream) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}
