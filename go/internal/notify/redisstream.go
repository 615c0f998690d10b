package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mcdev12/courtside/go/internal/events"
)

// RedisStream appends events to a capped Redis stream per match
type RedisStream struct {
	client *redis.Client
	prefix string
	maxLen int64
}

// NewRedisStream creates a stream publisher; maxLen <= 0 keeps 10000 entries
func NewRedisStream(client *redis.Client, prefix string, maxLen int64) *RedisStream {
	if prefix == "" {
		prefix = "courtside.events"
	}
	if maxLen <= 0 {
		maxLen = 10_000
	}
	return &RedisStream{client: client, prefix: prefix, maxLen: maxLen}
}

// StreamKey returns the stream an event of matchID is written to
func (r *RedisStream) StreamKey(matchID string) string {
	return fmt.Sprintf("%s.%s", r.prefix, matchID)
}

func (r *RedisStream) Publish(ctx context.Context, event events.Event) error {
	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.StreamKey(event.MatchID.String()),
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"event_id":   event.ID.String(),
			"event_type": string(event.Type),
			"timestamp":  event.Timestamp.UnixMilli(),
			"data":       string(event.Payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", event.Type, err)
	}
	return nil
}
