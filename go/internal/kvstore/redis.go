package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Redis stores each bucket as one hash under "<prefix>:<bucket>".
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Store = (*Redis)(nil)

// NewRedis wraps an existing client
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "courtside"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(bucket string) string {
	return fmt.Sprintf("%s:%s", r.prefix, bucket)
}

func (r *Redis) Put(ctx context.Context, bucket, key string, value []byte) error {
	if err := r.client.HSet(ctx, r.key(bucket), key, value).Err(); err != nil {
		return fmt.Errorf("redis put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (r *Redis) PutMany(ctx context.Context, bucket string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.HSet(ctx, r.key(bucket), e.Key, e.Value)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put many %s: %w", bucket, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	v, err := r.client.HGet(ctx, r.key(bucket), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s/%s: %w", bucket, key, err)
	}
	return v, nil
}

func (r *Redis) Delete(ctx context.Context, bucket, key string) error {
	if err := r.client.HDel(ctx, r.key(bucket), key).Err(); err != nil {
		return fmt.Errorf("redis delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (r *Redis) List(ctx context.Context, bucket string) ([]Entry, error) {
	all, err := r.client.HGetAll(ctx, r.key(bucket)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list %s: %w", bucket, err)
	}
	out := make([]Entry, 0, len(all))
	for k, v := range all {
		out = append(out, Entry{Key: k, Value: []byte(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *Redis) DeleteAll(ctx context.Context, bucket string) error {
	if err := r.client.Del(ctx, r.key(bucket)).Err(); err != nil {
		return fmt.Errorf("redis delete bucket %s: %w", bucket, err)
	}
	return nil
}

// Close is a no-op, the client belongs to the caller
func (r *Redis) Close() error { return nil }
