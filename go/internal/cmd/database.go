package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/config"
	"github.com/mcdev12/courtside/go/internal/dbconfig"
	"github.com/mcdev12/courtside/go/internal/kvstore"
)

// setupRedis connects the client shared by the redis store and the redis event stream.
// It returns nil when neither is configured.
func setupRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !strings.EqualFold(cfg.Storage.Backend, "redis") && !cfg.Events.RedisStream {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("connected to redis")
	return client, nil
}

func setupStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (kvstore.Store, error) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case "memory":
		log.Warn().Msg("using in-memory storage, the match is lost on exit")
		return kvstore.NewMemory(), nil
	case "sqlite":
		store, err := kvstore.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Storage.SQLitePath).Msg("opened sqlite store")
		return store, nil
	case "postgres":
		dbCfg := dbconfig.NewConfigFromEnv()
		store, err := kvstore.OpenPostgres(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("host", dbCfg.Host).
			Int("port", dbCfg.Port).
			Str("database", dbCfg.Database).
			Str("driver", dbCfg.DriverName()).
			Msg("connected to database")
		return store, nil
	case "redis":
		return kvstore.NewRedis(rdb, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("%w: storage backend %q", config.ErrInvalidConfig, cfg.Storage.Backend)
	}
}
