package kvstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/dbconfig"
	"github.com/mcdev12/courtside/go/internal/sqlutil"
)

//go:embed schema_postgres.sql
var postgresSchema string

var postgresDialect = dialect{
	name: "postgres",
	upsert: `INSERT INTO courtside_kv (bucket, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (bucket, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	get:       `SELECT value FROM courtside_kv WHERE bucket = $1 AND key = $2`,
	delete:    `DELETE FROM courtside_kv WHERE bucket = $1 AND key = $2`,
	list:      `SELECT key, value FROM courtside_kv WHERE bucket = $1 ORDER BY key`,
	deleteAll: `DELETE FROM courtside_kv WHERE bucket = $1`,
	bind:      func(v []byte) any { return sqlutil.ToNullRawMessage(v) },
	scan: func() (any, func() []byte) {
		dest := sqlutil.NewNullRawMessage()
		return dest, func() []byte { return sqlutil.FromNullRawMessage(*dest) }
	},
}

// Postgres is a Store backed by a JSONB table
type Postgres struct {
	sqlStore
}

var _ Store = (*Postgres)(nil)

// OpenPostgres connects with the driver named in cfg ("pgx" or "postgres") and ensures the schema exists.
func OpenPostgres(ctx context.Context, cfg dbconfig.Config) (*Postgres, error) {
	db, err := sql.Open(cfg.DriverName(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info().
		Str("driver", cfg.DriverName()).
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Msg("connected to postgres")

	return &Postgres{sqlStore{db: db, d: postgresDialect}}, nil
}
