package kvstore

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// Schema version tracking:
// 1 - kv table keyed by (bucket, key)
const sqliteSchemaVersion = 1

var sqliteDialect = dialect{
	name: "sqlite",
	upsert: `INSERT INTO kv (bucket, key, value, updated_at)
VALUES (?, ?, ?, strftime('%s', 'now'))
ON CONFLICT (bucket, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	get:       `SELECT value FROM kv WHERE bucket = ? AND key = ?`,
	delete:    `DELETE FROM kv WHERE bucket = ? AND key = ?`,
	list:      `SELECT key, value FROM kv WHERE bucket = ? ORDER BY key`,
	deleteAll: `DELETE FROM kv WHERE bucket = ?`,
	bind:      func(v []byte) any { return v },
	scan: func() (any, func() []byte) {
		var b []byte
		return &b, func() []byte { return b }
	},
}

// SQLite is a Store backed by a single SQLite file
type SQLite struct {
	sqlStore
}

var _ Store = (*SQLite)(nil)

// OpenSQLite creates or opens the database at path (":memory:" is allowed).
//
// The database is configured with:
//   - WAL mode so readers never block the scorer's writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applySQLitePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{sqlStore{db: db, d: sqliteDialect}}, nil
}

func applySQLitePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySQLiteSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version >= sqliteSchemaVersion {
		return nil
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqliteSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
