package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mcdev12/courtside/go/internal/sqlutil"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dialect carries the statements and value codec of one SQL engine
type dialect struct {
	name      string
	upsert    string
	get       string
	delete    string
	list      string
	deleteAll string

	// bind converts a value into a driver argument
	bind func(value []byte) any
	// scan returns a scan destination and a function reading the scanned value
	scan func() (any, func() []byte)
}

// queries binds a dialect's statements to a connection or transaction
type queries struct {
	db DBTX
	d  dialect
}

func (q *queries) put(ctx context.Context, bucket, key string, value []byte) error {
	if _, err := q.db.ExecContext(ctx, q.d.upsert, bucket, key, q.d.bind(value)); err != nil {
		return fmt.Errorf("%s put %s/%s: %w", q.d.name, bucket, key, err)
	}
	return nil
}

func (q *queries) get(ctx context.Context, bucket, key string) ([]byte, error) {
	dest, value := q.d.scan()
	err := q.db.QueryRowContext(ctx, q.d.get, bucket, key).Scan(dest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s get %s/%s: %w", q.d.name, bucket, key, err)
	}
	return value(), nil
}

func (q *queries) delete(ctx context.Context, bucket, key string) error {
	if _, err := q.db.ExecContext(ctx, q.d.delete, bucket, key); err != nil {
		return fmt.Errorf("%s delete %s/%s: %w", q.d.name, bucket, key, err)
	}
	return nil
}

func (q *queries) list(ctx context.Context, bucket string) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, q.d.list, bucket)
	if err != nil {
		return nil, fmt.Errorf("%s list %s: %w", q.d.name, bucket, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var key string
		dest, value := q.d.scan()
		if err := rows.Scan(&key, dest); err != nil {
			return nil, fmt.Errorf("%s scan %s: %w", q.d.name, bucket, err)
		}
		out = append(out, Entry{Key: key, Value: value()})
	}
	return out, rows.Err()
}

func (q *queries) deleteAll(ctx context.Context, bucket string) error {
	if _, err := q.db.ExecContext(ctx, q.d.deleteAll, bucket); err != nil {
		return fmt.Errorf("%s delete bucket %s: %w", q.d.name, bucket, err)
	}
	return nil
}

// sqlStore implements Store on top of database/sql for any dialect
type sqlStore struct {
	db *sql.DB
	d  dialect
}

func (s *sqlStore) queries() *queries { return &queries{db: s.db, d: s.d} }

func (s *sqlStore) withTx(ctx context.Context, fn func(q *queries) error) error {
	return sqlutil.Run(ctx, s.db, func(tx *sql.Tx) *queries {
		return &queries{db: tx, d: s.d}
	}, fn)
}

func (s *sqlStore) Put(ctx context.Context, bucket, key string, value []byte) error {
	return s.queries().put(ctx, bucket, key, value)
}

func (s *sqlStore) PutMany(ctx context.Context, bucket string, entries []Entry) error {
	return s.withTx(ctx, func(q *queries) error {
		for _, e := range entries {
			if err := q.put(ctx, bucket, e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sqlStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	return s.queries().get(ctx, bucket, key)
}

func (s *sqlStore) Delete(ctx context.Context, bucket, key string) error {
	return s.queries().delete(ctx, bucket, key)
}

func (s *sqlStore) List(ctx context.Context, bucket string) ([]Entry, error) {
	return s.queries().list(ctx, bucket)
}

func (s *sqlStore) DeleteAll(ctx context.Context, bucket string) error {
	return s.queries().deleteAll(ctx, bucket)
}

// DB exposes the underlying pool for diagnostics
func (s *sqlStore) DB() *sql.DB { return s.db }

func (s *sqlStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
