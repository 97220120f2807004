// Package sqlite provides a single-node Cache driver backed by a local
// SQLite file. Expiry is an expires_at column checked on every read and
// swept by the housekeeping purge, since SQLite has no native TTL.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// NewStore opens (and creates if needed) the SQLite database at dsn.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// A single writer avoids SQLITE_BUSY churn under concurrent increments.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT v FROM cache_entries
		WHERE k = ?1 AND (expires_at IS NULL OR expires_at > ?2)
	`, key, nowMillis()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, unavailable(err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (k, v, expires_at) VALUES (?1, ?2, ?3)
		ON CONFLICT(k) DO UPDATE SET
			v = excluded.v,
			expires_at = excluded.expires_at
	`, key, value, expiresMillis(ttl))
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Store) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	// One UPSERT keeps the whole read-modify-write atomic. A lapsed window
	// resets the counter to 1 and starts a fresh TTL clock; a live window
	// bumps the counter and leaves its expiry untouched.
	now := nowMillis()

	var count int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO cache_entries (k, v, expires_at) VALUES (?1, '1', ?3)
		ON CONFLICT(k) DO UPDATE SET
			v = CAST(CASE
				WHEN cache_entries.expires_at IS NOT NULL AND cache_entries.expires_at <= ?2
				THEN 1
				ELSE CAST(cache_entries.v AS INTEGER) + 1
			END AS TEXT),
			expires_at = CASE
				WHEN cache_entries.expires_at IS NOT NULL AND cache_entries.expires_at <= ?2
				THEN ?3
				ELSE cache_entries.expires_at
			END
		RETURNING CAST(v AS INTEGER)
	`, key, now, expiresMillis(ttl)).Scan(&count)
	if err != nil {
		return 0, unavailable(err)
	}
	return count, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE k = ?1`, key); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// PurgeExpired deletes lapsed rows. Reads already filter them out, this just
// stops the table growing without bound.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at <= ?1
	`, nowMillis())
	if err != nil {
		return 0, unavailable(err)
	}
	return res.RowsAffected()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// expiresMillis converts a TTL to an absolute unix-ms deadline, or NULL for
// "no expiry".
func expiresMillis(ttl time.Duration) sql.NullInt64 {
	if ttl <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: time.Now().Add(ttl).UnixMilli(), Valid: true}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
