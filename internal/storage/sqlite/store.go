// Package sqlite provides a SQLite-backed session store for single-node
// deployments that do not run Redis.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/PoluyanbIch/GoQuizBot/internal/session"
)

const schema = `CREATE TABLE IF NOT EXISTS quiz_sessions (
	user_id    TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store persists session records in SQLite.
type Store struct {
	sqlDB    *sql.DB
	maxTries uint
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string, retryAttempts uint) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(2000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, maxTries: retryAttempts + 1}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Exists(ctx context.Context, userID string) (bool, error) {
	found, err := retryBusy(ctx, s.maxTries, func() (bool, error) {
		var one int
		err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM quiz_sessions WHERE user_id = ?`, userID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return false, fmt.Errorf("session exists: %w", err)
	}
	return found, nil
}

func (s *Store) Get(ctx context.Context, userID string) (session.Record, error) {
	payload, err := retryBusy(ctx, s.maxTries, func() (string, error) {
		var payload string
		err := s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM quiz_sessions WHERE user_id = ?`, userID).Scan(&payload)
		return payload, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return session.Record{}, session.ErrNotFound
	}
	if err != nil {
		return session.Record{}, fmt.Errorf("get session: %w", err)
	}
	return session.DecodeRecord([]byte(payload))
}

func (s *Store) Set(ctx context.Context, userID string, record session.Record) error {
	payload, err := session.EncodeRecord(record)
	if err != nil {
		return err
	}
	_, err = retryBusy(ctx, s.maxTries, func() (sql.Result, error) {
		return s.sqlDB.ExecContext(ctx,
			`INSERT INTO quiz_sessions (user_id, payload, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
			userID, string(payload), time.Now().UTC().UnixMilli(),
		)
	})
	if err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func retryBusy[T any](ctx context.Context, maxTries uint, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond

	res, err := backoff.Retry(ctx, func() (T, error) {
		v, err := fn()
		if err != nil && !isBusy(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxTries))
	if err != nil && isBusy(err) {
		return res, fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}
	return res, err
}

func isBusy(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return true
		}
	}
	return false
}
