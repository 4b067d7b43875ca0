package session

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Store.Get for users without a record.
	ErrNotFound = errors.New("session record not found")
	// ErrMalformedRecord means the stored document could not be decoded.
	ErrMalformedRecord = errors.New("malformed session record")
	// ErrUnavailable means the store gave up after its retries.
	ErrUnavailable = errors.New("session store unavailable")
)

// Store is the durable per-user session storage. Implementations own their
// retry policy; the engine calls each method once.
type Store interface {
	Exists(ctx context.Context, userID string) (bool, error)
	Get(ctx context.Context, userID string) (Record, error)
	Set(ctx context.Context, userID string, record Record) error
}
