package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/PoluyanbIch/GoQuizBot/internal/session"
)

// SessionStore stores one JSON document per user, without expiry.
type SessionStore struct {
	client *Client
}

func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Exists(ctx context.Context, userID string) (bool, error) {
	n, err := withRetry(ctx, s.client, "exists", func() (int64, error) {
		return s.client.rdb.Exists(ctx, s.client.key(userID)).Result()
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SessionStore) Get(ctx context.Context, userID string) (session.Record, error) {
	payload, err := withRetry(ctx, s.client, "get", func() ([]byte, error) {
		return s.client.rdb.Get(ctx, s.client.key(userID)).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return session.Record{}, session.ErrNotFound
	}
	if err != nil {
		return session.Record{}, err
	}
	return session.DecodeRecord(payload)
}

func (s *SessionStore) Set(ctx context.Context, userID string, record session.Record) error {
	payload, err := session.EncodeRecord(record)
	if err != nil {
		return err
	}
	_, err = withRetry(ctx, s.client, "set", func() (string, error) {
		return s.client.rdb.Set(ctx, s.client.key(userID), payload, 0).Result()
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", userID, err)
	}
	return nil
}
