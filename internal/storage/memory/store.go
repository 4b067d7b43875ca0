// Package memory is an in-process session store for local runs; records are
// lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/PoluyanbIch/GoQuizBot/internal/session"
)

// Store keeps encoded documents so callers never share memory with it.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewStore() *Store {
	return &Store{records: make(map[string][]byte)}
}

func (s *Store) Exists(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[userID]
	return ok, nil
}

func (s *Store) Get(_ context.Context, userID string) (session.Record, error) {
	s.mu.RLock()
	payload, ok := s.records[userID]
	s.mu.RUnlock()
	if !ok {
		return session.Record{}, session.ErrNotFound
	}
	return session.DecodeRecord(payload)
}

func (s *Store) Set(_ context.Context, userID string, record session.Record) error {
	payload, err := session.EncodeRecord(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[userID] = payload
	s.mu.Unlock()
	return nil
}
