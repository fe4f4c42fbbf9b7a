package tokenstore

import (
	"context"
	"sync"
	"time"

	"github.com/oauthkit/oauthkit/errors"
)

// memoryStore is an in-memory Store for tests and single-process
// deployments. Records vanish on restart.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]Record)}
}

func (s *memoryStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Token] = rec
	return nil
}

func (s *memoryStore) Get(ctx context.Context, token string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[token]
	if !ok {
		return Record{}, errors.Mark(ErrNotFound, 0)
	}
	return rec, nil
}

func (s *memoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, token)
	return nil
}

func (s *memoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for token, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, token)
			n++
		}
	}
	return n, nil
}
