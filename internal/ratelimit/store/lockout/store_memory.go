// Package lockout stores failed login counters.
package lockout

import (
	"context"
	"sync"

	"visitreg/internal/ratelimit/models"
	"visitreg/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.Lockout
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.Lockout)}
}

// Get returns a copy of the record for key or sentinel.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, key string) (*models.Lockout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(r), nil
}

func (s *InMemoryStore) Save(_ context.Context, record *models.Lockout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Key] = clone(record)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func clone(r *models.Lockout) *models.Lockout {
	c := *r
	if r.LockedUntil != nil {
		until := *r.LockedUntil
		c.LockedUntil = &until
	}
	return &c
}
