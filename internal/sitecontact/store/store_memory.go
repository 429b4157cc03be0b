// Package store persists the site emergency contact directory.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"visitreg/internal/sitecontact/models"
	visitmodels "visitreg/internal/visit/models"
	id "visitreg/pkg/domain"
	"visitreg/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	contacts map[id.SiteContactID]models.SiteContact
}

func New() *InMemoryStore {
	return &InMemoryStore{contacts: make(map[id.SiteContactID]models.SiteContact)}
}

func (s *InMemoryStore) Save(_ context.Context, c *models.SiteContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[c.ID]; ok {
		return fmt.Errorf("site contact %s: %w", c.ID, sentinel.ErrAlreadyUsed)
	}
	s.contacts[c.ID] = *c
	return nil
}

// List returns contacts ordered by site then name. An empty site lists all.
func (s *InMemoryStore) List(_ context.Context, site visitmodels.SiteKind) ([]*models.SiteContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.SiteContact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if site != "" && c.Site != site {
			continue
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Site != out[j].Site {
			return out[i].Site < out[j].Site
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, contactID id.SiteContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[contactID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.contacts, contactID)
	return nil
}
