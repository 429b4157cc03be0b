// Package store persists visits.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"visitreg/internal/visit/models"
	id "visitreg/pkg/domain"
	"visitreg/pkg/platform/sentinel"
)

// InMemoryVisitStore keeps visits in insertion order.
type InMemoryVisitStore struct {
	mu     sync.RWMutex
	visits []models.Visit
	ids    map[id.VisitID]struct{}
}

func New() *InMemoryVisitStore {
	return &InMemoryVisitStore{ids: make(map[id.VisitID]struct{})}
}

func (s *InMemoryVisitStore) Save(_ context.Context, visit *models.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[visit.ID]; ok {
		return fmt.Errorf("visit %s: %w", visit.ID, sentinel.ErrAlreadyUsed)
	}
	s.ids[visit.ID] = struct{}{}
	s.visits = append(s.visits, cloneVisit(visit))
	return nil
}

// List returns visits matching f ordered by arrival.
func (s *InMemoryVisitStore) List(_ context.Context, f models.Filter) ([]*models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Visit
	for i := range s.visits {
		v := &s.visits[i]
		if f.Site != "" && v.Site != f.Site {
			continue
		}
		if f.OnSiteAt != nil && !v.OnSiteAt(*f.OnSiteAt) {
			continue
		}
		c := cloneVisit(v)
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Arrival.Before(out[j].Arrival) })
	return out, nil
}

func (s *InMemoryVisitStore) ListByVisitor(_ context.Context, visitorID id.VisitorID) ([]*models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Visit
	for i := range s.visits {
		if s.visits[i].VisitorID == visitorID {
			c := cloneVisit(&s.visits[i])
			out = append(out, &c)
		}
	}
	return out, nil
}

// DeleteByVisitor removes every visit of visitorID and reports how many.
func (s *InMemoryVisitStore) DeleteByVisitor(_ context.Context, visitorID id.VisitorID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.visits[:0]
	removed := 0
	for _, v := range s.visits {
		if v.VisitorID == visitorID {
			delete(s.ids, v.ID)
			removed++
			continue
		}
		kept = append(kept, v)
	}
	s.visits = kept
	return removed, nil
}

func cloneVisit(v *models.Visit) models.Visit {
	out := *v
	if v.TeamID != nil {
		teamID := *v.TeamID
		out.TeamID = &teamID
	}
	return out
}
