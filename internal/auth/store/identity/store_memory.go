package identity

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"visitreg/internal/auth/models"
	id "visitreg/pkg/domain"
	"visitreg/pkg/platform/sentinel"
)

// InMemoryIdentityStore keeps identities keyed by ID with a username index.
// Returned values are copies; callers persist changes through Update.
type InMemoryIdentityStore struct {
	mu         sync.RWMutex
	identities map[id.IdentityID]models.Identity
	byUsername map[string]id.IdentityID
}

func New() *InMemoryIdentityStore {
	return &InMemoryIdentityStore{
		identities: make(map[id.IdentityID]models.Identity),
		byUsername: make(map[string]id.IdentityID),
	}
}

func (s *InMemoryIdentityStore) Save(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byUsername[identity.Username]; taken {
		return fmt.Errorf("username %q: %w", identity.Username, sentinel.ErrAlreadyUsed)
	}
	s.identities[identity.ID] = clone(identity)
	s.byUsername[identity.Username] = identity.ID
	return nil
}

func (s *InMemoryIdentityStore) FindByID(_ context.Context, identityID id.IdentityID) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found, ok := s.identities[identityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := clone(&found)
	return &out, nil
}

func (s *InMemoryIdentityStore) FindByUsername(_ context.Context, username string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identityID, ok := s.byUsername[username]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := s.identities[identityID]
	out := clone(&found)
	return &out, nil
}

// ListByGroup returns identities in group ordered by username.
func (s *InMemoryIdentityStore) ListByGroup(_ context.Context, group string) ([]*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Identity
	for _, identity := range s.identities {
		if slices.Contains(identity.Groups, group) {
			c := clone(&identity)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *InMemoryIdentityStore) Update(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.identities[identity.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Username != identity.Username {
		if _, taken := s.byUsername[identity.Username]; taken {
			return fmt.Errorf("username %q: %w", identity.Username, sentinel.ErrAlreadyUsed)
		}
		delete(s.byUsername, current.Username)
		s.byUsername[identity.Username] = identity.ID
	}
	s.identities[identity.ID] = clone(identity)
	return nil
}

func (s *InMemoryIdentityStore) Delete(_ context.Context, identityID id.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.identities[identityID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byUsername, current.Username)
	delete(s.identities, identityID)
	return nil
}

func clone(identity *models.Identity) models.Identity {
	c := *identity
	c.Groups = slices.Clone(identity.Groups)
	return c
}
