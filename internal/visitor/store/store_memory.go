// Package store persists visitors, their emergency contacts and the role
// catalogue.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	"visitreg/pkg/platform/sentinel"
)

// InMemoryVisitorStore keeps visitors keyed by ID with an identity index.
type InMemoryVisitorStore struct {
	mu         sync.RWMutex
	visitors   map[id.VisitorID]models.Visitor
	byIdentity map[id.IdentityID]id.VisitorID
}

func NewVisitorStore() *InMemoryVisitorStore {
	return &InMemoryVisitorStore{
		visitors:   make(map[id.VisitorID]models.Visitor),
		byIdentity: make(map[id.IdentityID]id.VisitorID),
	}
}

func (s *InMemoryVisitorStore) Save(_ context.Context, visitor *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visitors[visitor.ID]; ok {
		return fmt.Errorf("visitor %s: %w", visitor.ID, sentinel.ErrAlreadyUsed)
	}
	if visitor.IdentityID != nil {
		if _, ok := s.byIdentity[*visitor.IdentityID]; ok {
			return fmt.Errorf("identity %s: %w", *visitor.IdentityID, sentinel.ErrAlreadyUsed)
		}
		s.byIdentity[*visitor.IdentityID] = visitor.ID
	}
	s.visitors[visitor.ID] = cloneVisitor(visitor)
	return nil
}

func (s *InMemoryVisitorStore) FindByID(_ context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found, ok := s.visitors[visitorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := cloneVisitor(&found)
	return &out, nil
}

func (s *InMemoryVisitorStore) FindByIdentity(_ context.Context, identityID id.IdentityID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visitorID, ok := s.byIdentity[identityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := s.visitors[visitorID]
	out := cloneVisitor(&found)
	return &out, nil
}

func (s *InMemoryVisitorStore) Update(_ context.Context, visitor *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visitors[visitor.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.visitors[visitor.ID] = cloneVisitor(visitor)
	return nil
}

func (s *InMemoryVisitorStore) Delete(_ context.Context, visitorID id.VisitorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, ok := s.visitors[visitorID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if found.IdentityID != nil {
		delete(s.byIdentity, *found.IdentityID)
	}
	delete(s.visitors, visitorID)
	return nil
}

func cloneVisitor(v *models.Visitor) models.Visitor {
	out := *v
	if v.IdentityID != nil {
		identityID := *v.IdentityID
		out.IdentityID = &identityID
	}
	if v.EmergencyContactID != nil {
		contactID := *v.EmergencyContactID
		out.EmergencyContactID = &contactID
	}
	return out
}

// InMemoryContactStore keeps emergency contacts keyed by ID.
type InMemoryContactStore struct {
	mu       sync.RWMutex
	contacts map[id.ContactID]models.EmergencyContact
}

func NewContactStore() *InMemoryContactStore {
	return &InMemoryContactStore{contacts: make(map[id.ContactID]models.EmergencyContact)}
}

func (s *InMemoryContactStore) Save(_ context.Context, contact *models.EmergencyContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[contact.ID]; ok {
		return fmt.Errorf("contact %s: %w", contact.ID, sentinel.ErrAlreadyUsed)
	}
	s.contacts[contact.ID] = *contact
	return nil
}

func (s *InMemoryContactStore) FindByID(_ context.Context, contactID id.ContactID) (*models.EmergencyContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found, ok := s.contacts[contactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &found, nil
}

func (s *InMemoryContactStore) Delete(_ context.Context, contactID id.ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[contactID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.contacts, contactID)
	return nil
}

// InMemoryRoleStore keeps the role catalogue. Names are matched without
// regard to case.
type InMemoryRoleStore struct {
	mu    sync.RWMutex
	roles map[id.RoleID]models.Role
}

func NewRoleStore() *InMemoryRoleStore {
	return &InMemoryRoleStore{roles: make(map[id.RoleID]models.Role)}
}

func (s *InMemoryRoleStore) Save(_ context.Context, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if strings.EqualFold(r.Name, role.Name) {
			return fmt.Errorf("role %q: %w", role.Name, sentinel.ErrAlreadyUsed)
		}
	}
	s.roles[role.ID] = *role
	return nil
}

func (s *InMemoryRoleStore) FindByID(_ context.Context, roleID id.RoleID) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found, ok := s.roles[roleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &found, nil
}

func (s *InMemoryRoleStore) FindByName(_ context.Context, name string) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if strings.EqualFold(r.Name, name) {
			found := r
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// List returns roles ordered by name.
func (s *InMemoryRoleStore) List(_ context.Context) ([]*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		role := r
		out = append(out, &role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
