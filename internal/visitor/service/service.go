package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	authmodels "visitreg/internal/auth/models"
	authservice "visitreg/internal/auth/service"
	"visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/email"
	"visitreg/pkg/platform/audit"
	"visitreg/pkg/platform/sentinel"
	txcontext "visitreg/pkg/platform/tx"
	"visitreg/pkg/requestcontext"
)

type VisitorStore interface {
	Save(ctx context.Context, visitor *models.Visitor) error
	FindByID(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error)
	FindByIdentity(ctx context.Context, identityID id.IdentityID) (*models.Visitor, error)
	Update(ctx context.Context, visitor *models.Visitor) error
	Delete(ctx context.Context, visitorID id.VisitorID) error
}

type ContactStore interface {
	Save(ctx context.Context, contact *models.EmergencyContact) error
	FindByID(ctx context.Context, contactID id.ContactID) (*models.EmergencyContact, error)
	Delete(ctx context.Context, contactID id.ContactID) error
}

type RoleStore interface {
	Save(ctx context.Context, role *models.Role) error
	FindByID(ctx context.Context, roleID id.RoleID) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
}

// Accounts is the slice of the auth service that visitor flows need.
type Accounts interface {
	ResolveIdentity(ctx context.Context, identifier string) (*authmodels.Identity, error)
	CreateIdentity(ctx context.Context, req authservice.CreateIdentityRequest) (*authmodels.Identity, error)
	UpdateProfile(ctx context.Context, identityID id.IdentityID, emailAddr, firstName, lastName string) error
	DeleteIdentity(ctx context.Context, identityID id.IdentityID) error
}

// VisitDeleter removes a visitor's visits when the visitor is deleted.
type VisitDeleter interface {
	DeleteByVisitor(ctx context.Context, visitorID id.VisitorID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service resolves visitor candidates and manages the visitor profile that
// belongs to a login.
type Service struct {
	visitors       VisitorStore
	contacts       ContactStore
	roles          RoleStore
	accounts       Accounts
	visits         VisitDeleter
	tx             txcontext.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

func New(visitors VisitorStore, contacts ContactStore, roles RoleStore, accounts Accounts,
	visits VisitDeleter, tx txcontext.Runner, opts ...Option) *Service {
	s := &Service{
		visitors: visitors,
		contacts: contacts,
		roles:    roles,
		accounts: accounts,
		visits:   visits,
		tx:       tx,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepare resolves a candidate without writing anything. Attribute
// candidates come back with New set and must be passed to Commit.
func (s *Service) Prepare(ctx context.Context, c models.Candidate) (*models.Resolution, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	if c.ByIdentifier() {
		return s.prepareExisting(ctx, c.Username)
	}
	return s.prepareNew(ctx, c.Attributes)
}

func (s *Service) prepareExisting(ctx context.Context, username string) (*models.Resolution, error) {
	identity, err := s.accounts.ResolveIdentity(ctx, username)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, unknownIdentifier()
		}
		return nil, err
	}
	visitor, err := s.visitors.FindByIdentity(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, unknownIdentifier()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visitor")
	}
	profile, err := s.profile(ctx, visitor)
	if err != nil {
		return nil, err
	}
	return &models.Resolution{Profile: *profile}, nil
}

func (s *Service) prepareNew(ctx context.Context, a models.VisitorAttributes) (*models.Resolution, error) {
	role, err := s.lookupRole(ctx, a.Role)
	if err != nil {
		return nil, err
	}
	contact := &models.EmergencyContact{
		ID:           id.ContactID(uuid.New()),
		Name:         strings.TrimSpace(a.ContactName),
		Phone:        strings.TrimSpace(a.ContactPhone),
		Relationship: strings.TrimSpace(a.ContactRelationship),
	}
	visitor := &models.Visitor{
		ID:                 id.VisitorID(uuid.New()),
		FirstName:          strings.TrimSpace(a.FirstName),
		LastName:           strings.TrimSpace(a.LastName),
		Email:              email.Normalize(a.Email),
		Phone:              strings.TrimSpace(a.Phone),
		RoleID:             role.ID,
		EmergencyContactID: &contact.ID,
		CreatedAt:          requestcontext.Now(ctx),
	}
	return &models.Resolution{
		Profile: models.Profile{Visitor: visitor, Role: role, Contact: contact},
		New:     true,
	}, nil
}

// Commit persists a prepared new visitor: contact first, then visitor.
// Existing visitors are left untouched.
func (s *Service) Commit(ctx context.Context, r *models.Resolution) error {
	if !r.New {
		return nil
	}
	if r.Contact != nil {
		if err := s.contacts.Save(ctx, r.Contact); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save emergency contact")
		}
	}
	if err := s.visitors.Save(ctx, r.Visitor); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save visitor")
	}
	r.New = false
	return nil
}

// Resolve prepares and commits a single candidate.
func (s *Service) Resolve(ctx context.Context, c models.Candidate) (*models.Visitor, error) {
	r, err := s.Prepare(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.Commit(ctx, r)
	}); err != nil {
		return nil, err
	}
	return r.Visitor, nil
}

// ProfileByIdentity returns the visitor profile linked to a login.
// Accounts without one (site managers) yield CodeNotFound.
func (s *Service) ProfileByIdentity(ctx context.Context, identityID id.IdentityID) (*models.Profile, error) {
	visitor, err := s.visitors.FindByIdentity(ctx, identityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no visitor profile for this account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visitor")
	}
	return s.profile(ctx, visitor)
}

// Describe loads a visitor by ID with role and contact.
func (s *Service) Describe(ctx context.Context, visitorID id.VisitorID) (*models.Profile, error) {
	visitor, err := s.visitors.FindByID(ctx, visitorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "visitor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visitor")
	}
	return s.profile(ctx, visitor)
}

func (s *Service) profile(ctx context.Context, visitor *models.Visitor) (*models.Profile, error) {
	role, err := s.roles.FindByID(ctx, visitor.RoleID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visitor role")
	}
	p := &models.Profile{Visitor: visitor, Role: role}
	if visitor.EmergencyContactID != nil {
		contact, err := s.contacts.FindByID(ctx, *visitor.EmergencyContactID)
		switch {
		case err == nil:
			p.Contact = contact
		case !errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load emergency contact")
		}
	}
	return p, nil
}

func (s *Service) lookupRole(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.roles.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.WithFields(dErrors.CodeIncompleteAttributes, "new visitor details are incomplete",
				dErrors.FieldErrors{{Field: models.FieldRole, Message: models.MsgUnknownRole}})
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
	}
	return role, nil
}

func unknownIdentifier() error {
	return dErrors.WithFields(dErrors.CodeUnknownIdentifier, "unknown visitor",
		dErrors.FieldErrors{{Field: models.FieldUsername, Message: models.MsgUnknownVisitor}})
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
