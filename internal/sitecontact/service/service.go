package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"visitreg/internal/sitecontact/models"
	visitmodels "visitreg/internal/visit/models"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/platform/audit"
	"visitreg/pkg/platform/sentinel"
)

type Store interface {
	Save(ctx context.Context, c *models.SiteContact) error
	List(ctx context.Context, site visitmodels.SiteKind) ([]*models.SiteContact, error)
	Delete(ctx context.Context, contactID id.SiteContactID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// CreateRequest is the manager-supplied directory entry.
type CreateRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Site     string `json:"site"`
	Position string `json:"position"`
}

// Service maintains the site emergency contact directory.
type Service struct {
	store          Store
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

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the directory, optionally narrowed to one site.
func (s *Service) List(ctx context.Context, site string) ([]*models.SiteContact, error) {
	kind := visitmodels.NormalizeSiteKind(site)
	if kind != "" {
		if _, ok := visitmodels.LookupSite(kind); !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, "site not found")
		}
	}
	contacts, err := s.store.List(ctx, kind)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list site contacts")
	}
	return contacts, nil
}

func (s *Service) Create(ctx context.Context, actor id.IdentityID, req CreateRequest) (*models.SiteContact, error) {
	contact, err := models.NewSiteContact(id.SiteContactID(uuid.New()), req.Name, req.Phone, req.Site, req.Position)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, contact); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save site contact")
	}
	s.emit(ctx, audit.Event{
		IdentityID: actor,
		Subject:    contact.ID.String(),
		Action:     string(audit.EventSiteContactCreated),
		Site:       string(contact.Site),
	})
	return contact, nil
}

func (s *Service) Delete(ctx context.Context, contactID id.SiteContactID) error {
	if err := s.store.Delete(ctx, contactID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "site contact not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete site contact")
	}
	return nil
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
