package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"visitreg/internal/auth/models"
	"visitreg/internal/auth/password"
	"visitreg/internal/auth/token"
	"visitreg/internal/platform/metrics"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/email"
	"visitreg/pkg/platform/audit"
	"visitreg/pkg/platform/sentinel"
	"visitreg/pkg/requestcontext"
)

type IdentityStore interface {
	Save(ctx context.Context, identity *models.Identity) error
	FindByID(ctx context.Context, identityID id.IdentityID) (*models.Identity, error)
	FindByUsername(ctx context.Context, username string) (*models.Identity, error)
	ListByGroup(ctx context.Context, group string) ([]*models.Identity, error)
	Update(ctx context.Context, identity *models.Identity) error
	Delete(ctx context.Context, identityID id.IdentityID) error
}

type TokenIssuer interface {
	GenerateAccessToken(sub token.Subject, expiresIn time.Duration) (string, time.Time, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LoginGuard throttles repeated failed logins per username and client IP.
type LoginGuard interface {
	Check(ctx context.Context, username, ip string) error
	RecordFailure(ctx context.Context, username, ip string) error
	Clear(ctx context.Context, username, ip string) error
}

// Service owns login accounts: creation, password checks, lookups by
// identifier and manager group membership.
type Service struct {
	identities     IdentityStore
	tokens         TokenIssuer
	tokenTTL       time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	guard          LoginGuard
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

// WithLoginGuard enables lockout after repeated failed logins.
func WithLoginGuard(g LoginGuard) Option {
	return func(s *Service) {
		s.guard = g
	}
}

func New(identities IdentityStore, tokens TokenIssuer, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		identities: identities,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateIdentityRequest struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// CreateIdentity registers a visitor login. A taken username yields CodeConflict.
func (s *Service) CreateIdentity(ctx context.Context, req CreateIdentityRequest) (*models.Identity, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	identity, err := models.NewIdentity(id.IdentityID(uuid.New()), req.Username, email.Normalize(req.Email),
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), hash, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.identities.Save(ctx, identity); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.WithFields(dErrors.CodeConflict, "username already taken",
				dErrors.FieldErrors{{Field: "username", Message: "a user with that username already exists"}})
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save identity")
	}

	if s.metrics != nil {
		s.metrics.IncrementIdentitiesCreated()
	}
	s.emit(ctx, audit.Event{IdentityID: identity.ID, Subject: identity.Username, Action: string(audit.EventIdentityCreated)})
	return identity, nil
}

// Authenticate checks credentials. Unknown usernames and wrong passwords
// produce the same CodeUnauthorized error. With a LoginGuard, a locked
// username and IP pair gets CodeRateLimited before any lookup.
func (s *Service) Authenticate(ctx context.Context, username, plain string) (*models.Identity, error) {
	username = strings.TrimSpace(username)
	if s.guard != nil {
		if err := s.guard.Check(ctx, username, requestcontext.ClientIP(ctx)); err != nil {
			return nil, err
		}
	}
	identity, err := s.identities.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailed(ctx, username, "unknown_username")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "username or password is wrong")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup identity")
	}
	if err := password.Verify(plain, identity.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.authFailed(ctx, username, "wrong_password")
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	if s.guard != nil {
		if err := s.guard.Clear(ctx, username, requestcontext.ClientIP(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to clear login failures", "username", username, "error", err)
		}
	}
	return identity, nil
}

type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Staff       bool      `json:"staff"`
}

func (s *Service) Login(ctx context.Context, username, plain string) (*LoginResult, error) {
	identity, err := s.Authenticate(ctx, username, plain)
	if err != nil {
		return nil, err
	}
	accessToken, expiresAt, err := s.tokens.GenerateAccessToken(token.Subject{
		IdentityID: uuid.UUID(identity.ID),
		Username:   identity.Username,
		Staff:      identity.Staff,
		Groups:     identity.Groups,
	}, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	s.logger.InfoContext(ctx, "identity logged in",
		"identity_id", identity.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &LoginResult{AccessToken: accessToken, TokenType: "Bearer", ExpiresAt: expiresAt, Staff: identity.Staff}, nil
}

// ResolveIdentity looks an identity up by username.
func (s *Service) ResolveIdentity(ctx context.Context, identifier string) (*models.Identity, error) {
	identity, err := s.identities.FindByUsername(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve identity")
	}
	return identity, nil
}

func (s *Service) FindByID(ctx context.Context, identityID id.IdentityID) (*models.Identity, error) {
	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup identity")
	}
	return identity, nil
}

// UpdateProfile overwrites the non-empty name and email fields.
func (s *Service) UpdateProfile(ctx context.Context, identityID id.IdentityID, emailAddr, firstName, lastName string) error {
	identity, err := s.FindByID(ctx, identityID)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(emailAddr); v != "" {
		identity.Email = email.Normalize(v)
	}
	if v := strings.TrimSpace(firstName); v != "" {
		identity.FirstName = v
	}
	if v := strings.TrimSpace(lastName); v != "" {
		identity.LastName = v
	}
	if err := s.identities.Update(ctx, identity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity")
	}
	return nil
}

func (s *Service) DeleteIdentity(ctx context.Context, identityID id.IdentityID) error {
	if identityID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "identity ID required")
	}
	if err := s.identities.Delete(ctx, identityID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete identity")
	}
	s.emit(ctx, audit.Event{IdentityID: identityID, Action: string(audit.EventIdentityDeleted)})
	return nil
}

// ManagerEmails returns the addresses of everyone in a site manager group.
// Members without an email are skipped.
func (s *Service) ManagerEmails(ctx context.Context, group string) ([]string, error) {
	managers, err := s.identities.ListByGroup(ctx, group)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list site managers")
	}
	out := make([]string, 0, len(managers))
	for _, m := range managers {
		if m.Email != "" {
			out = append(out, m.Email)
		}
	}
	return out, nil
}

// EnsureManager creates a staff account in group unless the username exists.
func (s *Service) EnsureManager(ctx context.Context, username, plain, emailAddr, group string) error {
	if _, err := s.identities.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup manager")
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return err
	}
	identity, err := models.NewIdentity(id.IdentityID(uuid.New()), username, email.Normalize(emailAddr),
		group, "Manager", hash, requestcontext.Now(ctx))
	if err != nil {
		return err
	}
	identity.GrantStaff(group)
	if err := s.identities.Save(ctx, identity); err != nil && !errors.Is(err, sentinel.ErrAlreadyUsed) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save manager")
	}
	s.logger.InfoContext(ctx, "site manager account ensured", "username", username, "group", group)
	return nil
}

func (s *Service) authFailed(ctx context.Context, username, reason string) {
	s.logger.WarnContext(ctx, "authentication failed",
		"username", username,
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Subject: username, Action: string(audit.EventAuthFailed), Reason: reason})
	if s.guard != nil {
		if err := s.guard.RecordFailure(ctx, username, requestcontext.ClientIP(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to record login failure", "username", username, "error", err)
		}
	}
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
