package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"visitreg/internal/platform/metrics"
	"visitreg/internal/visit/models"
	vmodels "visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/platform/audit"
	txcontext "visitreg/pkg/platform/tx"
)

type Store interface {
	Save(ctx context.Context, visit *models.Visit) error
	List(ctx context.Context, f models.Filter) ([]*models.Visit, error)
	ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Visit, error)
}

// VisitorResolver turns team members into visitors and loads profiles.
type VisitorResolver interface {
	ProfileByIdentity(ctx context.Context, identityID id.IdentityID) (*vmodels.Profile, error)
	Prepare(ctx context.Context, c vmodels.Candidate) (*vmodels.Resolution, error)
	Commit(ctx context.Context, r *vmodels.Resolution) error
	Describe(ctx context.Context, visitorID id.VisitorID) (*vmodels.Profile, error)
}

// Notifier tells site managers about a persisted visit.
type Notifier interface {
	Notify(ctx context.Context, visit *models.Visit, profile *vmodels.Profile) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service registers visits for single visitors and teams and lists site
// rosters for managers.
type Service struct {
	visits         Store
	visitors       VisitorResolver
	notifier       Notifier
	tx             txcontext.Runner
	loc            *time.Location
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
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

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New builds the service. loc is the site timezone that submitted dates
// and times are read in.
func New(visits Store, visitors VisitorResolver, notifier Notifier, tx txcontext.Runner, loc *time.Location, opts ...Option) *Service {
	s := &Service{
		visits:   visits,
		visitors: visitors,
		notifier: notifier,
		tx:       tx,
		loc:      loc,
		logger:   slog.Default(),
		tracer:   otel.Tracer("visitreg/visit"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error) {
	code := dErrors.CodeInternal
	if de, ok := dErrors.As(err); ok {
		code = de.Code
	}
	span.SetStatus(codes.Error, string(code))
	if s.metrics != nil {
		s.metrics.IncrementRegistrationFailed(string(code))
	}
	if dErrors.ToHTTPStatus(code) >= 500 {
		s.logger.ErrorContext(ctx, "visit registration failed", "code", string(code), "error", err)
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
