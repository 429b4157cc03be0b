// Package service applies request limits per client IP and locks out
// repeated failed logins.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"visitreg/internal/platform/metrics"
	"visitreg/internal/ratelimit/models"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/platform/audit"
	"visitreg/pkg/platform/sentinel"
	"visitreg/pkg/requestcontext"
)

type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

type LockoutStore interface {
	Get(ctx context.Context, key string) (*models.Lockout, error)
	Save(ctx context.Context, record *models.Lockout) error
	Delete(ctx context.Context, key string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*options)

type options struct {
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(o *options) {
		o.auditPublisher = p
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Limiter caps requests per client IP per minute.
type Limiter struct {
	buckets   BucketStore
	perMinute int
	options
}

func NewLimiter(buckets BucketStore, perMinute int, opts ...Option) *Limiter {
	return &Limiter{buckets: buckets, perMinute: perMinute, options: buildOptions(opts)}
}

func (l *Limiter) CheckIP(ctx context.Context, ip string) (*models.Result, error) {
	res, err := l.buckets.Allow(ctx, "ip:"+ip, l.perMinute, time.Minute)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check rate limit")
	}
	if !res.Allowed && l.metrics != nil {
		l.metrics.IncrementRateLimited("ip")
	}
	return res, nil
}

// Lockout counts failed logins per username and IP. After attempts
// failures inside window the pair is refused until lockFor has passed.
type Lockout struct {
	store    LockoutStore
	attempts int
	window   time.Duration
	lockFor  time.Duration
	options
}

func NewLockout(store LockoutStore, attempts int, window, lockFor time.Duration, opts ...Option) *Lockout {
	return &Lockout{store: store, attempts: attempts, window: window, lockFor: lockFor, options: buildOptions(opts)}
}

// Check returns CodeRateLimited while the pair is locked. Store failures
// are logged and let the attempt through.
func (l *Lockout) Check(ctx context.Context, username, ip string) error {
	record, err := l.store.Get(ctx, models.LockoutKey(username, ip))
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			l.logger.WarnContext(ctx, "lockout lookup failed; allowing attempt", "error", err)
		}
		return nil
	}
	now := requestcontext.Now(ctx)
	if !record.IsLockedAt(now) {
		return nil
	}
	if l.metrics != nil {
		l.metrics.IncrementRateLimited("login")
	}
	retry := models.RetryAfterSeconds(record.LockedUntil.Sub(now))
	return dErrors.RateLimited("too many failed logins, try again later", retry)
}

// RecordFailure counts one failed attempt and locks the pair once the
// limit is reached.
func (l *Lockout) RecordFailure(ctx context.Context, username, ip string) error {
	key := models.LockoutKey(username, ip)
	now := requestcontext.Now(ctx)

	record, err := l.store.Get(ctx, key)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		record = &models.Lockout{Key: key}
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load lockout record")
	}

	if record.WindowExpiredAt(now, l.window) {
		record.Failures = 0
		record.FirstFailure = now
		record.LockedUntil = nil
	}
	record.Failures++
	record.LastFailureAt = now

	locked := record.Failures >= l.attempts && !record.IsLockedAt(now)
	if locked {
		record.Lock(now.Add(l.lockFor))
	}
	if err := l.store.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save lockout record")
	}

	if locked {
		l.logger.WarnContext(ctx, "login locked",
			"username", username,
			"failures", record.Failures,
			"locked_until", *record.LockedUntil,
			"request_id", requestcontext.RequestID(ctx),
		)
		if l.auditPublisher != nil {
			if err := l.auditPublisher.Emit(ctx, audit.Event{
				Subject: username,
				Action:  string(audit.EventLoginLocked),
				Reason:  "too_many_failures",
			}); err != nil {
				l.logger.WarnContext(ctx, "failed to emit audit event", "action", audit.EventLoginLocked, "error", err)
			}
		}
	}
	return nil
}

// Clear forgets failures after a successful login.
func (l *Lockout) Clear(ctx context.Context, username, ip string) error {
	if err := l.store.Delete(ctx, models.LockoutKey(username, ip)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear lockout record")
	}
	return nil
}
