package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	authService "visitreg/internal/auth/service"
	identityStore "visitreg/internal/auth/store/identity"
	httpapi "visitreg/internal/http"
	"visitreg/internal/notify/queue"
	"visitreg/internal/notify/sender"
	notifyService "visitreg/internal/notify/service"
	"visitreg/internal/platform/config"
	"visitreg/internal/platform/kafka"
	"visitreg/internal/platform/metrics"
	"visitreg/internal/platform/postgres"
	"visitreg/internal/platform/redis"
	rateLimitMiddleware "visitreg/internal/ratelimit/middleware"
	rateLimitService "visitreg/internal/ratelimit/service"
	"visitreg/internal/ratelimit/store/bucket"
	siteContactService "visitreg/internal/sitecontact/service"
	siteContactStore "visitreg/internal/sitecontact/store"
	visitService "visitreg/internal/visit/service"
	visitStore "visitreg/internal/visit/store"
	visitorService "visitreg/internal/visitor/service"
	visitorStore "visitreg/internal/visitor/store"
	"visitreg/pkg/platform/audit"
	auditmemory "visitreg/pkg/platform/audit/store/memory"
	auditpostgres "visitreg/pkg/platform/audit/store/postgres"
	"visitreg/pkg/platform/circuit"
	txcontext "visitreg/pkg/platform/tx"
)

const txTimeout = 5 * time.Second

// infra holds the optional external dependencies. Nil fields are not
// configured.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	out := &infra{}
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		out.db = db
	} else {
		log.Warn("DATABASE_URL not set; using in-memory stores")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		out.Close()
		return nil, err
	}
	out.redis = rc

	kc, err := kafka.NewClient(cfg.Notify.KafkaBrokers, "visitreg")
	if err != nil {
		out.Close()
		return nil, err
	}
	out.kafka = kc
	return out, nil
}

func (i *infra) healthChecks() map[string]httpapi.HealthCheck {
	checks := make(map[string]httpapi.HealthCheck)
	if i.db != nil {
		checks["postgres"] = i.db.PingContext
	}
	if i.redis != nil {
		checks["redis"] = i.redis.Health
	}
	if i.kafka != nil {
		checks["kafka"] = func(ctx context.Context) error { return kafka.Health(ctx, i.kafka) }
	}
	return checks
}

func (i *infra) Close() {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

type visitStorage interface {
	visitService.Store
	visitorService.VisitDeleter
}

type stores struct {
	identities   authService.IdentityStore
	visitors     visitorService.VisitorStore
	contacts     visitorService.ContactStore
	roles        visitorService.RoleStore
	visits       visitStorage
	siteContacts siteContactService.Store
	audit        audit.Store
	tx           txcontext.Runner
}

// newStores picks postgres stores when db is set and in-memory ones
// otherwise. In-memory units of work are serialized by a LockRunner.
func newStores(db *sql.DB) stores {
	if db == nil {
		return stores{
			identities:   identityStore.New(),
			visitors:     visitorStore.NewVisitorStore(),
			contacts:     visitorStore.NewContactStore(),
			roles:        visitorStore.NewRoleStore(),
			visits:       visitStore.New(),
			siteContacts: siteContactStore.New(),
			audit:        auditmemory.NewInMemoryStore(),
			tx:           &txcontext.LockRunner{},
		}
	}
	return stores{
		identities:   identityStore.NewPostgres(db),
		visitors:     visitorStore.NewPostgresVisitorStore(db),
		contacts:     visitorStore.NewPostgresContactStore(db),
		roles:        visitorStore.NewPostgresRoleStore(db),
		visits:       visitStore.NewPostgres(db),
		siteContacts: siteContactStore.NewPostgres(db),
		audit:        auditpostgres.New(db),
		tx:           txcontext.SQLRunner{DB: db, Timeout: txTimeout},
	}
}

type notifyQueue interface {
	notifyService.Queue
	notifyService.Source
}

func newQueue(cfg config.Server, i *infra) notifyQueue {
	if i.redis != nil {
		return queue.NewRedisQueue(i.redis, cfg.Redis.QueueKey)
	}
	return queue.NewMemoryQueue(1024)
}

// newRateLimit returns the per-IP limiter middleware, sharing windows
// through Redis when it is configured. Nil when disabled.
func newRateLimit(cfg config.Server, i *infra, m *metrics.Metrics, log *slog.Logger) func(http.Handler) http.Handler {
	if cfg.RateLimit.RequestsPerMinute <= 0 {
		return nil
	}
	var buckets rateLimitService.BucketStore = bucket.NewInMemoryStore()
	if i.redis != nil {
		buckets = bucket.NewRedisStore(i.redis, "visitreg:ratelimit:")
	}
	limiter := rateLimitService.NewLimiter(buckets, cfg.RateLimit.RequestsPerMinute,
		rateLimitService.WithLogger(log),
		rateLimitService.WithMetrics(m),
	)
	return rateLimitMiddleware.RateLimit(limiter, log)
}

// newSenders builds the configured delivery channels, falling back to the
// log when none is configured.
func newSenders(ctx context.Context, cfg config.Server, i *infra, log *slog.Logger) []sender.Sender {
	var out []sender.Sender
	if cfg.Notify.SMTP.Enabled() {
		out = append(out, sender.NewSMTPSender(cfg.Notify.SMTP))
	}
	if cfg.Notify.WebhookURL != "" {
		out = append(out, sender.NewWebhookSender(cfg.Notify.WebhookURL,
			sender.WithBreaker(circuit.New("webhook", circuit.WithFailureThreshold(5), circuit.WithCooldown(time.Minute))),
			sender.WithWebhookLogger(log),
		))
	}
	if i.kafka != nil {
		if err := kafka.EnsureTopic(ctx, i.kafka, cfg.Notify.KafkaTopic, 1, 1); err != nil {
			log.Warn("could not ensure notification topic", "topic", cfg.Notify.KafkaTopic, "error", err)
		}
		out = append(out, sender.NewKafkaSender(i.kafka, cfg.Notify.KafkaTopic))
	}
	if len(out) == 0 {
		out = append(out, sender.NewLogSender(log))
	}
	return out
}
