package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	authHandler "visitreg/internal/auth/handler"
	authService "visitreg/internal/auth/service"
	"visitreg/internal/auth/token"
	httpapi "visitreg/internal/http"
	notifyService "visitreg/internal/notify/service"
	"visitreg/internal/platform/config"
	"visitreg/internal/platform/httpserver"
	"visitreg/internal/platform/logger"
	"visitreg/internal/platform/metrics"
	rateLimitService "visitreg/internal/ratelimit/service"
	lockoutStore "visitreg/internal/ratelimit/store/lockout"
	siteContactHandler "visitreg/internal/sitecontact/handler"
	siteContactService "visitreg/internal/sitecontact/service"
	visitHandler "visitreg/internal/visit/handler"
	visitmodels "visitreg/internal/visit/models"
	visitService "visitreg/internal/visit/service"
	visitorHandler "visitreg/internal/visitor/handler"
	visitorService "visitreg/internal/visitor/service"
	"visitreg/pkg/platform/audit/publisher"
)

const shutdownGrace = 15 * time.Second

var seedRoles = []string{"Contractor", "UWA Student", "UWA Staff", "Visitor"}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "visitreg:", err)
		os.Exit(1)
	}
}

// run wires dependencies and serves until SIGINT or SIGTERM. Business
// logic lives in the internal service packages.
func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(log)

	loc, err := time.LoadLocation(cfg.SiteTimezone)
	if err != nil {
		return fmt.Errorf("load site timezone %q: %w", cfg.SiteTimezone, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegisterer(registry)

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	a, err := newApp(ctx, cfg, infra, m, registry, loc, log)
	if err != nil {
		return err
	}
	defer a.audit.Close()
	srv := httpserver.New(cfg.Addr, a.router)

	senders := newSenders(ctx, cfg, infra, log)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, shutdownGrace, log)
	})
	for range cfg.Notify.Workers {
		worker := notifyService.NewWorker(a.queue, a.auth, senders,
			notifyService.WithLogger(log),
			notifyService.WithMetrics(m),
			notifyService.WithAuditPublisher(a.audit),
		)
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	log.Info("visitreg started",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", infra.db != nil,
		"redis", infra.redis != nil,
		"kafka", infra.kafka != nil,
		"notify_workers", cfg.Notify.Workers,
	)
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("visitreg stopped")
	return nil
}

// app is the wired HTTP surface plus what the background workers share
// with it.
type app struct {
	router http.Handler
	queue  notifyQueue
	auth   *authService.Service
	audit  *publisher.Publisher
}

func newApp(ctx context.Context, cfg config.Server, infra *infra, m *metrics.Metrics, gatherer prometheus.Gatherer,
	loc *time.Location, log *slog.Logger) (*app, error) {
	st := newStores(infra.db)
	auditPublisher := publisher.NewPublisher(st.audit, publisher.WithAsyncBuffer(1024), publisher.WithLogger(log))

	jwtService := token.NewJWTService(cfg.JWTSigningKey, "visitreg", "visitreg-api")
	jwtValidator := token.NewMiddlewareAdapter(jwtService)

	authOpts := []authService.Option{
		authService.WithLogger(log),
		authService.WithMetrics(m),
		authService.WithAuditPublisher(auditPublisher),
	}
	if rl := cfg.RateLimit; rl.LoginAttempts > 0 {
		guard := rateLimitService.NewLockout(lockoutStore.NewInMemoryStore(), rl.LoginAttempts, rl.LoginWindow, rl.LockDuration,
			rateLimitService.WithLogger(log),
			rateLimitService.WithMetrics(m),
			rateLimitService.WithAuditPublisher(auditPublisher),
		)
		authOpts = append(authOpts, authService.WithLoginGuard(guard))
	}
	auth := authService.New(st.identities, jwtService, cfg.TokenTTL, authOpts...)
	visitors := visitorService.New(st.visitors, st.contacts, st.roles, auth, st.visits, st.tx,
		visitorService.WithLogger(log),
		visitorService.WithAuditPublisher(auditPublisher),
	)
	queue := newQueue(cfg, infra)
	dispatcher := notifyService.NewDispatcher(queue,
		notifyService.WithDispatcherLogger(log),
		notifyService.WithDispatcherMetrics(m),
	)
	visits := visitService.New(st.visits, visitors, dispatcher, st.tx, loc,
		visitService.WithLogger(log),
		visitService.WithMetrics(m),
		visitService.WithAuditPublisher(auditPublisher),
	)
	siteContacts := siteContactService.New(st.siteContacts,
		siteContactService.WithLogger(log),
		siteContactService.WithAuditPublisher(auditPublisher),
	)

	if err := seed(ctx, cfg, visitors, auth, log); err != nil {
		auditPublisher.Close()
		return nil, err
	}

	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Metrics:        m,
		Gatherer:       gatherer,
		RequestTimeout: 30 * time.Second,
		HealthChecks:   infra.healthChecks(),
		RateLimit:      newRateLimit(cfg, infra, m, log),
		TrustedProxies: cfg.TrustedProxies,
	},
		authHandler.New(auth, log),
		visitorHandler.New(visitors, jwtValidator, log),
		visitHandler.New(visits, jwtValidator, loc, log),
		siteContactHandler.New(siteContacts, jwtValidator, log),
	)
	return &app{router: router, queue: queue, auth: auth, audit: auditPublisher}, nil
}

// seed makes sure the role catalogue exists and, when a bootstrap password
// is configured, one manager account per site.
func seed(ctx context.Context, cfg config.Server, visitors *visitorService.Service, auth *authService.Service, log *slog.Logger) error {
	if err := visitors.EnsureRoles(ctx, seedRoles...); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if cfg.BootstrapManagerPassword == "" {
		return nil
	}
	for _, site := range visitmodels.Catalogue {
		username := string(site.Kind) + "-manager"
		if err := auth.EnsureManager(ctx, username, cfg.BootstrapManagerPassword, "", site.Kind.ManagerGroup()); err != nil {
			return fmt.Errorf("seed manager for %s: %w", site.Kind, err)
		}
	}
	log.Warn("bootstrap manager accounts enabled; unset BOOTSTRAP_MANAGER_PASSWORD outside development")
	return nil
}
