package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	Environment   string
	LogLevel      string
	JWTSigningKey string
	TokenTTL      time.Duration
	DatabaseURL   string
	SiteTimezone  string
	// BootstrapManagerPassword seeds one manager account per site when set.
	BootstrapManagerPassword string
	// TrustedProxies lists the peers whose X-Forwarded-For and X-Real-IP
	// headers are believed. Empty means every request is taken at its
	// socket address.
	TrustedProxies []netip.Prefix

	Redis     RedisConfig
	Notify    NotifyConfig
	RateLimit RateLimitConfig
}

// RedisConfig configures the optional Redis-backed notification queue.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	QueueKey     string
}

// RateLimitConfig bounds request volume per client IP and failed logins
// per username and IP. Zero values disable the corresponding limit.
type RateLimitConfig struct {
	RequestsPerMinute int
	LoginAttempts     int
	LoginWindow       time.Duration
	LockDuration      time.Duration
}

// NotifyConfig selects the delivery channels for site-manager notifications.
type NotifyConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
	WebhookURL   string
	SMTP         SMTPConfig
	Workers      int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" }

func (s Server) IsProduction() bool { return s.Environment == "production" }

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:                     getEnv("VISITREG_ADDR", ":8080"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		JWTSigningKey:            os.Getenv("JWT_SIGNING_KEY"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		SiteTimezone:             getEnv("SITE_TIMEZONE", "Australia/Perth"),
		BootstrapManagerPassword: os.Getenv("BOOTSTRAP_MANAGER_PASSWORD"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			QueueKey:     getEnv("REDIS_NOTIFY_QUEUE", "visitreg:notify"),
		},
		Notify: NotifyConfig{
			KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
			KafkaTopic:   getEnv("KAFKA_NOTIFY_TOPIC", "visitreg.visit-notifications"),
			WebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
			SMTP: SMTPConfig{
				Host:     os.Getenv("SMTP_HOST"),
				Username: os.Getenv("SMTP_USERNAME"),
				Password: os.Getenv("SMTP_PASSWORD"),
				From:     getEnv("SMTP_FROM", "visitors@localhost"),
			},
		},
	}

	var err error
	if cfg.TokenTTL, err = parseDuration("TOKEN_TTL", 12*time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.Notify.SMTP.Port, err = parseInt("SMTP_PORT", 587); err != nil {
		return Server{}, err
	}
	if cfg.Notify.Workers, err = parseInt("NOTIFY_WORKERS", 1); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.RequestsPerMinute, err = parseInt("RATE_LIMIT_PER_MINUTE", 300); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.LoginAttempts, err = parseInt("LOGIN_MAX_ATTEMPTS", 5); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.LoginWindow, err = parseDuration("LOGIN_WINDOW", 15*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.LockDuration, err = parseDuration("LOGIN_LOCK_DURATION", 15*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.TrustedProxies, err = parsePrefixes("TRUSTED_PROXIES"); err != nil {
		return Server{}, err
	}
	if cfg.Notify.Workers < 1 {
		return Server{}, fmt.Errorf("NOTIFY_WORKERS must be at least 1")
	}

	if cfg.JWTSigningKey == "" {
		if cfg.IsProduction() {
			return Server{}, fmt.Errorf("JWT_SIGNING_KEY is required in production")
		}
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePrefixes reads a comma separated list of CIDRs or bare addresses.
func parsePrefixes(key string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, raw := range splitList(os.Getenv(key)) {
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", key, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
