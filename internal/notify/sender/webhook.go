package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"visitreg/internal/notify/models"
	"visitreg/pkg/platform/circuit"
)

// ErrCircuitOpen is returned while the webhook breaker refuses calls.
var ErrCircuitOpen = errors.New("webhook circuit open")

// WebhookSender posts the message as JSON to an HTTP endpoint, e.g. a chat
// integration. Repeated failures open a circuit breaker so a dead endpoint
// does not stall the worker on every job.
type WebhookSender struct {
	url     string
	client  *resty.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type WebhookOption func(*WebhookSender)

func WithRetries(n int, wait time.Duration) WebhookOption {
	return func(s *WebhookSender) {
		s.client.SetRetryCount(n).
			SetRetryWaitTime(wait).
			SetRetryMaxWaitTime(4 * wait)
	}
}

func WithBreaker(b *circuit.Breaker) WebhookOption {
	return func(s *WebhookSender) {
		s.breaker = b
	}
}

func WithWebhookLogger(logger *slog.Logger) WebhookOption {
	return func(s *WebhookSender) {
		s.logger = logger
	}
}

func NewWebhookSender(url string, opts ...WebhookOption) *WebhookSender {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "visitreg-notify/1.0").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	s := &WebhookSender{
		url:     url,
		client:  client,
		breaker: circuit.New("webhook", circuit.WithFailureThreshold(5), circuit.WithCooldown(time.Minute)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WebhookSender) Name() string { return "webhook" }

func (s *WebhookSender) Send(ctx context.Context, msg *models.Message) error {
	if !s.breaker.Allow() {
		return ErrCircuitOpen
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(s.url)
	if err == nil && resp.IsError() {
		err = fmt.Errorf("webhook returned %s", resp.Status())
	}
	if err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "webhook circuit opened", "url", s.url)
		}
		return fmt.Errorf("post webhook: %w", err)
	}

	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "webhook circuit closed", "url", s.url)
	}
	return nil
}
