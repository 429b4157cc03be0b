// Package service queues site-manager notifications after a visit is
// persisted and delivers them from a background worker.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"visitreg/internal/notify/message"
	"visitreg/internal/notify/models"
	"visitreg/internal/notify/sender"
	"visitreg/internal/platform/metrics"
	visitmodels "visitreg/internal/visit/models"
	vmodels "visitreg/internal/visitor/models"
	"visitreg/pkg/platform/audit"
	"visitreg/pkg/requestcontext"
)

type Queue interface {
	Enqueue(ctx context.Context, job *models.Job) error
}

type Source interface {
	Dequeue(ctx context.Context) (*models.Job, error)
}

// Recipients resolves the addresses of a site's manager group.
type Recipients interface {
	ManagerEmails(ctx context.Context, group string) ([]string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Dispatcher snapshots a persisted visit into a job and queues it.
type Dispatcher struct {
	queue   Queue
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type DispatcherOption func(*Dispatcher)

func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithDispatcherMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func NewDispatcher(queue Queue, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{queue: queue, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify queues a notification for visit. The error only signals that the
// job was not queued; the visit itself stays registered.
func (d *Dispatcher) Notify(ctx context.Context, visit *visitmodels.Visit, profile *vmodels.Profile) error {
	job := models.NewJob(visit, profile, requestcontext.Now(ctx))
	if err := d.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("queue notification for visit %s: %w", visit.ID, err)
	}
	if d.metrics != nil {
		d.metrics.IncrementNotificationQueued()
	}
	d.logger.DebugContext(ctx, "visit notification queued",
		"visit_id", visit.ID.String(),
		"site", string(visit.Site),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Worker drains the queue and delivers each job over every sender.
type Worker struct {
	source         Source
	recipients     Recipients
	senders        []sender.Sender
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	backoff        time.Duration
}

type WorkerOption func(*Worker)

func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) WorkerOption {
	return func(w *Worker) {
		w.auditPublisher = p
	}
}

// WithBackoff sets the pause after a failed dequeue.
func WithBackoff(d time.Duration) WorkerOption {
	return func(w *Worker) {
		w.backoff = d
	}
}

func NewWorker(source Source, recipients Recipients, senders []sender.Sender, opts ...WorkerOption) *Worker {
	w := &Worker{
		source:     source,
		recipients: recipients,
		senders:    senders,
		logger:     slog.Default(),
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes jobs until ctx is cancelled. It returns nil on shutdown.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "notification worker started", "senders", w.senderNames())
	for {
		job, err := w.source.Dequeue(ctx)
		if ctx.Err() != nil {
			w.logger.InfoContext(ctx, "notification worker stopped")
			return nil
		}
		if err != nil {
			w.logger.ErrorContext(ctx, "failed to dequeue notification", "error", err)
			w.failed("dequeue")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.backoff):
			}
			continue
		}
		// Delivery errors are already logged, counted and audited.
		_ = w.Process(ctx, job)
	}
}

// ErrNoRecipients means the site's manager group has no email addresses.
// Nothing is sent on any channel.
var ErrNoRecipients = errors.New("site has no manager addresses")

// Process delivers one job. Every sender is attempted; the joined error
// lists the channels that failed.
func (w *Worker) Process(ctx context.Context, job *models.Job) error {
	group := job.Site.ManagerGroup()
	to, err := w.recipients.ManagerEmails(ctx, group)
	if err != nil {
		w.deliveryFailed(ctx, job, "recipients", err)
		return err
	}
	if len(to) == 0 {
		err := fmt.Errorf("%w in group %s", ErrNoRecipients, group)
		w.deliveryFailed(ctx, job, "no_recipients", err)
		return err
	}

	msg, err := message.Render(job, to)
	if err != nil {
		w.deliveryFailed(ctx, job, "render", err)
		return err
	}

	var errs []error
	for _, s := range w.senders {
		if err := s.Send(ctx, msg); err != nil {
			w.deliveryFailed(ctx, job, "send", fmt.Errorf("%s: %w", s.Name(), err))
			errs = append(errs, err)
			continue
		}
		if w.metrics != nil {
			w.metrics.IncrementNotificationSent(s.Name())
		}
	}
	if len(errs) == 0 {
		w.logger.InfoContext(ctx, "visit notification delivered",
			"visit_id", job.VisitID.String(),
			"site", string(job.Site),
			"recipients", len(to),
		)
	}
	return errors.Join(errs...)
}

func (w *Worker) deliveryFailed(ctx context.Context, job *models.Job, stage string, err error) {
	w.logger.ErrorContext(ctx, "failed to deliver visit notification",
		"visit_id", job.VisitID.String(),
		"site", string(job.Site),
		"stage", stage,
		"error", err,
	)
	w.failed(stage)
	if w.auditPublisher == nil {
		return
	}
	if aerr := w.auditPublisher.Emit(ctx, audit.Event{
		Subject: job.VisitID.String(),
		Action:  string(audit.EventNotificationFailed),
		Site:    string(job.Site),
		Reason:  stage + ": " + err.Error(),
	}); aerr != nil {
		w.logger.WarnContext(ctx, "failed to emit audit event", "action", string(audit.EventNotificationFailed), "error", aerr)
	}
}

func (w *Worker) failed(stage string) {
	if w.metrics != nil {
		w.metrics.IncrementNotificationFailed(stage)
	}
}

func (w *Worker) senderNames() []string {
	names := make([]string, 0, len(w.senders))
	for _, s := range w.senders {
		names = append(names, s.Name())
	}
	return names
}
