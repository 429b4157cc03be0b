package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"visitreg/internal/notify/models"
	"visitreg/internal/notify/queue"
	"visitreg/internal/notify/sender"
	sendermocks "visitreg/internal/notify/sender/mocks"
	"visitreg/internal/notify/service/mocks"
	"visitreg/internal/platform/metrics"
	visitmodels "visitreg/internal/visit/models"
	vmodels "visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	"visitreg/pkg/platform/audit"
	"visitreg/pkg/requestcontext"
)

type NotifySuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	queue      *mocks.MockQueue
	source     *mocks.MockSource
	recipients *mocks.MockRecipients
	audit      *mocks.MockAuditPublisher
	mail       *sendermocks.MockSender
	hook       *sendermocks.MockSender
	metrics    *metrics.Metrics
	dispatcher *Dispatcher
	worker     *Worker
	ctx        context.Context
	now        time.Time
}

func TestNotifySuite(t *testing.T) {
	suite.Run(t, new(NotifySuite))
}

func (s *NotifySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.queue = mocks.NewMockQueue(s.ctrl)
	s.source = mocks.NewMockSource(s.ctrl)
	s.recipients = mocks.NewMockRecipients(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.mail = sendermocks.NewMockSender(s.ctrl)
	s.hook = sendermocks.NewMockSender(s.ctrl)
	s.mail.EXPECT().Name().Return("smtp").AnyTimes()
	s.hook.EXPECT().Name().Return("webhook").AnyTimes()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())

	s.dispatcher = NewDispatcher(s.queue, WithDispatcherMetrics(s.metrics))
	s.worker = NewWorker(s.source, s.recipients, []sender.Sender{s.mail, s.hook},
		WithMetrics(s.metrics),
		WithAuditPublisher(s.audit),
		WithBackoff(time.Millisecond),
	)
	s.now = time.Date(2022, 12, 27, 8, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *NotifySuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *NotifySuite) farmVisit(overnight bool, extra visitmodels.SiteFields) (*visitmodels.Visit, *vmodels.Profile) {
	visit := &visitmodels.Visit{
		ID:        id.VisitID(uuid.New()),
		VisitorID: id.VisitorID(uuid.New()),
		Site:      visitmodels.SiteRidgefield,
		Arrival:   time.Date(2022, 12, 27, 9, 0, 0, 0, time.UTC),
		Departure: time.Date(2022, 12, 28, 17, 0, 0, 0, time.UTC),
		Overnight: overnight,
		Extra:     extra,
	}
	profile := &vmodels.Profile{
		Visitor: &vmodels.Visitor{FirstName: "Jane", LastName: "Doe"},
		Role:    &vmodels.Role{Name: "Contractor"},
		Contact: &vmodels.EmergencyContact{Name: "John Doe", Phone: "0400000000", Relationship: "Partner"},
	}
	return visit, profile
}

func (s *NotifySuite) TestNotify() {
	s.Run("queues a snapshot", func() {
		visit, profile := s.farmVisit(true, visitmodels.FarmFields{Paddock: "Mating Pots 0.71"})
		s.queue.EXPECT().Enqueue(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, job *models.Job) error {
			s.Equal(visit.ID, job.VisitID)
			s.Equal("Jane Doe", job.VisitorName)
			s.Equal("Contractor", job.Role)
			s.Equal(s.now, job.QueuedAt)
			s.Require().NotNil(job.Paddock)
			s.Equal("Mating Pots 0.71", *job.Paddock)
			s.Equal("Partner", job.Contact.Relationship)
			return nil
		})

		s.NoError(s.dispatcher.Notify(s.ctx, visit, profile))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.NotificationsQueued))
	})

	s.Run("site without extra fields has no paddock", func() {
		visit, profile := s.farmVisit(false, nil)
		visit.Site = visitmodels.SiteGingin
		s.queue.EXPECT().Enqueue(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, job *models.Job) error {
			s.Nil(job.Paddock)
			return nil
		})
		s.NoError(s.dispatcher.Notify(s.ctx, visit, profile))
	})

	s.Run("queue failure is returned", func() {
		visit, profile := s.farmVisit(false, nil)
		s.queue.EXPECT().Enqueue(s.ctx, gomock.Any()).Return(queue.ErrFull)
		s.ErrorIs(s.dispatcher.Notify(s.ctx, visit, profile), queue.ErrFull)
	})
}

func (s *NotifySuite) job() *models.Job {
	visit, profile := s.farmVisit(true, visitmodels.FarmFields{Paddock: "Mating Pots 0.71"})
	return models.NewJob(visit, profile, s.now)
}

func (s *NotifySuite) TestProcess() {
	s.Run("sends to every channel", func() {
		job := s.job()
		s.recipients.EXPECT().ManagerEmails(s.ctx, "Ridgefield").Return([]string{"m@uwa.edu.au"}, nil)
		s.mail.EXPECT().Send(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, msg *models.Message) error {
			s.Equal("New visitor at Ridgefield", msg.Subject)
			s.Equal([]string{"m@uwa.edu.au"}, msg.To)
			s.Contains(msg.Markdown, "Mating Pots 0.71")
			return nil
		})
		s.hook.EXPECT().Send(s.ctx, gomock.Any()).Return(nil)

		s.NoError(s.worker.Process(s.ctx, job))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.NotificationsSent.WithLabelValues("smtp")))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.NotificationsSent.WithLabelValues("webhook")))
	})

	s.Run("one failing channel does not stop the others", func() {
		job := s.job()
		s.recipients.EXPECT().ManagerEmails(s.ctx, "Ridgefield").Return([]string{"m@uwa.edu.au"}, nil)
		s.mail.EXPECT().Send(s.ctx, gomock.Any()).Return(errors.New("smtp down"))
		s.hook.EXPECT().Send(s.ctx, gomock.Any()).Return(nil)
		s.audit.EXPECT().Emit(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventNotificationFailed), e.Action)
			s.Equal(job.VisitID.String(), e.Subject)
			s.Contains(e.Reason, "smtp down")
			return nil
		})

		err := s.worker.Process(s.ctx, job)
		s.ErrorContains(err, "smtp down")
		s.Equal(1.0, testutil.ToFloat64(s.metrics.NotificationsFailed.WithLabelValues("send")))
	})

	s.Run("site without manager addresses sends nothing", func() {
		job := s.job()
		s.recipients.EXPECT().ManagerEmails(s.ctx, "Ridgefield").Return(nil, nil)
		s.audit.EXPECT().Emit(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventNotificationFailed), e.Action)
			return nil
		})

		err := s.worker.Process(s.ctx, job)
		s.ErrorIs(err, ErrNoRecipients)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.NotificationsFailed.WithLabelValues("no_recipients")))
	})

	s.Run("recipient lookup failure skips delivery", func() {
		job := s.job()
		s.recipients.EXPECT().ManagerEmails(s.ctx, "Ridgefield").Return(nil, errors.New("db down"))
		s.audit.EXPECT().Emit(s.ctx, gomock.Any()).Return(nil)

		s.Error(s.worker.Process(s.ctx, job))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.NotificationsFailed.WithLabelValues("recipients")))
	})
}

func (s *NotifySuite) TestRun() {
	s.Run("drains until cancelled", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		job := s.job()

		gomock.InOrder(
			s.source.EXPECT().Dequeue(ctx).Return(nil, errors.New("connection reset")),
			s.source.EXPECT().Dequeue(ctx).Return(job, nil),
			s.source.EXPECT().Dequeue(ctx).DoAndReturn(func(context.Context) (*models.Job, error) {
				cancel()
				return nil, context.Canceled
			}),
		)
		s.recipients.EXPECT().ManagerEmails(ctx, "Ridgefield").Return([]string{"m@uwa.edu.au"}, nil)
		s.mail.EXPECT().Send(ctx, gomock.Any()).Return(nil)
		s.hook.EXPECT().Send(ctx, gomock.Any()).Return(nil)

		s.NoError(s.worker.Run(ctx))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.NotificationsFailed.WithLabelValues("dequeue")))
	})
}

func (s *NotifySuite) TestEndToEndWithMemoryQueue() {
	q := queue.NewMemoryQueue(4)
	dispatcher := NewDispatcher(q)
	worker := NewWorker(q, s.recipients, []sender.Sender{s.mail})

	visit, profile := s.farmVisit(true, visitmodels.FarmFields{Paddock: "Mating Pots 0.71"})
	s.Require().NoError(dispatcher.Notify(s.ctx, visit, profile))

	job, err := q.Dequeue(s.ctx)
	s.Require().NoError(err)
	s.recipients.EXPECT().ManagerEmails(s.ctx, "Ridgefield").Return([]string{"m@uwa.edu.au"}, nil)
	s.mail.EXPECT().Send(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, msg *models.Message) error {
		s.Equal(visit.ID, msg.VisitID)
		return nil
	})
	s.NoError(worker.Process(s.ctx, job))
}
