package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"visitreg/internal/sitecontact/models"
	"visitreg/internal/sitecontact/service/mocks"
	visitmodels "visitreg/internal/visit/models"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/platform/audit"
	"visitreg/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	audit   *mocks.MockAuditPublisher
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, WithAuditPublisher(s.audit))
	s.ctx = context.Background()
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestList() {
	s.Run("all sites", func() {
		s.store.EXPECT().List(s.ctx, visitmodels.SiteKind("")).Return([]*models.SiteContact{{Name: "Pat"}}, nil)
		contacts, err := s.service.List(s.ctx, "")
		s.Require().NoError(err)
		s.Len(contacts, 1)
	})

	s.Run("site filter is normalized", func() {
		s.store.EXPECT().List(s.ctx, visitmodels.SiteGingin).Return(nil, nil)
		_, err := s.service.List(s.ctx, " Gingin ")
		s.NoError(err)
	})

	s.Run("unknown site", func() {
		_, err := s.service.List(s.ctx, "mars")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestCreate() {
	actor := id.IdentityID(uuid.New())

	s.Run("saves and audits", func() {
		s.store.EXPECT().Save(s.ctx, gomock.Any()).Return(nil)
		s.audit.EXPECT().Emit(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventSiteContactCreated), e.Action)
			s.Equal(actor, e.IdentityID)
			s.Equal("ridgefield", e.Site)
			return nil
		})

		contact, err := s.service.Create(s.ctx, actor, CreateRequest{
			Name: "Pat Farmer", Phone: "08 6488 0000", Site: "ridgefield", Position: "Farm manager",
		})
		s.Require().NoError(err)
		s.Equal("Pat Farmer", contact.Name)
	})

	s.Run("invalid input never reaches the store", func() {
		_, err := s.service.Create(s.ctx, actor, CreateRequest{Site: "ridgefield"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failure", func() {
		s.store.EXPECT().Save(s.ctx, gomock.Any()).Return(errors.New("disk full"))
		_, err := s.service.Create(s.ctx, actor, CreateRequest{
			Name: "Pat", Phone: "0400000000", Site: "gingin", Position: "Caretaker",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestDelete() {
	contactID := id.SiteContactID(uuid.New())

	s.Run("not found", func() {
		s.store.EXPECT().Delete(s.ctx, contactID).Return(sentinel.ErrNotFound)
		s.True(dErrors.HasCode(s.service.Delete(s.ctx, contactID), dErrors.CodeNotFound))
	})

	s.Run("deleted", func() {
		s.store.EXPECT().Delete(s.ctx, contactID).Return(nil)
		s.NoError(s.service.Delete(s.ctx, contactID))
	})
}
