package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"visitreg/internal/platform/middleware"
	"visitreg/internal/visitor/handler/mocks"
	"visitreg/internal/visitor/models"
	visitorService "visitreg/internal/visitor/service"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
)

type stubValidator struct {
	claims *middleware.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return s.claims, nil
}

var visitorIdentity = id.IdentityID(uuid.New())

func newRouter(t *testing.T) (*mocks.MockService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	validator := stubValidator{claims: &middleware.JWTClaims{IdentityID: visitorIdentity.String(), Username: "ada"}}
	r := chi.NewRouter()
	New(svc, validator, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return svc, r
}

func do(t *testing.T, router http.Handler, method, path, body string, authed bool) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer good")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	}
	return rr.Code, out
}

func sampleProfile() *models.Profile {
	return &models.Profile{
		Visitor: &models.Visitor{ID: id.VisitorID(uuid.New()), FirstName: "Ada", LastName: "Lovelace"},
		Role:    &models.Role{Name: "Contractor"},
		Contact: &models.EmergencyContact{Name: "Grace", Phone: "0400 111 222", Relationship: "Friend"},
	}
}

func TestHandleRegister(t *testing.T) {
	t.Run("201 with profile", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().RegisterAccount(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, req visitorService.RegisterRequest) (*models.Profile, error) {
				assert.Equal(t, "ada", req.Username)
				assert.Equal(t, "Contractor", req.Attributes.Role)
				return sampleProfile(), nil
			})

		status, body := do(t, router, http.MethodPost, "/auth/register",
			`{"username":"ada","password":"correct horse","first_name":"Ada","role":"Contractor"}`, false)
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "Contractor", body["role"])
		assert.Equal(t, "Grace", body["emergency_contact"].(map[string]any)["name"])
	})

	t.Run("422 carries field errors", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().RegisterAccount(gomock.Any(), gomock.Any()).Return(nil,
			dErrors.WithFields(dErrors.CodeIncompleteAttributes, "new visitor details are incomplete",
				dErrors.FieldErrors{{Field: models.FieldPhone, Message: models.MsgRequired}}))

		status, body := do(t, router, http.MethodPost, "/auth/register", `{"username":"ada"}`, false)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "incomplete_attributes", body["error"])
		fields := body["fields"].([]any)
		require.Len(t, fields, 1)
		assert.Equal(t, "phone", fields[0].(map[string]any)["field"])
	})
}

func TestMeRequiresAuth(t *testing.T) {
	_, router := newRouter(t)
	status, _ := do(t, router, http.MethodGet, "/me", "", false)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHandleMe(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().ProfileByIdentity(gomock.Any(), visitorIdentity).Return(sampleProfile(), nil)

	status, body := do(t, router, http.MethodGet, "/me", "", true)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ada", body["first_name"])
}

func TestHandleUpdate(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().UpdateDetails(gomock.Any(), visitorIdentity, visitorService.DetailsUpdate{Phone: "0400 999 999"}).
		Return(sampleProfile(), nil)

	status, _ := do(t, router, http.MethodPatch, "/me", `{"phone":"0400 999 999"}`, true)
	assert.Equal(t, http.StatusOK, status)
}

func TestHandleReplaceContact(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().ReplaceEmergencyContact(gomock.Any(), visitorIdentity, visitorService.ContactDetails{
		Name: "Charles", Phone: "0400 333 444", Relationship: "Colleague",
	}).Return(sampleProfile(), nil)

	status, _ := do(t, router, http.MethodPut, "/me/emergency-contact",
		`{"name":"Charles","phone":"0400 333 444","relationship":"Colleague"}`, true)
	assert.Equal(t, http.StatusOK, status)
}

func TestHandleDelete(t *testing.T) {
	t.Run("204", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Delete(gomock.Any(), visitorIdentity).Return(nil)
		status, _ := do(t, router, http.MethodDelete, "/me", "", true)
		assert.Equal(t, http.StatusNoContent, status)
	})

	t.Run("internal errors are masked", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Delete(gomock.Any(), visitorIdentity).
			Return(dErrors.Wrap(errors.New("db down"), dErrors.CodeInternal, "failed to delete visits"))
		status, body := do(t, router, http.MethodDelete, "/me", "", true)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})
}
