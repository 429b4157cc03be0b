package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"visitreg/internal/platform/middleware"
	"visitreg/internal/visit/handler/mocks"
	"visitreg/internal/visit/models"
	visitService "visitreg/internal/visit/service"
	vmodels "visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
)

type stubValidator map[string]*middleware.JWTClaims

func (s stubValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

var (
	visitorIdentity = id.IdentityID(uuid.New())
	perth           = time.FixedZone("AWST", 8*60*60)
	validator       = stubValidator{
		"visitor": {IdentityID: visitorIdentity.String(), Username: "ada"},
		"manager": {IdentityID: uuid.NewString(), Username: "farm", Staff: true, Groups: []string{"Ridgefield"}},
	}
)

func newRouter(t *testing.T) (*mocks.MockService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	New(svc, validator, perth, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return svc, r
}

func do(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

const overnightBody = `{
	"arrival_date": "2022-12-27", "arrival_time": "09:00",
	"departure_date": "2022-12-28", "departure_time": "17:00",
	"overnight": true, "induction": true, "houserules": true,
	"paddock": "Mating Pots 0.71"`

func TestHandleRegisterVisit(t *testing.T) {
	t.Run("parses fields and leader", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().RegisterVisit(gomock.Any(), models.SiteRidgefield, gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ models.SiteKind, f models.VisitFields, leader visitService.Leader) (*visitService.Registered, error) {
				assert.Equal(t, "2022-12-27", f.ArrivalDate.String())
				assert.Equal(t, "17:00", f.DepartureTime.String())
				assert.Equal(t, models.FarmFields{Paddock: "Mating Pots 0.71"}, f.Extra)
				assert.Equal(t, visitorIdentity, leader.IdentityID)
				assert.Equal(t, "ada", leader.Username)
				return &visitService.Registered{
					Visit:   &models.Visit{ID: id.VisitID(uuid.New()), Site: models.SiteRidgefield, Extra: f.Extra},
					Profile: &vmodels.Profile{Visitor: &vmodels.Visitor{FirstName: "Ada", LastName: "Lovelace"}},
				}, nil
			})

		rr := do(t, router, http.MethodPost, "/visits/Ridgefield", "visitor", overnightBody+`}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, "Ada Lovelace", body["visitor_name"])
		assert.Equal(t, "Mating Pots 0.71", body["paddock"])
	})

	t.Run("blank paddock is not sent as a site field", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().RegisterVisit(gomock.Any(), models.SiteGingin, gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ models.SiteKind, f models.VisitFields, _ visitService.Leader) (*visitService.Registered, error) {
				assert.Nil(t, f.Extra)
				return &visitService.Registered{Visit: &models.Visit{ID: id.VisitID(uuid.New()), Site: models.SiteGingin}}, nil
			})

		rr := do(t, router, http.MethodPost, "/visits/gingin", "visitor",
			`{"arrival_date":"2022-12-23","arrival_time":"09:00","departure_date":"2022-12-23","departure_time":"16:00","paddock":"   "}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.NotContains(t, decode(t, rr), "paddock")
	})

	t.Run("unparseable dates are field errors", func(t *testing.T) {
		_, router := newRouter(t)
		rr := do(t, router, http.MethodPost, "/visits/gingin", "visitor",
			`{"arrival_date":"27/12/2022","arrival_time":"09:00","departure_time":"25:99"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, "invalid_visit", body["error"])
		assert.Len(t, body["fields"], 3)
	})

	t.Run("requires a token", func(t *testing.T) {
		_, router := newRouter(t)
		rr := do(t, router, http.MethodPost, "/visits/gingin", "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("configuration errors are masked", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().RegisterVisit(gomock.Any(), models.SiteKind("moonbase"), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConfiguration, "no rule set registered for site moonbase"))
		rr := do(t, router, http.MethodPost, "/visits/moonbase", "visitor",
			`{"arrival_date":"2022-12-23","arrival_time":"22:00","departure_date":"2022-12-23","departure_time":"22:30"}`)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "moonbase")
	})
}

func TestHandleRegisterTeam(t *testing.T) {
	svc, router := newRouter(t)
	teamID := id.TeamID(uuid.New())
	svc.EXPECT().RegisterTeam(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req visitService.TeamRequest) (*visitService.TeamResult, error) {
			require.Len(t, req.Members, 2)
			assert.Equal(t, "grace", req.Members[0].Username)
			assert.Equal(t, "Charles", req.Members[1].Attributes.FirstName)
			return &visitService.TeamResult{
				TeamID: &teamID,
				Visits: []visitService.Registered{
					{Visit: &models.Visit{TeamID: &teamID}},
					{Visit: &models.Visit{TeamID: &teamID}},
					{Visit: &models.Visit{TeamID: &teamID}},
				},
				NotificationFailures: 1,
			}, nil
		})

	rr := do(t, router, http.MethodPost, "/visits/ridgefield/team", "visitor", overnightBody+`,
		"members": [{"username": "grace"}, {"attributes": {"first_name": "Charles"}}]}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, teamID.String(), body["team_id"])
	assert.Len(t, body["visits"], 3)
	assert.EqualValues(t, 1, body["notification_failures"])
}

func TestRosterRoutes(t *testing.T) {
	t.Run("visitors are forbidden", func(t *testing.T) {
		_, router := newRouter(t)
		rr := do(t, router, http.MethodGet, "/manage/ridgefield/visits", "visitor", "")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("managers of another site are forbidden", func(t *testing.T) {
		_, router := newRouter(t)
		rr := do(t, router, http.MethodGet, "/manage/gingin/visits", "manager", "")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("current roster with emergency contacts", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().ListRoster(gomock.Any(), models.SiteRidgefield, true).Return([]visitService.RosterEntry{{
			Visit: &models.Visit{Site: models.SiteRidgefield},
			Profile: &vmodels.Profile{
				Visitor: &vmodels.Visitor{FirstName: "Ada", Phone: "0400 000 000"},
				Role:    &vmodels.Role{Name: "Contractor"},
				Contact: &vmodels.EmergencyContact{Name: "Grace", Phone: "0400 111 222"},
			},
		}}, nil)

		rr := do(t, router, http.MethodGet, "/manage/ridgefield/visits?current=true", "manager", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var out []map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
		require.Len(t, out, 1)
		assert.Equal(t, "Contractor", out[0]["role"])
		assert.Equal(t, "Grace", out[0]["emergency_contact"].(map[string]any)["name"])
	})

	t.Run("xlsx export", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().ListRoster(gomock.Any(), models.SiteRidgefield, false).Return(nil, nil)

		rr := do(t, router, http.MethodGet, "/manage/ridgefield/visits/export", "manager", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "ridgefield-visitors-")
		assert.Equal(t, "PK", rr.Body.String()[:2])
	})
}

func TestHandleSites(t *testing.T) {
	_, router := newRouter(t)
	rr := do(t, router, http.MethodGet, "/sites", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	assert.Len(t, out, len(models.Catalogue))
}
