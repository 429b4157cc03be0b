package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"visitreg/internal/auth/handler/mocks"
	authService "visitreg/internal/auth/service"
	dErrors "visitreg/pkg/domain-errors"
)

func newRouter(t *testing.T) (*mocks.MockService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return svc, r
}

func doLogin(t *testing.T, router http.Handler, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	var out map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return rr.Code, out
}

func TestHandleLogin(t *testing.T) {
	t.Run("200 with token", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Login(gomock.Any(), "jdoe", "correct horse").Return(&authService.LoginResult{
			AccessToken: "signed.jwt",
			TokenType:   "Bearer",
			ExpiresAt:   time.Date(2022, 12, 27, 10, 0, 0, 0, time.UTC),
		}, nil)

		status, body := doLogin(t, router, `{"username":"jdoe","password":"correct horse"}`)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "signed.jwt", body["access_token"])
	})

	t.Run("401 on bad credentials", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Login(gomock.Any(), "jdoe", "nope-nope").
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "username or password is wrong"))

		status, body := doLogin(t, router, `{"username":"jdoe","password":"nope-nope"}`)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "unauthorized", body["error"])
	})

	t.Run("400 on malformed body", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		status, body := doLogin(t, router, `{bad-json`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "bad_request", body["error"])
	})

	t.Run("400 on missing password", func(t *testing.T) {
		_, router := newRouter(t)
		status, _ := doLogin(t, router, `{"username":"jdoe"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}
