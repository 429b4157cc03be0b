package handler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"visitreg/internal/platform/middleware"
	"visitreg/internal/visit/export"
	"visitreg/internal/visit/models"
	visitService "visitreg/internal/visit/service"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/platform/httputil"
	"visitreg/pkg/requestcontext"
)

type Service interface {
	RegisterVisit(ctx context.Context, site models.SiteKind, fields models.VisitFields, leader visitService.Leader) (*visitService.Registered, error)
	RegisterTeam(ctx context.Context, req visitService.TeamRequest) (*visitService.TeamResult, error)
	ListRoster(ctx context.Context, site models.SiteKind, current bool) ([]visitService.RosterEntry, error)
	History(ctx context.Context, identityID id.IdentityID) ([]*models.Visit, error)
}

// Handler serves visit registration for visitors and rosters for site
// managers.
type Handler struct {
	visits       Service
	jwtValidator middleware.JWTValidator
	loc          *time.Location
	logger       *slog.Logger
}

func New(visits Service, jwtValidator middleware.JWTValidator, loc *time.Location, logger *slog.Logger) *Handler {
	return &Handler{visits: visits, jwtValidator: jwtValidator, loc: loc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/sites", h.handleSites)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/visits", h.handleHistory)
		r.Post("/visits/{site}", h.handleRegisterVisit)
		r.Post("/visits/{site}/team", h.handleRegisterTeam)
	})

	r.Route("/manage/{site}", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Use(middleware.RequireGroup(func(r *http.Request) string {
			return siteParam(r).ManagerGroup()
		}, h.logger))
		r.Get("/visits", h.handleRoster)
		r.Get("/visits/export", h.handleExport)
	})
}

func siteParam(r *http.Request) models.SiteKind {
	return models.NormalizeSiteKind(chi.URLParam(r, "site"))
}

func leaderFrom(ctx context.Context) visitService.Leader {
	return visitService.Leader{
		IdentityID: middleware.GetIdentityID(ctx),
		Username:   middleware.GetUsername(ctx),
		Staff:      middleware.IsStaff(ctx),
	}
}

func (h *Handler) handleSites(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, models.Catalogue)
}

func (h *Handler) handleRegisterVisit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req visitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	fields, err := req.toFields()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reg, err := h.visits.RegisterVisit(ctx, siteParam(r), fields, leaderFrom(ctx))
	if err != nil {
		h.fail(ctx, "visit registration rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toVisitResponse(reg))
}

func (h *Handler) handleRegisterTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req teamRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	fields, err := req.toFields()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.visits.RegisterTeam(ctx, visitService.TeamRequest{
		Site:    siteParam(r),
		Fields:  fields,
		Members: req.Members,
		Leader:  leaderFrom(ctx),
	})
	if err != nil {
		h.fail(ctx, "team registration rejected", err)
		httputil.WriteError(w, err)
		return
	}

	resp := teamResponse{
		TeamID:               result.TeamID,
		Visits:               make([]visitResponse, len(result.Visits)),
		NotificationFailures: result.NotificationFailures,
	}
	for i := range result.Visits {
		resp.Visits[i] = toVisitResponse(&result.Visits[i])
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visits, err := h.visits.History(ctx, middleware.GetIdentityID(ctx))
	if err != nil {
		h.fail(ctx, "failed to list visit history", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]visitResponse, len(visits))
	for i, v := range visits {
		out[i] = toVisitResponse(&visitService.Registered{Visit: v})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRoster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current := r.URL.Query().Get("current") == "true"
	roster, err := h.visits.ListRoster(ctx, siteParam(r), current)
	if err != nil {
		h.fail(ctx, "failed to list roster", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]rosterResponse, len(roster))
	for i, e := range roster {
		out[i] = toRosterResponse(e)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	site := siteParam(r)
	roster, err := h.visits.ListRoster(ctx, site, r.URL.Query().Get("current") == "true")
	if err != nil {
		h.fail(ctx, "failed to list roster", err)
		httputil.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRoster(&buf, site, roster, h.loc); err != nil {
		h.fail(ctx, "failed to export roster", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to export roster"))
		return
	}
	filename := fmt.Sprintf("%s-visitors-%s.xlsx", site, requestcontext.Now(ctx).In(h.loc).Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) fail(ctx context.Context, msg string, err error) {
	de, ok := dErrors.As(err)
	if ok && dErrors.ToHTTPStatus(de.Code) < http.StatusInternalServerError {
		h.logger.InfoContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"code", string(de.Code),
		)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}
