package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"visitreg/internal/platform/middleware"
	"visitreg/internal/sitecontact/models"
	"visitreg/internal/sitecontact/service"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/platform/httputil"
)

type Service interface {
	List(ctx context.Context, site string) ([]*models.SiteContact, error)
	Create(ctx context.Context, actor id.IdentityID, req service.CreateRequest) (*models.SiteContact, error)
	Delete(ctx context.Context, contactID id.SiteContactID) error
}

// Handler serves the site emergency contact directory. Any signed-in user
// may read it; staff maintain it.
type Handler struct {
	contacts     Service
	jwtValidator middleware.JWTValidator
	logger       *slog.Logger
}

func New(contacts Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{contacts: contacts, jwtValidator: jwtValidator, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/site-contacts", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/", h.handleList)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(h.logger))
			r.Post("/", h.handleCreate)
			r.Delete("/{contactID}", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contacts, err := h.contacts.List(ctx, r.URL.Query().Get("site"))
	if err != nil {
		h.fail(ctx, "failed to list site contacts", err)
		httputil.WriteError(w, err)
		return
	}
	if contacts == nil {
		contacts = []*models.SiteContact{}
	}
	httputil.WriteJSON(w, http.StatusOK, contacts)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req service.CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	contact, err := h.contacts.Create(ctx, middleware.GetIdentityID(ctx), req)
	if err != nil {
		h.fail(ctx, "failed to create site contact", err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "site contact created",
		"site", string(contact.Site),
		"username", middleware.GetUsername(ctx),
		"request_id", middleware.GetRequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusCreated, contact)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, err := id.ParseSiteContactID(chi.URLParam(r, "contactID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.contacts.Delete(ctx, contactID); err != nil {
		h.fail(ctx, "failed to delete site contact", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
