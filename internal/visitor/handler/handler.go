package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"visitreg/internal/platform/middleware"
	"visitreg/internal/visitor/models"
	visitorService "visitreg/internal/visitor/service"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/platform/httputil"
)

type Service interface {
	RegisterAccount(ctx context.Context, req visitorService.RegisterRequest) (*models.Profile, error)
	ProfileByIdentity(ctx context.Context, identityID id.IdentityID) (*models.Profile, error)
	UpdateDetails(ctx context.Context, identityID id.IdentityID, u visitorService.DetailsUpdate) (*models.Profile, error)
	ReplaceEmergencyContact(ctx context.Context, identityID id.IdentityID, d visitorService.ContactDetails) (*models.Profile, error)
	Delete(ctx context.Context, identityID id.IdentityID) error
	Roles(ctx context.Context) ([]*models.Role, error)
}

// Handler serves self-registration and the /me profile endpoints.
type Handler struct {
	visitors     Service
	jwtValidator middleware.JWTValidator
	logger       *slog.Logger
}

func New(visitors Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{visitors: visitors, jwtValidator: jwtValidator, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Get("/roles", h.handleRoles)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/me", h.handleMe)
		r.Patch("/me", h.handleUpdate)
		r.Delete("/me", h.handleDelete)
		r.Put("/me/emergency-contact", h.handleReplaceContact)
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	models.VisitorAttributes
}

type contactResponse struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type profileResponse struct {
	VisitorID        id.VisitorID     `json:"visitor_id"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	Role             string           `json:"role"`
	EmergencyContact *contactResponse `json:"emergency_contact,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func toProfileResponse(p *models.Profile) profileResponse {
	out := profileResponse{
		VisitorID: p.Visitor.ID,
		FirstName: p.Visitor.FirstName,
		LastName:  p.Visitor.LastName,
		Email:     p.Visitor.Email,
		Phone:     p.Visitor.Phone,
		CreatedAt: p.Visitor.CreatedAt,
	}
	if p.Role != nil {
		out.Role = p.Role.Name
	}
	if p.Contact != nil {
		out.EmergencyContact = &contactResponse{
			Name:         p.Contact.Name,
			Phone:        p.Contact.Phone,
			Relationship: p.Contact.Relationship,
		}
	}
	return out
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid register request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	profile, err := h.visitors.RegisterAccount(ctx, visitorService.RegisterRequest{
		Username:   req.Username,
		Password:   req.Password,
		Attributes: req.VisitorAttributes,
	})
	if err != nil {
		h.fail(ctx, "registration failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toProfileResponse(profile))
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.visitors.Roles(r.Context())
	if err != nil {
		h.fail(r.Context(), "failed to list roles", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, roles)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.visitors.ProfileByIdentity(ctx, middleware.GetIdentityID(ctx))
	if err != nil {
		h.fail(ctx, "failed to load profile", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req visitorService.DetailsUpdate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	profile, err := h.visitors.UpdateDetails(ctx, middleware.GetIdentityID(ctx), req)
	if err != nil {
		h.fail(ctx, "failed to update profile", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) handleReplaceContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req visitorService.ContactDetails
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	profile, err := h.visitors.ReplaceEmergencyContact(ctx, middleware.GetIdentityID(ctx), req)
	if err != nil {
		h.fail(ctx, "failed to replace emergency contact", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.visitors.Delete(ctx, middleware.GetIdentityID(ctx)); err != nil {
		h.fail(ctx, "failed to delete visitor", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail logs at error level only for failures the caller could not fix.
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
