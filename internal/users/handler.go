package users

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// Handler manages admin user permission endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware[*auth.User]
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware[*auth.User]) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(shared.PermViewUserPermissions)).Get("/permissions", h.userPermissions)
	r.With(h.rbac.Require(shared.PermUpdateUserPermissions)).Put("/update/permissions", h.updatePermissions)
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) userPermissions(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.UserPermissions(r.Context(), r.URL.Query().Get("user_email"))
	if err != nil {
		h.fail(w, "user permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) updatePermissions(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}
	user, err := h.service.AssignRole(r.Context(), r.URL.Query().Get("user_email"), req.Role)
	if err != nil {
		h.fail(w, "update permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil && httpx.StatusOf(err) == http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
