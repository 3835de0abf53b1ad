package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-auth/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware[*User]
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware[*User]) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      rbac,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(""))
		r.Patch("/update", h.handleUpdate)
		r.Post("/logout", h.handleLogout)
	})
}

type registerRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Patronymic      string `json:"patronymic" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type registerResponse struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type updateRequest struct {
	FirstName       *string `json:"first_name" validate:"omitempty,max=100"`
	LastName        *string `json:"last_name" validate:"omitempty,max=100"`
	Patronymic      *string `json:"patronymic" validate:"omitempty,max=100"`
	CurrentPassword *string `json:"current_password"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`
}

type profileResponse struct {
	Message    string `json:"message"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Patronymic string `json:"patronymic"`
	Email      string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.service.Register(r.Context(), RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Patronymic:      req.Patronymic,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		h.fail(w, "register", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, registerResponse{Message: "Registration successful", ID: user.ID, Email: user.Email})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	raw, _, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, "login", err)
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{Message: "Logged in", Token: raw})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFrom[*User](r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	var req updateRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), principal, UpdateProfileInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Patronymic:      req.Patronymic,
		CurrentPassword: req.CurrentPassword,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		h.fail(w, "update profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profileResponse{
		Message:    "Profile updated",
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Patronymic: user.Patronymic,
		Email:      user.Email,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFrom[*User](r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	if err := h.service.Logout(r.Context(), principal); err != nil {
		h.fail(w, "logout", err)
		return
	}
	httpx.JSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(w, r, target); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusOf(err) == http.StatusInternalServerError && h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
