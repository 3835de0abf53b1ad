package catalog

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// Handler exposes the catalogue behind permission checks.
type Handler struct {
	logger    *slog.Logger
	repo      Repository
	rbac      rbac.Middleware[*auth.User]
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, repo Repository, rbac rbac.Middleware[*auth.User]) *Handler {
	return &Handler{logger: logger, repo: repo, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers catalogue routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(shared.PermListProduct)).Get("/get_product", h.listProducts)
	r.With(h.rbac.Require(shared.PermDeletePost)).Delete("/delete_post", h.deletePost)
	r.With(h.rbac.Require(shared.PermUpdatePost)).Patch("/update_post", h.updatePost)
}

type deletePostResponse struct {
	Message     string `json:"message"`
	DeletedPost Post   `json:"deleted_post"`
}

type updatePostResponse struct {
	Message    string `json:"message"`
	EditedPost Post   `json:"edited_post"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListProducts(r.Context())
	if err != nil {
		h.fail(w, "list products", err)
		return
	}
	if len(products) == 0 {
		httpx.RespondError(w, fmt.Errorf("%w: no products", shared.ErrNotFound))
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	post, err := h.repo.DeletePost(r.Context(), id)
	if err != nil {
		h.fail(w, "delete post", err)
		return
	}
	httpx.JSON(w, http.StatusOK, deletePostResponse{Message: "Post deleted", DeletedPost: post})
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in PostUpdate
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}
	post, err := h.repo.UpdatePost(r.Context(), id, in)
	if err != nil {
		h.fail(w, "update post", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updatePostResponse{Message: "Post updated", EditedPost: post})
}

func postID(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("id_post")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id_post must be a positive integer", shared.ErrValidation)
	}
	return id, nil
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil && httpx.StatusOf(err) == http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
