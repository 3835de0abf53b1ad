package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/catalog"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
	"github.com/odyssey-erp/odyssey-auth/internal/testing/memstore"
	"github.com/odyssey-erp/odyssey-auth/internal/token"
	_ "github.com/odyssey-erp/odyssey-auth/testing"
)

type catalogFixture struct {
	store  *memstore.Store
	codec  *token.Codec
	router http.Handler
}

func newCatalogFixture(t *testing.T, seed bool) *catalogFixture {
	t.Helper()
	store, err := memstore.Seeded()
	require.NoError(t, err)
	codec, err := token.NewCodec("catalog-secret", "HS256")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := catalog.NewRedisRepository(client)
	if seed {
		require.NoError(t, repo.SeedIfEmpty(context.Background()))
	}

	mw := rbac.Middleware[*auth.User]{Gate: rbac.NewGate[*auth.User](codec, store, nil, nil)}
	r := chi.NewRouter()
	r.Route("/api/v1/mock", catalog.NewHandler(nil, repo, mw).MountRoutes)
	return &catalogFixture{store: store, codec: codec, router: r}
}

func (f *catalogFixture) tokenFor(t *testing.T, roleName string) string {
	t.Helper()
	ctx := context.Background()
	role, err := f.store.FindRoleByName(ctx, roleName)
	require.NoError(t, err)
	id := uuid.New()
	email := roleName + "@example.com"
	require.NoError(t, f.store.Create(ctx, &auth.User{ID: id, Email: email, IsActive: true, RoleID: role.ID}))
	raw, err := f.codec.Issue(id.String(), email, time.Hour)
	require.NoError(t, err)
	return raw
}

func (f *catalogFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestGetProducts(t *testing.T) {
	f := newCatalogFixture(t, true)
	guest := f.tokenFor(t, shared.RoleGuest)

	rec := f.do(http.MethodGet, "/api/v1/mock/get_product", guest, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 5)

	rec = f.do(http.MethodGet, "/api/v1/mock/get_product", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProductsEmptyCatalogue(t *testing.T) {
	f := newCatalogFixture(t, false)

	rec := f.do(http.MethodGet, "/api/v1/mock/get_product", f.tokenFor(t, shared.RoleGuest), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePostRequiresPermission(t *testing.T) {
	f := newCatalogFixture(t, true)
	user := f.tokenFor(t, shared.RoleUser)
	moderator := f.tokenFor(t, "moderator")

	rec := f.do(http.MethodDelete, "/api/v1/mock/delete_post?id_post=1", user, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodDelete, "/api/v1/mock/delete_post?id_post=1", moderator, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Message     string       `json:"message"`
		DeletedPost catalog.Post `json:"deleted_post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "First Post", body.DeletedPost.Title)

	rec = f.do(http.MethodDelete, "/api/v1/mock/delete_post?id_post=1", moderator, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodDelete, "/api/v1/mock/delete_post?id_post=abc", moderator, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePost(t *testing.T) {
	f := newCatalogFixture(t, true)
	guest := f.tokenFor(t, shared.RoleGuest)
	user := f.tokenFor(t, shared.RoleUser)
	body := `{"title":"Edited","content":"Rewritten","author":"user1"}`

	rec := f.do(http.MethodPatch, "/api/v1/mock/update_post?id_post=2", guest, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPatch, "/api/v1/mock/update_post?id_post=2", user, body)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		EditedPost catalog.Post `json:"edited_post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, catalog.Post{ID: 2, Title: "Edited", Content: "Rewritten", Author: "user1"}, got.EditedPost)

	rec = f.do(http.MethodPatch, "/api/v1/mock/update_post?id_post=42", user, body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPatch, "/api/v1/mock/update_post?id_post=2", user, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
