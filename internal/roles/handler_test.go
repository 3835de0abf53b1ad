package roles_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/roles"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
	"github.com/odyssey-erp/odyssey-auth/internal/testing/memstore"
	"github.com/odyssey-erp/odyssey-auth/internal/token"
	_ "github.com/odyssey-erp/odyssey-auth/testing"
)

func TestListRoles(t *testing.T) {
	ctx := context.Background()
	store, err := memstore.Seeded()
	require.NoError(t, err)
	codec, err := token.NewCodec("roles-secret", "HS384")
	require.NoError(t, err)

	tokenFor := func(roleName string) string {
		role, err := store.FindRoleByName(ctx, roleName)
		require.NoError(t, err)
		id := uuid.New()
		email := roleName + "@example.com"
		require.NoError(t, store.Create(ctx, &auth.User{ID: id, Email: email, IsActive: true, RoleID: role.ID}))
		raw, err := codec.Issue(id.String(), email, time.Hour)
		require.NoError(t, err)
		return raw
	}

	mw := rbac.Middleware[*auth.User]{Gate: rbac.NewGate[*auth.User](codec, store, nil, nil)}
	r := chi.NewRouter()
	r.Route("/api/v1/admin", roles.NewHandler(nil, roles.NewService(store), mw).MountRoutes)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/roles", nil)
	req.Header.Set(rbac.TokenHeader, tokenFor(shared.RoleAdmin))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []roles.Role
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	names := make([]string, 0, len(got))
	for _, role := range got {
		names = append(names, role.Name)
	}
	assert.Equal(t, []string{"admin", "guest", "moderator", "user"}, names)
	assert.Equal(t, []string{shared.PermListProduct}, got[1].Permissions)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/roles", nil)
	req.Header.Set(rbac.TokenHeader, tokenFor("moderator"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
