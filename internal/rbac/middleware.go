package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-auth/internal/platform/httpx"
)

// TokenHeader carries the session token on protected requests.
const TokenHeader = "Jwt-Token"

// Middleware wires the authorization gate into HTTP handlers.
type Middleware[P Principal] struct {
	Gate   *Gate[P]
	Logger *slog.Logger
}

// Require ensures the caller presents a valid session token whose role grants perm.
// An empty perm admits any authenticated, active principal.
func (m Middleware[P]) Require(perm string) func(http.Handler) http.Handler {
	perm = normalizePermission(perm)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := m.Gate.Authorize(r.Context(), TokenFromRequest(r), perm)
			if err != nil {
				if m.Logger != nil && httpx.StatusOf(err) == http.StatusInternalServerError {
					m.Logger.Error("rbac require", slog.String("permission", perm), slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// TokenFromRequest extracts the raw token from the Jwt-Token header,
// falling back to an Authorization bearer credential.
func TokenFromRequest(r *http.Request) string {
	if raw := strings.TrimSpace(r.Header.Get(TokenHeader)); raw != "" {
		return raw
	}
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

func normalizePermission(perm string) string {
	return strings.TrimSpace(strings.ToLower(perm))
}

type principalKey struct{}

// WithPrincipal stores the authorized principal in ctx.
func WithPrincipal[P Principal](ctx context.Context, principal P) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFrom returns the principal stored by Require.
func PrincipalFrom[P Principal](ctx context.Context) (P, bool) {
	principal, ok := ctx.Value(principalKey{}).(P)
	return principal, ok
}
