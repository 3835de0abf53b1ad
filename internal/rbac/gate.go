package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
	"github.com/odyssey-erp/odyssey-auth/internal/token"
)

// TokenDecoder verifies a raw session token.
type TokenDecoder interface {
	Decode(raw string) (*token.Claims, error)
}

// PrincipalFinder loads a principal with its role and permissions eagerly.
// Implementations return shared.ErrNotFound when no principal matches.
type PrincipalFinder[P Principal] interface {
	FindByIDAndEmail(ctx context.Context, id uuid.UUID, email string) (P, error)
}

// DecisionRecorder receives the outcome of every gate evaluation.
type DecisionRecorder interface {
	ObserveGateDecision(permission, outcome string)
}

// Gate outcomes reported to the DecisionRecorder.
const (
	OutcomeAllowed         = "allowed"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeError           = "error"
)

// Gate authenticates a token and enforces a required permission code.
// It holds no mutable state; every call re-reads the principal.
type Gate[P Principal] struct {
	tokens   TokenDecoder
	finder   PrincipalFinder[P]
	recorder DecisionRecorder
	logger   *slog.Logger
}

// NewGate constructs a Gate. recorder and logger may be nil.
func NewGate[P Principal](tokens TokenDecoder, finder PrincipalFinder[P], recorder DecisionRecorder, logger *slog.Logger) *Gate[P] {
	return &Gate[P]{tokens: tokens, finder: finder, recorder: recorder, logger: logger}
}

// Authorize resolves the principal behind rawToken and checks that its role
// grants required. An empty required code admits any active principal.
func (g *Gate[P]) Authorize(ctx context.Context, rawToken, required string) (P, error) {
	principal, err := g.authorize(ctx, rawToken, required)
	g.record(required, err)
	return principal, err
}

func (g *Gate[P]) authorize(ctx context.Context, rawToken, required string) (P, error) {
	var zero P

	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return zero, fmt.Errorf("%w: token missing", shared.ErrUnauthenticated)
	}

	claims, err := g.tokens.Decode(rawToken)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return zero, fmt.Errorf("%w: token expired", shared.ErrUnauthenticated)
		}
		return zero, fmt.Errorf("%w: token invalid", shared.ErrUnauthenticated)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return zero, fmt.Errorf("%w: token invalid", shared.ErrUnauthenticated)
	}

	principal, err := g.finder.FindByIDAndEmail(ctx, id, claims.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return zero, fmt.Errorf("%w: principal not found", shared.ErrUnauthenticated)
		}
		return zero, fmt.Errorf("rbac: resolve principal: %w", err)
	}
	if !principal.Enabled() {
		return zero, fmt.Errorf("%w: account is inactive", shared.ErrUnauthenticated)
	}

	if required != "" && !principal.HasPermission(required) {
		return zero, fmt.Errorf("%w: missing permission %s", shared.ErrForbidden, required)
	}
	return principal, nil
}

func (g *Gate[P]) record(required string, err error) {
	outcome := OutcomeAllowed
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrUnauthenticated):
		outcome = OutcomeUnauthenticated
	case errors.Is(err, shared.ErrForbidden):
		outcome = OutcomeForbidden
	default:
		outcome = OutcomeError
		if g.logger != nil {
			g.logger.Error("rbac gate", slog.String("permission", required), slog.Any("error", err))
		}
	}
	if g.recorder != nil {
		g.recorder.ObserveGateDecision(required, outcome)
	}
}

// Guard wraps op so that it only runs for principals holding required.
// The resolved principal is passed to op; op's result and error pass through unchanged.
func Guard[P Principal, T any](gate *Gate[P], required string, op func(ctx context.Context, principal P) (T, error)) func(ctx context.Context, rawToken string) (T, error) {
	return func(ctx context.Context, rawToken string) (T, error) {
		principal, err := gate.Authorize(ctx, rawToken, required)
		if err != nil {
			var zero T
			return zero, err
		}
		return op(ctx, principal)
	}
}
