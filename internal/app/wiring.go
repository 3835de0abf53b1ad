package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/catalog"
	"github.com/odyssey-erp/odyssey-auth/internal/observability"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/roles"
	"github.com/odyssey-erp/odyssey-auth/internal/token"
	"github.com/odyssey-erp/odyssey-auth/internal/users"
	"github.com/odyssey-erp/odyssey-auth/jobs"
)

// Dependencies are the stores and adapters the HTTP surface is built from.
type Dependencies struct {
	Logger    *slog.Logger
	Config    *Config
	Users     auth.Repository
	Roles     rbac.RoleRepository
	Catalog   catalog.Repository
	Tokens    *token.Codec
	Welcome   auth.WelcomeQueue
	Inspector *asynq.Inspector
	Metrics   *observability.Metrics
}

// Build wires services, the authorization gate and handlers into a router.
func Build(d Dependencies) (http.Handler, error) {
	if d.Config == nil {
		return nil, errors.New("app: config is required")
	}
	if d.Users == nil || d.Roles == nil || d.Tokens == nil {
		return nil, errors.New("app: identity store, role store and token codec are required")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resolver := rbac.NewResolver(d.Roles)
	var welcome auth.WelcomeQueue
	if d.Welcome != nil {
		welcome = meteredWelcome{next: d.Welcome, metrics: d.Metrics}
	}
	authService := auth.NewService(auth.ServiceParams{
		Repo:     d.Users,
		Roles:    resolver,
		Hasher:   auth.NewHasher(d.Config.BcryptCost),
		Tokens:   d.Tokens,
		TokenTTL: d.Config.JWTTTL,
		Welcome:  welcome,
		Logger:   logger,
	})

	gate := rbac.NewGate[*auth.User](d.Tokens, authService, d.Metrics, logger)
	mw := rbac.Middleware[*auth.User]{Gate: gate, Logger: logger}

	params := RouterParams{
		Logger:       logger,
		Config:       d.Config,
		AuthHandler:  auth.NewHandler(logger, authService, mw),
		UsersHandler: users.NewHandler(logger, users.NewService(d.Users, resolver), mw),
		RolesHandler: roles.NewHandler(logger, roles.NewService(resolver), mw),
		JobHandler:   jobs.NewHandler(d.Inspector, logger),
		Metrics:      d.Metrics,
	}
	if d.Catalog != nil {
		params.CatalogHandler = catalog.NewHandler(logger, d.Catalog, mw)
	}
	return NewRouter(params), nil
}

type meteredWelcome struct {
	next    auth.WelcomeQueue
	metrics *observability.Metrics
}

func (m meteredWelcome) EnqueueWelcome(ctx context.Context, userID uuid.UUID, email, firstName string) error {
	err := m.next.EnqueueWelcome(ctx, userID, email, firstName)
	m.metrics.ObserveWelcomeEnqueue(err)
	return err
}
