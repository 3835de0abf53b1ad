package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-auth/internal/app"
	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/catalog"
	"github.com/odyssey-erp/odyssey-auth/internal/observability"
	"github.com/odyssey-erp/odyssey-auth/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-auth/internal/platform/db"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/token"
	"github.com/odyssey-erp/odyssey-auth/jobs"
)

func newServeCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), state.cfg, state.logger)
		},
	}
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		logger.Error("token codec", slog.Any("error", err))
		return err
	}

	pool, err := openDatabase(ctx, cfg)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		return err
	}
	defer pool.Close()

	if cfg.SeedOnStart {
		if err := migrateAndSeed(ctx, pool, logger); err != nil {
			return err
		}
	}

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	catalogRepo := catalog.NewRedisRepository(redisClient)
	if err := catalogRepo.SeedIfEmpty(ctx); err != nil {
		logger.Warn("seed catalogue", slog.Any("error", err))
	}

	redisOpts := cfg.Asynq()
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	handler, err := app.Build(app.Dependencies{
		Logger:    logger,
		Config:    cfg,
		Users:     auth.NewRepository(pool),
		Roles:     rbac.NewRoleRepository(pool),
		Catalog:   catalogRepo,
		Tokens:    codec,
		Welcome:   jobClient,
		Inspector: inspector,
		Metrics:   observability.NewMetrics(),
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      handler,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("serve", slog.Any("error", err))
		return err
	}
	return nil
}

func openDatabase(ctx context.Context, cfg *app.Config) (*pgxpool.Pool, error) {
	return db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
}

func migrateAndSeed(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	applied, err := db.Migrate(ctx, pool)
	if err != nil {
		logger.Error("migrate", slog.Any("error", err))
		return err
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", slog.Any("files", applied))
	}
	seed, err := rbac.DefaultSeed()
	if err != nil {
		return err
	}
	if err := rbac.NewSeeder(pool, seed, logger).Apply(ctx); err != nil {
		logger.Error("seed roles", slog.Any("error", err))
		return err
	}
	return nil
}
