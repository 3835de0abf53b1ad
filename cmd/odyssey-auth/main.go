package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-auth/internal/app"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	state := &cliState{}

	root := &cobra.Command{
		Use:           "odyssey-auth",
		Short:         "Authentication and role-based authorization service",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			cfg, err := app.LoadConfig(files...)
			if err != nil {
				slog.Default().Error("load config", slog.Any("error", err))
				return err
			}
			state.cfg = cfg
			state.logger = app.NewLogger(cfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file loaded before reading the environment (default .env)")

	root.AddCommand(
		newServeCmd(state),
		newMigrateCmd(state),
		newSeedCmd(state),
		newJobsCmd(state),
	)
	return root
}

type cliState struct {
	cfg    *app.Config
	logger *slog.Logger
}
