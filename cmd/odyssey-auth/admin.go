package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-auth/cmd/odyssey-auth/cli"
	"github.com/odyssey-erp/odyssey-auth/internal/platform/db"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
)

func newMigrateCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := openDatabase(cmd.Context(), state.cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			applied, err := db.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			state.logger.Info("migrations applied", slog.Int("count", len(applied)), slog.Any("files", applied))
			return nil
		},
	}
}

func newSeedCmd(state *cliState) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert roles and permissions from the seed catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loadSeed(file)
			if err != nil {
				return err
			}
			pool, err := openDatabase(cmd.Context(), state.cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return rbac.NewSeeder(pool, seed, state.logger).Apply(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML seed file (default: built-in catalogue)")
	return cmd
}

func loadSeed(path string) (*rbac.SeedFile, error) {
	if path == "" {
		return rbac.DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return rbac.ParseSeed(data)
}

func newJobsCmd(state *cliState) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print default queue counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cli.NewJobsCLI(state.cfg.Asynq())
			if err != nil {
				return err
			}
			defer c.Close()
			stats, err := c.InspectQueue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
				stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
			return nil
		},
	}

	var userID, email, firstName string
	welcomeCmd := &cobra.Command{
		Use:   "welcome",
		Short: "Enqueue a welcome email for an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user-id: %w", err)
			}
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			c, err := cli.NewJobsCLI(state.cfg.Asynq())
			if err != nil {
				return err
			}
			defer c.Close()
			info, err := c.TriggerWelcome(cmd.Context(), id, email, firstName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s\n", info.Type, info.ID)
			return nil
		},
	}
	welcomeCmd.Flags().StringVar(&userID, "user-id", "", "account id")
	welcomeCmd.Flags().StringVar(&email, "email", "", "recipient address")
	welcomeCmd.Flags().StringVar(&firstName, "first-name", "", "greeting name")

	jobsCmd.AddCommand(statsCmd, welcomeCmd)
	return jobsCmd
}
