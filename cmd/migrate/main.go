package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobkaart/internal/config"
	"jobkaart/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var source string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or revert JobKaart database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&source, "source", "file://db/migrations", "Migration source URL")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrate(source, func(m *migrate.Migrate, log *zap.Logger) error {
					if err := ignoreNoChange(m.Up()); err != nil {
						return fmt.Errorf("migration up failed: %w", err)
					}
					log.Info("migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrate(source, func(m *migrate.Migrate, log *zap.Logger) error {
					if err := ignoreNoChange(m.Down()); err != nil {
						return fmt.Errorf("migration down failed: %w", err)
					}
					log.Info("migrations reverted")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "steps N",
			Short:   "Apply N migrations, or revert them when N is negative",
			Example: "  migrate steps 1\n  migrate steps -- -1",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid steps argument %q: %w", args[0], err)
				}
				return withMigrate(source, func(m *migrate.Migrate, log *zap.Logger) error {
					if err := ignoreNoChange(m.Steps(n)); err != nil {
						return fmt.Errorf("migration steps failed: %w", err)
					}
					log.Info("migration steps applied", zap.Int("steps", n))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrate(source, func(m *migrate.Migrate, _ *zap.Logger) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						fmt.Fprintln(cmd.OutOrStdout(), "version: none")
						return nil
					}
					if err != nil {
						return fmt.Errorf("failed to get version: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %v\n", version, dirty)
					return nil
				})
			},
		},
	)
	return root
}

func withMigrate(source string, fn func(m *migrate.Migrate, log *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(&cfg.Log).Named("migrate")
	defer func() { _ = log.Sync() }()

	m, err := migrate.New(source, cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	return fn(m, log)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
