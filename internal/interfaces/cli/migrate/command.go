// Package migrate exposes the database migration tooling.
package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"serialhub/internal/shared/constants"

	"serialhub/internal/infrastructure/config"
	"serialhub/internal/infrastructure/database"
	"serialhub/internal/infrastructure/migration"
	"serialhub/internal/infrastructure/persistence/models"
	"serialhub/internal/shared/logger"
)

var (
	env      string
	name     string
	steps    int
	strategy string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations: run pending migrations, roll back, inspect status and create new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&strategy, "strategy", "s", "goose", "Migration strategy (goose, golang-migrate, auto)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)
	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		RunE:  runCreate,
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func initEnv() (string, logger.Interface, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return "", nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return "", nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	scriptsPath, err := filepath.Abs("./internal/infrastructure/migration/scripts")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get scripts path: %w", err)
	}
	return scriptsPath, log, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("running up migrations", "environment", env, "strategy", strategy)

	var s migration.Strategy
	switch strategy {
	case "goose":
		s = migration.NewGooseStrategy(scriptsPath, log)
	case "golang-migrate":
		s = migration.NewGolangMigrateStrategy(scriptsPath, log)
	case "auto":
		s = migration.NewAutoMigrateStrategy(log)
	default:
		return fmt.Errorf("unknown migration strategy: %s", strategy)
	}

	if err := s.Migrate(database.Get(),
		&models.ClientModel{},
		&models.SerialModel{},
		&models.UsageModel{},
		&models.AuditModel{},
	); err != nil {
		log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	if strategy != "goose" {
		return fmt.Errorf("down migration is only supported with the goose strategy")
	}

	log.Infow("running down migrations", "environment", env, "steps", steps)

	goose := migration.NewGooseStrategy(scriptsPath, log)
	if err := goose.MigrateDown(database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	if strategy != "goose" {
		return fmt.Errorf("status is only supported with the goose strategy")
	}

	goose := migration.NewGooseStrategy(scriptsPath, log)
	version, err := goose.GetVersion(database.Get())
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Environment:     %s\n", env)
	fmt.Printf("  Current Version: %d\n", version)

	return goose.Status(database.Get())
}

func runCreate(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}

	log.Infow("creating new migration", "name", name)

	goose := migration.NewGooseStrategy(scriptsPath, log)
	if err := goose.Create(name); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	fmt.Printf("migration %q created\n", name)
	return nil
}
