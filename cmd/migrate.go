package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bcr/rental-system/internal/infrastructure/config"
	"github.com/bcr/rental-system/internal/infrastructure/db/mongo"
	"github.com/bcr/rental-system/internal/infrastructure/db/postgres"
	"github.com/bcr/rental-system/pkg/logger"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Prepare the data stores",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create indexes, seed roles and apply SQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}
		log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: serviceName})

		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(ctx) }()

		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if err := mongo.NewRoleRepository(db).Seed(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo indexes and roles ready")

		if cfg.Postgres.DSN == "" {
			return nil
		}
		if err := postgres.MigrateUp(cfg.Postgres.DSN); err != nil {
			return err
		}
		log.Info().Msg("postgres migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
}
