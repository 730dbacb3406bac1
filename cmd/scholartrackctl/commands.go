package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/database"
	"github.com/noah-isme/scholartrack-api/internal/repository"
	"github.com/noah-isme/scholartrack-api/internal/service"
)

// openDB is swapped in tests.
var openDB = func(dsn string) (*gorm.DB, error) {
	return database.ConnectPostgres(dsn, database.PoolConfig{MaxOpenConns: 2})
}

func connect(v *viper.Viper) (*gorm.DB, error) {
	dsn := v.GetString("database_url")
	if dsn == "" {
		return nil, fmt.Errorf("database url is required")
	}
	return openDB(dsn)
}

func migrateCmd(v *viper.Viper, logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect(v)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			logger.Info().Int("models", len(database.Models())).Msg("schema migrated")
			return nil
		},
	}
}

func seedCmd(v *viper.Viper, logger zerolog.Logger) *cobra.Command {
	var opts service.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap administrator and sample students",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect(v)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			seeder := service.NewSeedService(repository.NewUserRepository(db), logger)
			result, err := seeder.Seed(cmd.Context(), opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin created: %t, students created: %d\n", result.AdminCreated, result.StudentsCreated)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "admin@example.edu", "administrator email")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", "", "administrator password")
	cmd.Flags().IntVar(&opts.Students, "students", 0, "number of sample students to create")
	cmd.Flags().StringVar(&opts.Domain, "domain", "example.edu", "email domain for sample students")
	_ = cmd.MarkFlagRequired("admin-password")

	return cmd
}
