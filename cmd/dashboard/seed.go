package main

import (
	"fmt"

	"github.com/panjilaras/Dashboard-PI/internal/database"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample users, categories and tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, loggerService, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			ctx := cmd.Context()

			if migrate {
				if err := database.Migrate(ctx, &log, cfg); err != nil {
					return err
				}
			}

			db, err := database.New(cfg, &log, loggerService)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			return database.Seed(ctx, db, &log)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations before seeding")
	return cmd
}
