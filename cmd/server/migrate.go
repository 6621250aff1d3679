package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/yukikurage/levelup-todo-api/internal/config"
	"github.com/yukikurage/levelup-todo-api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			if err := database.Connect(cfg); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if err := database.Migrate(); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			log.Println("Migrations completed")
			return nil
		},
	}
}
