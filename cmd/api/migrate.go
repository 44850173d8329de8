package main

import (
	"learnhub/internal/client"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := client.Migrate(a.db); err != nil {
				return err
			}

			a.log.Info("database migrated")
			return nil
		},
	}
}
