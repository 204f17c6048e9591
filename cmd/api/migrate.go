package main

import (
	"fmt"

	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	var history bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			defer db.Close()

			if err := migrations.AutoMigrate(db, log.Logger); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if !history {
				return nil
			}

			records, err := migrations.GetMigrationHistory(db)
			if err != nil {
				return err
			}
			for _, r := range records {
				log.Info("Applied migration", zap.Int("version", r.Version), zap.String("name", r.Name), zap.Time("applied_at", r.AppliedAt))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&history, "history", false, "print applied migrations")
	return cmd
}
