package cmd

import (
	"context"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/internal/iodb"
	"github.com/gnames/gnclade/internal/ioschema"
	"github.com/spf13/cobra"
)

// getMigrateCmd returns the migrate command.
func getMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate PostgreSQL schema to the latest version",
		Long: `Updates datasets and taxa tables with GORM AutoMigrate. New
columns and indexes are added, existing data is preserved.

Use this command after updating gnclade to get schema changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runMigrate()
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
}

func runMigrate() error {
	ctx := context.Background()

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer op.Close()

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return err
	}
	if !hasTables {
		gn.Warn("Database is empty, run <em>gnclade create</em> first.")
		return nil
	}

	gn.Info("Migrating schema to latest version...")
	if err = ioschema.NewManager(op).Migrate(ctx); err != nil {
		return err
	}
	gn.Info("Schema is now up to date.")
	return nil
}
