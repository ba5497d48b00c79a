package cmd

import (
	"context"
	"fmt"

	"github.com/Siddharth-Keer/Koe-Dashboard/db/migrations"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded sql migrations for the sqlite or postgres store",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	_, dialect, err := sqlDriver(cfg.Storage.Driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	db, err := initDB(cfg.Storage)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrateRollback {
		if err := migrations.Down(ctx, db.DB, dialect); err != nil {
			return err
		}
	} else if err := migrations.Up(ctx, db.DB, dialect); err != nil {
		return err
	}

	version, err := migrations.Version(ctx, db.DB, dialect)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
	return nil
}
