package cmd

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const migrationsTable = "schema_migrations"

var (
	migrateRollback bool
	migrateStatus   bool
	migrateDir      string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema under the migrations directory",
	Long: `Apply pending goose migrations against the configured database. The
dialect follows database.driver, so the same files serve postgres and sqlite.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return migrate(ctx, gooseCommand())
	},
}

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the most recent migration")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print applied and pending migrations without changing anything")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "directory holding the sql migrations")
}

func gooseCommand() string {
	switch {
	case migrateStatus:
		return "status"
	case migrateRollback:
		return "down"
	default:
		return "up"
	}
}

func migrate(ctx context.Context, command string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// pgx resolves to the postgres dialect, sqlite3 to sqlite.
	db, err := goose.OpenDBWithDriver(cfg.Database.SQLDriverName(), cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.Database.Driver, err)
	}
	defer db.Close()

	goose.SetTableName(migrationsTable)
	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	fmt.Printf("schema at version %d (%s)\n", version, command)
	return nil
}
