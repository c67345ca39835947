package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/internal/trackstore"
	"github.com/ghrelinlab/posemetrics/schema"
)

// dbCmd groups trial database maintenance commands.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the trial database.",
	Long: `Maintenance commands for the relational trial store.

Available operations:
  db migrate - Run schema migrations`,
}

// dbSetup loads the minimal configuration needed for database maintenance.
// It deliberately skips full shared setup so migrations can run against a
// fresh database with no tables.
func dbSetup(_ *cobra.Command, _ []string) error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	backend := schema.DatabaseBackend(viper.GetString("backend"))
	connStr := viper.GetString("db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.Backend = backend
	cfg.DBConnect = connStr
	cfg.ConnectTimeout = contract.DefaultConnectTimeout
	cfg.Workers = contract.DefaultWorkers
	return nil
}

// dbMigrateCmd runs schema migrations for the trial store.
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run trial database schema migrations.",
	Long: `Apply schema migrations to the configured trial database.

Creates or upgrades the trial catalog, frame and feature tables. Use
--target-version to migrate to a specific version, 0 to roll everything
back, or leave it at -1 for the latest.

Examples:
  # Migrate a local SQLite store to the latest schema
  posemetrics db migrate --backend sqlite

  # Roll a PostgreSQL store back one step from version 3
  posemetrics db migrate --backend postgresql --db-connect "host=db user=lab dbname=trials" --target-version 2`,
	Args:    cobra.NoArgs,
	PreRunE: dbSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := trackstore.Migrate(rootCtx, cfg, targetVersion); err != nil {
			contract.LogFatal("Cannot migrate trial database", err)
		}
	},
}
