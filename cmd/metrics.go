package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/finmap/core"
	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// metricsStoreSetup loads minimal configuration needed for schema migrations.
// This is used by commands that need store access without full shared setup.
func metricsStoreSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("metrics-backend")))
	connStr := viper.GetString("metrics-db-connect")
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid metrics backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if backend == schema.NoneBackend {
		return fmt.Errorf("metrics migrate requires --metrics-backend (sqlite, mysql, postgresql)")
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.MetricsBackend = backend
	cfg.MetricsDBConnect = connStr
	return nil
}

// metricsStoreSetupWrapper wraps metricsStoreSetup to provide PreRunE for metrics migrate.
func metricsStoreSetupWrapper(_ *cobra.Command, _ []string) error {
	return metricsStoreSetup()
}

// metricsCmd groups the metrics store commands.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Manage the optional SQL metrics store.",
	Long: `Manage the SQL store that can replace the metrics file as the source of
investment and income records.

Supported backends: SQLite, MySQL, PostgreSQL, or None (read the metrics file)

Subcommands:
  import  - Load a CSV or XLSX metrics file into the store
  migrate - Upgrade or downgrade the store schema
  status  - Show record counts and connection info
  export  - Print the records of the active metrics source

Examples:
  # Import the default CSV into a local SQLite store
  finmap metrics import finance_data.csv --metrics-backend sqlite

  # Render from the store instead of the file
  finmap render --metrics-backend sqlite`,
}

// metricsImportCmd loads a metrics file into the store.
var metricsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a CSV or XLSX metrics file into the store",
	Long: `Parse a metrics file with the configured column names and insert every
record into the metrics store. The schema is migrated to the latest version
before importing.

Examples:
  # Append records to the SQLite store in the home directory
  finmap metrics import finance_data.csv --metrics-backend sqlite

  # Replace all stored records with a new workbook
  finmap metrics import finance_2024.xlsx --metrics-backend sqlite --replace`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		replace := viper.GetBool("replace")
		if err := core.ExecuteMetricsImport(rootCtx, cfg, args[0], replace); err != nil {
			contract.LogFatal("Failed to import metrics", err)
		}
	},
}

// metricsMigrateCmd runs database migrations for the metrics store.
var metricsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the metrics store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  finmap metrics migrate --metrics-backend sqlite

  # Rollback everything
  finmap metrics migrate --metrics-backend sqlite --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: metricsStoreSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := core.ExecuteMetricsMigrate(rootCtx, cfg, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// metricsStatusCmd shows metrics store status.
var metricsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show metrics store status and record counts",
	Long: `Display the backend, connection state, number of stored records, the number
of distinct regions and the covered year range.

Examples:
  finmap metrics status --metrics-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		executeOrFatal("Failed to get metrics status", core.ExecuteMetricsStatus)
	},
}

// metricsExportCmd prints the records of the active metrics source.
var metricsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the metric records of the active source",
	Long: `Print every metric record of the active source (the metrics file, or the
store when --metrics-backend is set) in the selected format.

Examples:
  # Dump the stored records as CSV
  finmap metrics export --metrics-backend sqlite --format csv

  # Convert the metrics file to Parquet
  finmap metrics export --format parquet --output-file finance_data.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		executeOrFatal("Failed to export metrics", core.ExecuteMetricsExport)
	},
}
