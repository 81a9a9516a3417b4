package cmd

import (
	"fmt"

	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/internal/iohistory"
	"github.com/physqa/rundiag/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get history-related config values
	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("output-file")

	// Initialize the store with the loaded config
	if err := iohistory.InitHistory(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history tracking: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create tables,
// allowing migrations to run on a fresh database.
func historyMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get history-related config values
	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr

	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate command.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyMigrateSetup()
}

// historyCmd focused on diagnosis history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by diagnosis commands. This avoids rule file loading
// and complex config processing for simple history operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage diagnosis history tracking and exports",
	Long: `Manage historical diagnosis data used for trend tracking and reporting.

When enabled, rundiag tracks every diagnosis session, storing:
- Session metadata (timestamp, configuration, duration)
- Per-run cause scores and labels across all clusters
- Symptom counts per run

This enables longitudinal analysis of detector health and data export for BI tools.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  rundiag history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  rundiag history export --history-backend sqlite --output-file diagnosis-data.parquet`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history tracking statistics and connection details",
	Long: `Show detailed information about diagnosis history tracking.

Displays:
- Backend type and connection status
- Total number of diagnosis sessions stored
- Last and oldest diagnosis timestamps
- Total runs diagnosed across all sessions
- Database table sizes

Use this to:
- Verify history tracking is enabled and working
- Monitor data accumulation over time
- Check database connection health
- Estimate storage requirements

Examples:
  # Check history tracking status
  rundiag history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iohistory.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iohistory.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports diagnosis history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export historical data to Parquet for BI tools and analytics",
	Long: `Export all stored diagnosis history to Parquet format for use with analytics tools.

Exports two datasets:
- Diagnosis sessions - metadata about each diagnosis execution
- Cause scores - per-run cluster scores and labels from every session

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output-file parameter

Use cases:
- Trend analysis across run periods
- Custom detector health dashboards
- Correlating cause labels with accelerator conditions

Examples:
  # Export all data
  rundiag history export --history-backend sqlite --output-file rundiag-data.parquet

  # Use with DuckDB for analysis
  rundiag history export --history-backend sqlite --output-file data.parquet
  duckdb -c "SELECT * FROM read_parquet('data.parquet.cause_scores.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iohistory.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history data", err)
		}
	},
}

// historyClearCmd clears the diagnosis history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all diagnosis history tracking data",
	Long: `Delete all stored diagnosis sessions and cause score history.

This removes:
- All diagnosis session metadata
- Historical cause scores across all clusters
- Per-run symptom counts

WARNING: This action cannot be undone. Consider exporting data first.

Use this when:
- Resetting trend tracking after a detector upgrade
- Database storage is full
- Starting fresh diagnosis history
- Testing history features

Examples:
  # Export before clearing
  rundiag history export --history-backend sqlite --output-file backup.parquet
  rundiag history clear --history-backend sqlite

  # Clear and start fresh
  rundiag history clear --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iohistory.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history data", err)
		}
		fmt.Println("History data cleared successfully.")
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the diagnosis history store.

Migrations allow:
- Upgrading to new schema versions when rundiag is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed
- Testing new features on specific schema versions

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  rundiag history migrate --history-backend sqlite

  # Migrate to specific version
  rundiag history migrate --history-backend sqlite --target-version 2

  # Rollback to previous version
  rundiag history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iohistory.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
