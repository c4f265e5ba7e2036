package cmd

import (
	"os"

	"github.com/huangsam/sonar-cli/core"
	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/spf13/cobra"
)

// withStore opens the snapshot store for the duration of fn.
func withStore(msg string, fn func(store contract.SnapshotStore) error) {
	store := openStore()
	err := fn(store)
	_ = store.Close()
	if err != nil {
		contract.LogFatal(msg, err)
	}
}

// snapshotCmd manages the local snapshot store.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record and inspect quality gate snapshots",
	Long: `Record quality gate results and project measures in a local store to track
them over time.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None

Subcommands:
  record  - Record the current gate and measures of a project
  list    - List recorded snapshots, newest first
  status  - Show store statistics and connection info
  export  - Export all snapshots to Parquet files
  clear   - Remove all recorded snapshots
  migrate - Manage the store schema version

Examples:
  # Record a snapshot after each CI run
  sonar-cli snapshot record -p my-project

  # Use PostgreSQL (set the connection string via env variable)
  SONAR_STORE_BACKEND=postgresql SONAR_STORE_DB_CONNECT="host=... dbname=..." sonar-cli snapshot list`,
}

var snapshotRecordCmd = &cobra.Command{
	Use:     "record",
	Short:   "Record the current gate and measures of a project",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		withStore("Failed to record snapshot", func(store contract.SnapshotStore) error {
			return core.ExecuteSnapshotRecord(rootCtx, cfg, core.NewClient(cfg), store)
		})
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded snapshots, newest first",
	Long: `List recorded snapshots, newest first.

Lists every project unless --project is set.

Examples:
  sonar-cli snapshot list
  sonar-cli snapshot list -p my-project --limit 10`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		withStore("Failed to list snapshots", func(store contract.SnapshotStore) error {
			return core.ExecuteSnapshotList(cfg, store)
		})
	},
}

var snapshotStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display store statistics and connection details",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		withStore("Failed to get store status", func(store contract.SnapshotStore) error {
			return core.ExecuteSnapshotStatus(cfg, store)
		})
	},
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all snapshots to Parquet files",
	Long: `Export every snapshot and measure to two Parquet files.

The files are named after --output-file with the suffixes .snapshots.parquet and
.measures.parquet. They can be read with DuckDB, Pandas or Apache Spark.

Examples:
  sonar-cli snapshot export --output-file quality`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		withStore("Failed to export snapshots", func(store contract.SnapshotStore) error {
			return core.ExecuteSnapshotExport(cfg, store, os.Stdout)
		})
	},
}

var snapshotClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove all recorded snapshots",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		withStore("Failed to clear snapshots", func(store contract.SnapshotStore) error {
			return core.ExecuteSnapshotClear(cfg, store, os.Stdout)
		})
	},
}

var snapshotMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the snapshot store schema version",
	Long: `Migrate the snapshot store schema up or down.

Opening the store always migrates to the latest version; use this command to
roll back or to inspect a database before upgrading.

Examples:
  # Migrate to the latest version
  sonar-cli snapshot migrate

  # Roll back everything
  sonar-cli snapshot migrate --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSnapshotMigrate(cfg, os.Stdout); err != nil {
			contract.LogFatal("Failed to migrate snapshot store", err)
		}
	},
}
