package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/snapshot"
	"github.com/huangsam/sonar-cli/schema"
)

// errStoreDisabled is returned by snapshot commands run with the none backend.
var errStoreDisabled = errors.New("snapshot store is disabled. Use --store-backend sqlite, mysql or postgresql")

// ExecuteSnapshotRecord fetches the quality gate and measures of the configured
// project, stores them and prints the new snapshot.
func ExecuteSnapshotRecord(ctx context.Context, cfg *contract.Config, client contract.SonarClient, store contract.SnapshotStore) error {
	if cfg.StoreBackend == schema.NoneBackend {
		return errStoreDisabled
	}
	gate, err := GetQualityGate(ctx, cfg, client)
	if err != nil {
		return err
	}
	if _, err := RecordSnapshot(ctx, cfg, client, store, gate); err != nil {
		return err
	}
	records, err := store.ListSnapshots(cfg.Project, 1)
	if err != nil {
		return fmt.Errorf("failed to read recorded snapshot: %w", err)
	}
	return writer.WriteSnapshots(records, cfg)
}

// ExecuteSnapshotList prints the recorded snapshots, newest first. The project
// filter and --limit are optional.
func ExecuteSnapshotList(cfg *contract.Config, store contract.SnapshotStore) error {
	records, err := store.ListSnapshots(cfg.Project, cfg.ResultLimit)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	return writer.WriteSnapshots(records, cfg)
}

// ExecuteSnapshotStatus prints status information about the store.
func ExecuteSnapshotStatus(cfg *contract.Config, store contract.SnapshotStore) error {
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	return writer.WriteStoreStatus(status, cfg)
}

// ExecuteSnapshotClear removes every recorded snapshot.
func ExecuteSnapshotClear(cfg *contract.Config, store contract.SnapshotStore, w io.Writer) error {
	if cfg.StoreBackend == schema.NoneBackend {
		return errStoreDisabled
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Cleared all snapshots from the %s store\n", cfg.StoreBackend)
	return nil
}

// ExecuteSnapshotExport writes the store contents to Parquet files.
func ExecuteSnapshotExport(cfg *contract.Config, store contract.SnapshotStore, w io.Writer) error {
	return snapshot.ExportParquet(store, cfg.OutputFile, w)
}

// ExecuteSnapshotMigrate moves the store schema to the requested version.
func ExecuteSnapshotMigrate(cfg *contract.Config, w io.Writer) error {
	return snapshot.Migrate(cfg.StoreBackend, cfg.StoreDBConnect, cfg.TargetVersion, w)
}
