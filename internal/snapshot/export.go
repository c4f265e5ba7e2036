package snapshot

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/parquet"
)

// ExportParquet writes every snapshot and measure in store to two Parquet
// files named after outputFile, and reports progress to w.
func ExportParquet(store contract.SnapshotStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalSnapshots == 0 {
		return errors.New("no snapshots found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total snapshots: %d\n", status.TotalSnapshots)
	_, _ = fmt.Fprintf(w, "Total measures: %d\n", status.TotalMeasures)

	snapshots, err := store.ListSnapshots("", 0)
	if err != nil {
		return fmt.Errorf("failed to retrieve snapshots: %w", err)
	}
	measures, err := store.GetAllMeasures()
	if err != nil {
		return fmt.Errorf("failed to retrieve measures: %w", err)
	}

	snapshotsFile := outputFile + ".snapshots.parquet"
	rows := parquet.ConvertSnapshotRecords(snapshots)
	if err := parquet.WriteSnapshotsParquet(rows, snapshotsFile); err != nil {
		return fmt.Errorf("failed to write snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d snapshots to: %s\n", len(rows), snapshotsFile)

	measuresFile := outputFile + ".measures.parquet"
	measureRows := parquet.ConvertSnapshotMeasureRecords(measures)
	if err := parquet.WriteSnapshotMeasuresParquet(measureRows, measuresFile); err != nil {
		return fmt.Errorf("failed to write measures: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d measures to: %s\n", len(measureRows), measuresFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow) or Apache Spark.")
	return nil
}
