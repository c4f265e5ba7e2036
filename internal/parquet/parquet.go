// Package parquet provides data structures and functions for exporting recorded
// quality snapshots to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/sonar-cli/schema"
	"github.com/parquet-go/parquet-go"
)

// Snapshot represents one recorded quality snapshot of a project.
// This struct maps to the sonar_snapshots database table.
type Snapshot struct {
	// SnapshotID is the unique identifier of the snapshot
	SnapshotID int64 `parquet:"snapshot_id,snappy"`

	// ProjectKey is the key of the analyzed project
	ProjectKey string `parquet:"project_key,snappy"`

	// Branch is the analyzed branch (nullable, empty means the main branch)
	Branch *string `parquet:"branch,optional,snappy"`

	// ServerURL is the server the snapshot was taken from
	ServerURL string `parquet:"server_url,snappy"`

	// TakenAt is when the snapshot was recorded (stored as TIMESTAMP with nanosecond precision)
	TakenAt time.Time `parquet:"taken_at,snappy"`

	// GateStatus is the quality gate status at that time
	GateStatus string `parquet:"gate_status,snappy"`

	// MeasureCount is the number of measures recorded with the snapshot
	MeasureCount int32 `parquet:"measure_count,snappy"`
}

// SnapshotMeasure represents a single metric value of a snapshot.
// This struct maps to the sonar_snapshot_measures database table.
type SnapshotMeasure struct {
	SnapshotID int64     `parquet:"snapshot_id,snappy"`
	ProjectKey string    `parquet:"project_key,snappy"`
	TakenAt    time.Time `parquet:"taken_at,snappy"`
	Metric     string    `parquet:"metric,snappy"`
	Value      *string   `parquet:"value,optional,snappy"`
}

// WriteSnapshotsParquet writes a slice of Snapshot structs to a Parquet file.
func WriteSnapshotsParquet(data []Snapshot, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSnapshotMeasuresParquet writes a slice of SnapshotMeasure structs to a Parquet file.
func WriteSnapshotMeasuresParquet(data []SnapshotMeasure, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using struct schema inference. The writer must be
// closed before the file so the footer is flushed.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertSnapshotRecords converts schema.SnapshotRecord to Snapshot for Parquet export.
func ConvertSnapshotRecords(records []schema.SnapshotRecord) []Snapshot {
	result := make([]Snapshot, len(records))
	for i, record := range records {
		var branch *string
		if record.Branch != "" {
			b := record.Branch
			branch = &b
		}
		result[i] = Snapshot{
			SnapshotID:   record.SnapshotID,
			ProjectKey:   record.ProjectKey,
			Branch:       branch,
			ServerURL:    record.ServerURL,
			TakenAt:      record.TakenAt,
			GateStatus:   string(record.GateStatus),
			MeasureCount: int32(record.MeasureCount),
		}
	}
	return result
}

// ConvertSnapshotMeasureRecords converts schema.SnapshotMeasureRecord to SnapshotMeasure for Parquet export.
func ConvertSnapshotMeasureRecords(records []schema.SnapshotMeasureRecord) []SnapshotMeasure {
	result := make([]SnapshotMeasure, len(records))
	for i, record := range records {
		result[i] = SnapshotMeasure{
			SnapshotID: record.SnapshotID,
			ProjectKey: record.ProjectKey,
			TakenAt:    record.TakenAt,
			Metric:     record.Metric,
			Value:      record.Value,
		}
	}
	return result
}

// ReadSnapshotsParquet reads a file written by WriteSnapshotsParquet.
func ReadSnapshotsParquet(path string) ([]Snapshot, error) {
	rows, err := parquet.ReadFile[Snapshot](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots from %s: %w", path, err)
	}
	return rows, nil
}

// ReadSnapshotMeasuresParquet reads a file written by WriteSnapshotMeasuresParquet.
func ReadSnapshotMeasuresParquet(path string) ([]SnapshotMeasure, error) {
	rows, err := parquet.ReadFile[SnapshotMeasure](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read measures from %s: %w", path, err)
	}
	return rows, nil
}
