package schema

import "time"

// Snapshot is a point-in-time record of a project's quality gate and measures.
type Snapshot struct {
	ProjectKey string            `json:"project_key"`
	Branch     string            `json:"branch,omitempty"`
	ServerURL  string            `json:"server_url"`
	TakenAt    time.Time         `json:"taken_at"`
	GateStatus GateStatus        `json:"gate_status"`
	Measures   map[string]string `json:"measures"`
}

// SnapshotRecord represents a row from the sonar_snapshots table.
type SnapshotRecord struct {
	SnapshotID   int64      `json:"snapshot_id"`
	ProjectKey   string     `json:"project_key"`
	Branch       string     `json:"branch,omitempty"`
	ServerURL    string     `json:"server_url"`
	TakenAt      time.Time  `json:"taken_at"`
	GateStatus   GateStatus `json:"gate_status"`
	MeasureCount int        `json:"measure_count"`
}

// SnapshotMeasureRecord represents a row from the sonar_snapshot_measures table.
type SnapshotMeasureRecord struct {
	SnapshotID int64
	ProjectKey string
	TakenAt    time.Time
	Metric     string
	Value      *string
}

// StoreStatus represents the status of the snapshot store.
type StoreStatus struct {
	Backend            string    `json:"backend"`
	Connected          bool      `json:"connected"`
	TotalSnapshots     int       `json:"total_snapshots"`
	TotalMeasures      int       `json:"total_measures"`
	LastSnapshotID     int64     `json:"last_snapshot_id"`
	LastSnapshotTime   time.Time `json:"last_snapshot_time"`
	OldestSnapshotTime time.Time `json:"oldest_snapshot_time"`
	SchemaVersion      uint      `json:"schema_version"`
}
