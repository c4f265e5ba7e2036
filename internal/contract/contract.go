// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
)

// SonarClient defines the server operations used by the commands.
// This allows the use cases to be tested without a running server.
type SonarClient interface {
	// BaseURL returns the server the client talks to.
	BaseURL() string

	// SystemStatus returns the raw server status such as "UP".
	SystemStatus(ctx context.Context) (string, error)

	// --- Single documents ---

	QualityGate(ctx context.Context, project string) (schema.QualityGate, error)
	Measures(ctx context.Context, project string, metrics []string) (schema.ComponentMeasures, error)
	RawSource(ctx context.Context, fileKey string) ([]schema.SourceLine, error)
	SourceRange(ctx context.Context, fileKey string, from, to int) ([]schema.SourceLine, error)
	Task(ctx context.Context, taskID string) (schema.AnalysisTask, error)

	// --- Aggregated searches ---

	SearchIssues(ctx context.Context, q sonar.IssueQuery) ([]schema.Issue, error)
	FileCoverage(ctx context.Context, project string) ([]schema.FileCoverage, error)
	FilesWithDuplications(ctx context.Context, project string, limit int) ([]schema.FileDuplication, error)
	DuplicationsWithBlocks(ctx context.Context, project string, limit int) ([]schema.FileDuplication, error)
	Hotspots(ctx context.Context, q sonar.HotspotQuery) ([]schema.Hotspot, error)
	Projects(ctx context.Context, q sonar.ProjectQuery) ([]schema.Project, error)
	Rules(ctx context.Context, q sonar.RuleQuery) ([]schema.Rule, error)
	History(ctx context.Context, q sonar.HistoryQuery) ([]schema.MeasureHistory, error)

	// WaitForAnalysis polls a background task until it is terminal.
	WaitForAnalysis(ctx context.Context, taskID string, opts sonar.WaitOptions) (schema.AnalysisTask, error)
}

var _ SonarClient = (*sonar.Client)(nil) // Compile-time check

// SnapshotStore defines the interface for recording quality snapshots.
type SnapshotStore interface {
	// RecordSnapshot stores a snapshot and returns its unique ID
	RecordSnapshot(s schema.Snapshot) (int64, error)

	// ListSnapshots returns the newest snapshots first, optionally for one project
	ListSnapshots(project string, limit int) ([]schema.SnapshotRecord, error)

	// GetAllMeasures returns every recorded measure joined with its snapshot
	GetAllMeasures() ([]schema.SnapshotMeasureRecord, error)

	// GetStatus returns status information about the store
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all recorded snapshots
	Clear() error

	// Close closes the underlying connection
	Close() error
}
