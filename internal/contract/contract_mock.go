package contract

import (
	"context"

	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/stretchr/testify/mock"
)

// MockSonarClient is a mock implementation of SonarClient for testing.
type MockSonarClient struct {
	mock.Mock
}

var _ SonarClient = &MockSonarClient{} // Compile-time check

// BaseURL implements the SonarClient interface.
func (m *MockSonarClient) BaseURL() string {
	return m.Called().String(0)
}

// SystemStatus implements the SonarClient interface.
func (m *MockSonarClient) SystemStatus(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// QualityGate implements the SonarClient interface.
func (m *MockSonarClient) QualityGate(ctx context.Context, project string) (schema.QualityGate, error) {
	args := m.Called(ctx, project)
	return args.Get(0).(schema.QualityGate), args.Error(1)
}

// Measures implements the SonarClient interface.
func (m *MockSonarClient) Measures(ctx context.Context, project string, metrics []string) (schema.ComponentMeasures, error) {
	args := m.Called(ctx, project, metrics)
	return args.Get(0).(schema.ComponentMeasures), args.Error(1)
}

// RawSource implements the SonarClient interface.
func (m *MockSonarClient) RawSource(ctx context.Context, fileKey string) ([]schema.SourceLine, error) {
	args := m.Called(ctx, fileKey)
	lines, _ := args.Get(0).([]schema.SourceLine)
	return lines, args.Error(1)
}

// SourceRange implements the SonarClient interface.
func (m *MockSonarClient) SourceRange(ctx context.Context, fileKey string, from, to int) ([]schema.SourceLine, error) {
	args := m.Called(ctx, fileKey, from, to)
	lines, _ := args.Get(0).([]schema.SourceLine)
	return lines, args.Error(1)
}

// Task implements the SonarClient interface.
func (m *MockSonarClient) Task(ctx context.Context, taskID string) (schema.AnalysisTask, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).(schema.AnalysisTask), args.Error(1)
}

// SearchIssues implements the SonarClient interface.
func (m *MockSonarClient) SearchIssues(ctx context.Context, q sonar.IssueQuery) ([]schema.Issue, error) {
	args := m.Called(ctx, q)
	issues, _ := args.Get(0).([]schema.Issue)
	return issues, args.Error(1)
}

// FileCoverage implements the SonarClient interface.
func (m *MockSonarClient) FileCoverage(ctx context.Context, project string) ([]schema.FileCoverage, error) {
	args := m.Called(ctx, project)
	files, _ := args.Get(0).([]schema.FileCoverage)
	return files, args.Error(1)
}

// FilesWithDuplications implements the SonarClient interface.
func (m *MockSonarClient) FilesWithDuplications(ctx context.Context, project string, limit int) ([]schema.FileDuplication, error) {
	args := m.Called(ctx, project, limit)
	files, _ := args.Get(0).([]schema.FileDuplication)
	return files, args.Error(1)
}

// DuplicationsWithBlocks implements the SonarClient interface.
func (m *MockSonarClient) DuplicationsWithBlocks(ctx context.Context, project string, limit int) ([]schema.FileDuplication, error) {
	args := m.Called(ctx, project, limit)
	files, _ := args.Get(0).([]schema.FileDuplication)
	return files, args.Error(1)
}

// Hotspots implements the SonarClient interface.
func (m *MockSonarClient) Hotspots(ctx context.Context, q sonar.HotspotQuery) ([]schema.Hotspot, error) {
	args := m.Called(ctx, q)
	hotspots, _ := args.Get(0).([]schema.Hotspot)
	return hotspots, args.Error(1)
}

// Projects implements the SonarClient interface.
func (m *MockSonarClient) Projects(ctx context.Context, q sonar.ProjectQuery) ([]schema.Project, error) {
	args := m.Called(ctx, q)
	projects, _ := args.Get(0).([]schema.Project)
	return projects, args.Error(1)
}

// Rules implements the SonarClient interface.
func (m *MockSonarClient) Rules(ctx context.Context, q sonar.RuleQuery) ([]schema.Rule, error) {
	args := m.Called(ctx, q)
	rules, _ := args.Get(0).([]schema.Rule)
	return rules, args.Error(1)
}

// History implements the SonarClient interface.
func (m *MockSonarClient) History(ctx context.Context, q sonar.HistoryQuery) ([]schema.MeasureHistory, error) {
	args := m.Called(ctx, q)
	histories, _ := args.Get(0).([]schema.MeasureHistory)
	return histories, args.Error(1)
}

// WaitForAnalysis implements the SonarClient interface.
func (m *MockSonarClient) WaitForAnalysis(ctx context.Context, taskID string, opts sonar.WaitOptions) (schema.AnalysisTask, error) {
	args := m.Called(ctx, taskID, opts)
	return args.Get(0).(schema.AnalysisTask), args.Error(1)
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ SnapshotStore = &MockSnapshotStore{} // Compile-time check

// RecordSnapshot implements the SnapshotStore interface.
func (m *MockSnapshotStore) RecordSnapshot(s schema.Snapshot) (int64, error) {
	args := m.Called(s)
	return args.Get(0).(int64), args.Error(1)
}

// ListSnapshots implements the SnapshotStore interface.
func (m *MockSnapshotStore) ListSnapshots(project string, limit int) ([]schema.SnapshotRecord, error) {
	args := m.Called(project, limit)
	records, _ := args.Get(0).([]schema.SnapshotRecord)
	return records, args.Error(1)
}

// GetAllMeasures implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetAllMeasures() ([]schema.SnapshotMeasureRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.SnapshotMeasureRecord)
	return records, args.Error(1)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Clear implements the SnapshotStore interface.
func (m *MockSnapshotStore) Clear() error {
	return m.Called().Error(0)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	return m.Called().Error(0)
}
