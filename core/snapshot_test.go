package core

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/snapshot"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecuteSnapshotRecord(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	client := &contract.MockSonarClient{}
	client.On("BaseURL").Return("http://sonar.test")
	client.On("QualityGate", ctx, "demo").Return(schema.QualityGate{Status: schema.GateError}, nil)
	client.On("Measures", ctx, "demo", schema.DefaultMeasureMetrics).
		Return(schema.ComponentMeasures{Measures: []schema.Measure{{Metric: "bugs", Value: "4"}}}, nil)

	taken := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &contract.MockSnapshotStore{}
	store.On("RecordSnapshot", mock.AnythingOfType("schema.Snapshot")).Return(int64(3), nil)
	store.On("ListSnapshots", "demo", 1).Return([]schema.SnapshotRecord{{
		SnapshotID: 3, ProjectKey: "demo", TakenAt: taken, GateStatus: schema.GateError, MeasureCount: 1,
	}}, nil)

	require.NoError(t, ExecuteSnapshotRecord(ctx, cfg, client, store))
	store.AssertExpectations(t)

	records := readOutput[[]schema.SnapshotRecord](t, cfg)
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].SnapshotID)
}

func TestExecuteSnapshotRecord_Disabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = schema.NoneBackend
	err := ExecuteSnapshotRecord(context.Background(), cfg, &contract.MockSonarClient{}, &contract.MockSnapshotStore{})
	assert.ErrorIs(t, err, errStoreDisabled)
}

func TestExecuteSnapshotList(t *testing.T) {
	cfg := testConfig(t)
	cfg.Project = ""
	cfg.ResultLimit = 10
	store := &contract.MockSnapshotStore{}
	store.On("ListSnapshots", "", 10).Return([]schema.SnapshotRecord{{SnapshotID: 2}, {SnapshotID: 1}}, nil)

	require.NoError(t, ExecuteSnapshotList(cfg, store))
	records := readOutput[[]schema.SnapshotRecord](t, cfg)
	assert.Len(t, records, 2)
}

func TestExecuteSnapshotStatusAndClear(t *testing.T) {
	cfg := testConfig(t)
	store := &contract.MockSnapshotStore{}
	store.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite", Connected: true, TotalSnapshots: 4}, nil)
	store.On("Clear").Return(nil)

	require.NoError(t, ExecuteSnapshotStatus(cfg, store))
	status := readOutput[schema.StoreStatus](t, cfg)
	assert.Equal(t, 4, status.TotalSnapshots)

	var out bytes.Buffer
	require.NoError(t, ExecuteSnapshotClear(cfg, store, &out))
	assert.Contains(t, out.String(), "Cleared all snapshots from the sqlite store")
	store.AssertExpectations(t)
}

func TestExecuteSnapshotClear_Failure(t *testing.T) {
	store := &contract.MockSnapshotStore{}
	store.On("Clear").Return(errors.New("locked"))
	err := ExecuteSnapshotClear(testConfig(t), store, &bytes.Buffer{})
	assert.ErrorContains(t, err, "failed to clear snapshots: locked")
}

func TestSnapshotLifecycle_SQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.StoreDBConnect = filepath.Join(dir, "snapshots.db")

	store, err := snapshot.NewStore(schema.SQLiteBackend, cfg.StoreDBConnect)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	client := &contract.MockSonarClient{}
	client.On("BaseURL").Return("http://sonar.test")
	client.On("QualityGate", ctx, "demo").Return(schema.QualityGate{Status: schema.GateOK}, nil)
	client.On("Measures", ctx, "demo", schema.DefaultMeasureMetrics).
		Return(schema.ComponentMeasures{Measures: []schema.Measure{{Metric: "coverage", Value: "75.0"}, {Metric: "bugs", Value: "0"}}}, nil)

	require.NoError(t, ExecuteSnapshotRecord(ctx, cfg, client, store))
	records := readOutput[[]schema.SnapshotRecord](t, cfg)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].MeasureCount)
	assert.Equal(t, "http://sonar.test", records[0].ServerURL)

	cfg.OutputFile = filepath.Join(dir, "export")
	var out bytes.Buffer
	require.NoError(t, ExecuteSnapshotExport(cfg, store, &out))
	assert.FileExists(t, filepath.Join(dir, "export.snapshots.parquet"))
	assert.Contains(t, out.String(), "Exported 2 measures")
}

func TestExecuteSnapshotMigrate(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDBConnect = filepath.Join(t.TempDir(), "migrate.db")
	cfg.TargetVersion = -1

	var out bytes.Buffer
	require.NoError(t, ExecuteSnapshotMigrate(cfg, &out))
	assert.Contains(t, out.String(), "Successfully migrated")
}
