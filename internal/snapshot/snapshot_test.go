package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) (*Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "snapshots.db")
	store, err := NewStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, dbPath
}

func sampleSnapshot(project string, taken time.Time) schema.Snapshot {
	return schema.Snapshot{
		ProjectKey: project,
		ServerURL:  "http://localhost:9000",
		TakenAt:    taken,
		GateStatus: schema.GateOK,
		Measures: map[string]string{
			"coverage": "81.5",
			"bugs":     "3",
			"ncloc":    "",
		},
	}
}

func TestStore_NoneBackend(t *testing.T) {
	store, err := NewStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.RecordSnapshot(sampleSnapshot("p", time.Now()))
	assert.NoError(t, err)
	assert.Equal(t, int64(0), id)

	records, err := store.ListSnapshots("", 0)
	assert.NoError(t, err)
	assert.Empty(t, records)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Clear())
	assert.NoError(t, store.Close())
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	store, _ := newSQLiteStore(t)

	first := time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC)
	second := first.Add(24 * time.Hour)

	id1, err := store.RecordSnapshot(sampleSnapshot("api", first))
	require.NoError(t, err)
	assert.Greater(t, id1, int64(0))

	snap := sampleSnapshot("web", second)
	snap.Branch = "develop"
	snap.GateStatus = schema.GateError
	id2, err := store.RecordSnapshot(snap)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	records, err := store.ListSnapshots("", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, id2, records[0].SnapshotID, "newest snapshot first")
	assert.Equal(t, "web", records[0].ProjectKey)
	assert.Equal(t, "develop", records[0].Branch)
	assert.Equal(t, schema.GateError, records[0].GateStatus)
	assert.Equal(t, 3, records[0].MeasureCount)
	assert.True(t, second.Equal(records[0].TakenAt))
	assert.True(t, first.Equal(records[1].TakenAt))

	filtered, err := store.ListSnapshots("api", 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, id1, filtered[0].SnapshotID)

	limited, err := store.ListSnapshots("", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, id2, limited[0].SnapshotID)

	measures, err := store.GetAllMeasures()
	require.NoError(t, err)
	require.Len(t, measures, 6)
	assert.Equal(t, "bugs", measures[0].Metric)
	require.NotNil(t, measures[0].Value)
	assert.Equal(t, "3", *measures[0].Value)
	assert.Equal(t, "ncloc", measures[2].Metric)
	assert.Nil(t, measures[2].Value, "empty values are stored as NULL")
	assert.Equal(t, "api", measures[0].ProjectKey)
}

func TestStore_SQLiteStatusAndClear(t *testing.T) {
	store, _ := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, uint(3), status.SchemaVersion)
	assert.Zero(t, status.TotalSnapshots)

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	_, err = store.RecordSnapshot(sampleSnapshot("api", older))
	require.NoError(t, err)
	lastID, err := store.RecordSnapshot(sampleSnapshot("api", newer))
	require.NoError(t, err)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalSnapshots)
	assert.Equal(t, 6, status.TotalMeasures)
	assert.Equal(t, lastID, status.LastSnapshotID)
	assert.True(t, newer.Equal(status.LastSnapshotTime))
	assert.True(t, older.Equal(status.OldestSnapshotTime))

	require.NoError(t, store.Clear())
	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TotalSnapshots)
	assert.Zero(t, status.TotalMeasures)
	assert.Equal(t, uint(3), status.SchemaVersion)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	store, dbPath := newSQLiteStore(t)
	_, err := store.RecordSnapshot(sampleSnapshot("api", time.Now()))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.ListSnapshots("api", 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMigrate_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	var out bytes.Buffer

	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "Successfully migrated from version 0 to version 3")

	out.Reset()
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "already at the latest version")

	out.Reset()
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, 1, &out))
	assert.Contains(t, out.String(), "from version 3 to version 1")

	out.Reset()
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, 0, &out))
	assert.Contains(t, out.String(), "rolled back from version 1 to version 0")

	// Opening a store brings the schema back to the latest version.
	store, err := NewStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, uint(3), status.SchemaVersion)
}

func TestMigrate_NoneBackend(t *testing.T) {
	err := Migrate(schema.NoneBackend, "", -1, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &Store{backend: schema.PostgreSQLBackend}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &Store{backend: schema.SQLiteBackend}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := mysqlDSN("user:pass@tcp(localhost:3306)/sonar")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	_, err = mysqlDSN("not a dsn")
	assert.Error(t, err)
}

func TestExportParquet(t *testing.T) {
	store, _ := newSQLiteStore(t)
	_, err := store.RecordSnapshot(sampleSnapshot("api", time.Now()))
	require.NoError(t, err)

	base := filepath.Join(t.TempDir(), "export")
	var out bytes.Buffer
	require.NoError(t, ExportParquet(store, base, &out))

	assert.FileExists(t, base+".snapshots.parquet")
	assert.FileExists(t, base+".measures.parquet")
	assert.Contains(t, out.String(), "Exported 1 snapshots")
	assert.Contains(t, out.String(), "Exported 3 measures")
}

func TestExportParquet_Errors(t *testing.T) {
	mockStore := &contract.MockSnapshotStore{}
	assert.Error(t, ExportParquet(mockStore, "", &bytes.Buffer{}))

	mockStore.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite"}, nil)
	err := ExportParquet(mockStore, filepath.Join(t.TempDir(), "x"), &bytes.Buffer{})
	assert.EqualError(t, err, "no snapshots found to export")
	mockStore.AssertExpectations(t)
}

func TestExportParquet_ListFailure(t *testing.T) {
	mockStore := &contract.MockSnapshotStore{}
	mockStore.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite", TotalSnapshots: 1}, nil)
	mockStore.On("ListSnapshots", "", 0).Return(nil, os.ErrPermission)

	err := ExportParquet(mockStore, filepath.Join(t.TempDir(), "x"), &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrPermission)
	mockStore.AssertNotCalled(t, "GetAllMeasures")
}
