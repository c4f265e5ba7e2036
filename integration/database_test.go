//go:build database

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestSnapshotsWithMySQL tests the snapshot commands with a MySQL backend.
func TestSnapshotsWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "sonar",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/sonar?parseTime=true", host, port.Port())
	exerciseSnapshotStore(t, "mysql", connStr)
}

// TestSnapshotsWithPostgres tests the snapshot commands with a PostgreSQL backend.
func TestSnapshotsWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseSnapshotStore(t, "postgresql", connStr)
}

// exerciseSnapshotStore records, lists, inspects and clears snapshots through the CLI.
func exerciseSnapshotStore(t *testing.T, backend, connStr string) {
	t.Helper()
	srv := fakeServer(t, "ERROR")
	env := []string{
		"SONAR_STORE_BACKEND=" + backend,
		"SONAR_STORE_DB_CONNECT=" + connStr,
		"SONAR_HOST_URL=" + srv.URL,
		"SONAR_PROJECT_KEY=demo",
	}

	_, err := runCommand(t, env, "snapshot", "clear")
	require.NoError(t, err)

	_, err = runCommand(t, env, "snapshot", "record")
	require.NoError(t, err)

	// The gate fails, but recording must still happen.
	_, err = runCommand(t, env, "quality-gate", "--record", "--json")
	require.NoError(t, err)

	out, err := runCommand(t, env, "snapshot", "list", "--json")
	require.NoError(t, err)
	var records []struct {
		ProjectKey   string `json:"project_key"`
		GateStatus   string `json:"gate_status"`
		MeasureCount int    `json:"measure_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "demo", r.ProjectKey)
		assert.Equal(t, "ERROR", r.GateStatus)
		assert.Positive(t, r.MeasureCount)
	}

	out, err = runCommand(t, env, "snapshot", "status", "--json")
	require.NoError(t, err)
	var status struct {
		Backend        string `json:"backend"`
		Connected      bool   `json:"connected"`
		TotalSnapshots int    `json:"total_snapshots"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalSnapshots)

	_, err = runCommand(t, env, "snapshot", "migrate", "--target-version", "0")
	require.NoError(t, err)
	_, err = runCommand(t, env, "snapshot", "migrate")
	require.NoError(t, err)

	_, err = runCommand(t, env, "snapshot", "clear")
	require.NoError(t, err)
}
