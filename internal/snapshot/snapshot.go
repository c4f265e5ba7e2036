// Package snapshot records quality gate results and measures in a local or
// shared SQL database so they can be listed and exported later.
package snapshot

import (
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/schema"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// Table names for snapshot storage.
const (
	snapshotsTable  = "sonar_snapshots"
	measuresTable   = "sonar_snapshot_measures"
	migrationsTable = "sonar_schema_migrations"
)

// Store implements the SnapshotStore interface on top of database/sql.
type Store struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.SnapshotStore = &Store{} // Compile-time check

// NewStore opens the database for backend and brings its schema up to date.
// The none backend yields a store that records nothing.
func NewStore(backend schema.DatabaseBackend, connStr string) (*Store, error) {
	if backend == schema.NoneBackend {
		return &Store{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare snapshot tables: %w", err)
	}

	return &Store{db: db, backend: backend}, nil
}

// openDB opens a connection pool for backend without touching the schema.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		dsn, err := mysqlDSN(connStr)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=...", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(connStr string) (string, error) {
	parsed, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w", err)
	}
	parsed.ParseTime = true
	parsed.Loc = time.UTC
	return parsed.FormatDSN(), nil
}

func (s *Store) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatTime converts a time.Time to the appropriate format for the backend.
func (s *Store) formatTime(t time.Time) any {
	if s.backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC()
}

// timeDest returns a scan destination for a timestamp column and a function
// that completes the conversion once the row is scanned. SQLite keeps
// timestamps as text while the other backends have native types.
func (s *Store) timeDest(t *time.Time) (any, func() error) {
	if s.backend != schema.SQLiteBackend {
		return t, func() error { return nil }
	}
	var raw string
	return &raw, func() error {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("failed to parse timestamp %q: %w", raw, err)
		}
		*t = parsed
		return nil
	}
}

// RecordSnapshot stores the snapshot and its measures in one transaction.
func (s *Store) RecordSnapshot(snap schema.Snapshot) (int64, error) {
	if s.disabled() {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := fmt.Sprintf(`INSERT INTO %s (project_key, branch, server_url, taken_at, gate_status) VALUES (?, ?, ?, ?, ?)`, snapshotsTable)
	args := []any{snap.ProjectKey, snap.Branch, snap.ServerURL, s.formatTime(snap.TakenAt), string(snap.GateStatus)}

	var snapshotID int64
	switch s.backend {
	case schema.PostgreSQLBackend:
		err = tx.QueryRow(s.rebind(insert)+" RETURNING snapshot_id", args...).Scan(&snapshotID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = tx.Exec(insert, args...)
		if err == nil {
			snapshotID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	measureInsert := s.rebind(fmt.Sprintf(`INSERT INTO %s (snapshot_id, metric, value) VALUES (?, ?, ?)`, measuresTable))
	for _, metric := range slices.Sorted(maps.Keys(snap.Measures)) {
		var value any
		if v := snap.Measures[metric]; v != "" {
			value = v
		}
		if _, err := tx.Exec(measureInsert, snapshotID, metric, value); err != nil {
			return 0, fmt.Errorf("failed to insert measure %s: %w", metric, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snapshotID, nil
}

// ListSnapshots returns the newest snapshots first. An empty project lists
// every project and a limit of 0 returns all rows.
func (s *Store) ListSnapshots(project string, limit int) ([]schema.SnapshotRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	var (
		where string
		args  []any
	)
	if project != "" {
		where = "WHERE s.project_key = ?"
		args = append(args, project)
	}
	query := fmt.Sprintf(`SELECT s.snapshot_id, s.project_key, s.branch, s.server_url, s.taken_at, s.gate_status, COUNT(m.metric)
		FROM %s s LEFT JOIN %s m ON m.snapshot_id = s.snapshot_id
		%s
		GROUP BY s.snapshot_id, s.project_key, s.branch, s.server_url, s.taken_at, s.gate_status
		ORDER BY s.snapshot_id DESC`, snapshotsTable, measuresTable, where)
	if limit > 0 {
		query += " LIMIT " + strconv.Itoa(limit)
	}

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotRecord
	for rows.Next() {
		var (
			record schema.SnapshotRecord
			gate   string
		)
		takenDest, finish := s.timeDest(&record.TakenAt)
		if err := rows.Scan(&record.SnapshotID, &record.ProjectKey, &record.Branch, &record.ServerURL, takenDest, &gate, &record.MeasureCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := finish(); err != nil {
			return nil, err
		}
		record.GateStatus = schema.GateStatus(gate)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return results, nil
}

// GetAllMeasures retrieves every recorded measure joined with its snapshot.
func (s *Store) GetAllMeasures() ([]schema.SnapshotMeasureRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT m.snapshot_id, s.project_key, s.taken_at, m.metric, m.value
		FROM %s m JOIN %s s ON s.snapshot_id = m.snapshot_id
		ORDER BY m.snapshot_id, m.metric`, measuresTable, snapshotsTable)

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot measures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotMeasureRecord
	for rows.Next() {
		var (
			record schema.SnapshotMeasureRecord
			value  sql.NullString
		)
		takenDest, finish := s.timeDest(&record.TakenAt)
		if err := rows.Scan(&record.SnapshotID, &record.ProjectKey, takenDest, &record.Metric, &value); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot measure: %w", err)
		}
		if err := finish(); err != nil {
			return nil, err
		}
		if value.Valid {
			record.Value = &value.String
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot measures: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the snapshot store.
func (s *Store) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.disabled() {
		return status, nil
	}

	version, err := s.schemaVersion()
	if err != nil {
		return status, err
	}
	status.SchemaVersion = version

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", snapshotsTable)
	if err := s.db.QueryRow(countQuery).Scan(&status.TotalSnapshots); err != nil {
		return status, fmt.Errorf("failed to get total snapshots: %w", err)
	}
	countQuery = fmt.Sprintf("SELECT COUNT(*) FROM %s", measuresTable)
	if err := s.db.QueryRow(countQuery).Scan(&status.TotalMeasures); err != nil {
		return status, fmt.Errorf("failed to get total measures: %w", err)
	}
	if status.TotalSnapshots == 0 {
		return status, nil
	}

	lastQuery := fmt.Sprintf("SELECT snapshot_id, taken_at FROM %s ORDER BY snapshot_id DESC LIMIT 1", snapshotsTable)
	lastDest, finishLast := s.timeDest(&status.LastSnapshotTime)
	if err := s.db.QueryRow(lastQuery).Scan(&status.LastSnapshotID, lastDest); err != nil {
		return status, fmt.Errorf("failed to get last snapshot info: %w", err)
	}
	if err := finishLast(); err != nil {
		return status, err
	}

	oldestQuery := fmt.Sprintf("SELECT taken_at FROM %s ORDER BY snapshot_id ASC LIMIT 1", snapshotsTable)
	oldestDest, finishOldest := s.timeDest(&status.OldestSnapshotTime)
	if err := s.db.QueryRow(oldestQuery).Scan(oldestDest); err != nil {
		return status, fmt.Errorf("failed to get oldest snapshot time: %w", err)
	}
	if err := finishOldest(); err != nil {
		return status, err
	}
	return status, nil
}

// schemaVersion reads the version recorded by the migrator.
func (s *Store) schemaVersion() (uint, error) {
	var version int64
	query := fmt.Sprintf("SELECT version FROM %s LIMIT 1", migrationsTable)
	err := s.db.QueryRow(query).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return uint(version), nil
}

// Clear removes every snapshot and measure but keeps the schema.
func (s *Store) Clear() error {
	if s.disabled() {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{measuresTable, snapshotsTable} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
