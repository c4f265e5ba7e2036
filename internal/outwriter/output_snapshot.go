package outwriter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/schema"
)

// WriteSnapshots prints recorded snapshots, newest first.
func (ow *OutWriter) WriteSnapshots(records []schema.SnapshotRecord, cfg *contract.Config) error {
	return writeView(cfg, snapshotsView(records))
}

// WriteStoreStatus prints status information about the snapshot store.
func (ow *OutWriter) WriteStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	return writeView(cfg, storeStatusView(status))
}

// WriteAuthStatus prints the stored credentials with the token masked.
func (ow *OutWriter) WriteAuthStatus(status schema.AuthStatus, cfg *contract.Config) error {
	return writeView(cfg, authStatusView(status))
}

func snapshotsView(records []schema.SnapshotRecord) view {
	v := view{
		name:      "snapshots",
		payload:   records,
		title:     fmt.Sprintf("%d snapshots recorded", len(records)),
		headers:   []string{"ID", "Project", "Branch", "Taken At", "Gate", "Measures"},
		csvHeader: []string{"snapshot_id", "project_key", "branch", "taken_at", "gate_status", "measure_count"},
	}
	for _, r := range records {
		id := strconv.FormatInt(r.SnapshotID, 10)
		taken := r.TakenAt.Format(time.RFC3339)
		count := strconv.Itoa(r.MeasureCount)
		v.rows = append(v.rows, []string{id, r.ProjectKey, orDash(r.Branch), taken, contract.GetGateLabel(r.GateStatus), count})
		v.csvRows = append(v.csvRows, []string{id, r.ProjectKey, r.Branch, taken, string(r.GateStatus), count})
	}
	return v
}

func storeStatusView(status schema.StoreStatus) view {
	rows := [][]string{
		{"Backend", status.Backend},
		{"Connected", strconv.FormatBool(status.Connected)},
		{"Schema Version", strconv.FormatUint(uint64(status.SchemaVersion), 10)},
		{"Total Snapshots", strconv.Itoa(status.TotalSnapshots)},
		{"Total Measures", strconv.Itoa(status.TotalMeasures)},
	}
	if status.TotalSnapshots > 0 {
		rows = append(rows,
			[]string{"Last Snapshot ID", strconv.FormatInt(status.LastSnapshotID, 10)},
			[]string{"Last Snapshot", status.LastSnapshotTime.Format(time.RFC3339)},
			[]string{"Oldest Snapshot", status.OldestSnapshotTime.Format(time.RFC3339)},
		)
	}
	return view{
		name:      "store status",
		payload:   status,
		title:     "Snapshot store",
		headers:   []string{"Property", "Value"},
		rows:      rows,
		alignLeft: true,
	}
}

func authStatusView(status schema.AuthStatus) view {
	token := "(not set)"
	if status.Token != "" {
		token = status.Token
	}
	server := "unreachable"
	if status.Healthy {
		server = "UP"
	}
	return view{
		name:    "auth status",
		payload: status,
		title:   "Authentication",
		headers: []string{"Property", "Value"},
		rows: [][]string{
			{"Config File", status.ConfigPath},
			{"URL", orDash(status.URL)},
			{"Token", token},
			{"Server", server},
		},
		alignLeft: true,
	}
}
