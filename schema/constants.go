package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for snapshots.
	DatabaseBackend string

	// Severity represents the severity of an issue or rule.
	Severity string

	// TaskStatus represents the status of a background analysis task.
	TaskStatus string

	// GateStatus represents the status of a quality gate or one of its conditions.
	GateStatus string

	// CoverageSort represents the ordering of coverage results.
	CoverageSort string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	CSVOut  OutputMode = "csv"
)

// All snapshot backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Issue severities in ascending order.
const (
	SeverityInfo     Severity = "INFO"
	SeverityMinor    Severity = "MINOR"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
	SeverityBlocker  Severity = "BLOCKER"
)

// Background task statuses reported by the server.
const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskSuccess    TaskStatus = "SUCCESS"
	TaskFailed     TaskStatus = "FAILED"
	TaskCanceled   TaskStatus = "CANCELED"
)

// Quality gate statuses.
const (
	GateOK    GateStatus = "OK"
	GateWarn  GateStatus = "WARN"
	GateError GateStatus = "ERROR"
	GateNone  GateStatus = "NONE"
)

// Coverage orderings.
const (
	SortByCoverage  CoverageSort = "coverage" // default
	SortByUncovered CoverageSort = "uncovered"
	SortByFile      CoverageSort = "file"
)

// AllSeverities lists every severity from lowest to highest.
var AllSeverities = []Severity{SeverityInfo, SeverityMinor, SeverityMajor, SeverityCritical, SeverityBlocker}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
	CSVOut:  {},
}

// ValidDatabaseBackends lists all valid snapshot backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidCoverageSorts lists all valid coverage orderings.
var ValidCoverageSorts = map[CoverageSort]struct{}{
	SortByCoverage:  {},
	SortByUncovered: {},
	SortByFile:      {},
}

// DefaultMeasureMetrics is the metric set shown by the measures command.
var DefaultMeasureMetrics = []string{
	"ncloc",
	"coverage",
	"duplicated_lines_density",
	"bugs",
	"vulnerabilities",
	"code_smells",
	"sqale_debt_ratio",
	"reliability_rating",
	"security_rating",
	"sqale_rating",
}

// CoverageMetrics is requested from the component tree for per-file coverage.
var CoverageMetrics = []string{"coverage", "uncovered_lines", "lines_to_cover"}

// DuplicationMetrics is requested from the component tree for per-file duplications.
var DuplicationMetrics = []string{"duplicated_lines", "duplicated_lines_density", "duplicated_blocks"}

// DefaultIssueStatuses are the unresolved statuses used for issue searches.
var DefaultIssueStatuses = []string{"OPEN", "CONFIRMED", "REOPENED"}
