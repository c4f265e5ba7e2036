package contract

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
)

// Default values for configuration.
const (
	DefaultURL          = "http://localhost:9000"
	DefaultTimeout      = sonar.DefaultTimeout
	DefaultWaitTimeout  = sonar.DefaultWaitTimeout
	DefaultPollInterval = sonar.DefaultPollInterval
	DefaultScanTimeout  = 30 * time.Minute
	DefaultScannerPath  = "sonar-scanner"
	DefaultDockerImage  = "sonarsource/sonar-scanner-cli"
	DefaultSourceDir    = "."
	DefaultSources      = "src"
	MaxResultLimit      = sonar.MaxPages * sonar.DefaultPageSize
)

// ErrProjectRequired is the message shown when a command needs a project key.
const ErrProjectRequired = "Project key is required. Use --project or set SONAR_PROJECT_KEY."

// ScanConfig holds the settings of the scan command.
type ScanConfig struct {
	SourceDir      string
	Sources        string
	Tests          string
	Exclusions     string
	CoverageReport string
	ScannerPath    string
	Docker         bool
	DockerImage    string
	Wait           bool
	Timeout        time.Duration
	Properties     map[string]string
}

// Config holds the runtime configuration for one invocation.
// This struct is the "final, validated" config.
type Config struct {
	URL     string
	Token   string
	Project string
	Branch  string

	Output     schema.OutputMode
	OutputFile string
	Timeout    time.Duration
	Verbose    bool
	UseColors  bool
	Width      int // Terminal width override (0 = auto-detect)

	ResultLimit int // 0 means no limit

	// Target is the positional argument: a task ID for wait, a file key for source.
	Target string

	// Shared search filters; each command reads the ones it declares.
	Severity schema.Severity
	Types    []string
	Statuses []string
	Search   string
	Language string
	Metrics  []string

	Resolutions   []string
	Tags          []string
	Rules         []string
	CreatedAfter  string
	CreatedBefore string
	Author        string
	Assignees     []string

	MinCoverage  *float64
	CoverageSort schema.CoverageSort

	Details     bool
	Qualifier   string
	From        string
	To          string
	FailOnError bool
	Record      bool

	WaitTimeout  time.Duration
	PollInterval time.Duration

	Scan ScanConfig

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext
	TargetVersion  int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	URL            string        `mapstructure:"url"`
	Token          string        `mapstructure:"token"`
	Project        string        `mapstructure:"project"`
	Branch         string        `mapstructure:"branch"`
	JSON           bool          `mapstructure:"json"`
	Output         string        `mapstructure:"output"`
	OutputFile     string        `mapstructure:"output-file"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Verbose        bool          `mapstructure:"verbose"`
	Color          string        `mapstructure:"color"`
	Width          int           `mapstructure:"width"`
	StoreBackend   string        `mapstructure:"store-backend"`
	StoreDBConnect string        `mapstructure:"store-db-connect"`

	// --- Fields shared by several subcommands ---
	Limit    int    `mapstructure:"limit"`
	Severity string `mapstructure:"severity"`
	Type     string `mapstructure:"type"`
	Status   string `mapstructure:"status"`
	Search   string `mapstructure:"search"`
	Language string `mapstructure:"language"`
	Metrics  string `mapstructure:"metrics"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`

	// --- Fields from issuesCmd.Flags() ---
	Resolution    string `mapstructure:"resolution"`
	Tag           string `mapstructure:"tag"`
	Rule          string `mapstructure:"rule"`
	CreatedAfter  string `mapstructure:"created-after"`
	CreatedBefore string `mapstructure:"created-before"`
	Author        string `mapstructure:"author"`
	Assignee      string `mapstructure:"assignee"`

	// --- Fields from coverageCmd.Flags() ---
	MinCoverage float64 `mapstructure:"min-coverage"`
	Sort        string  `mapstructure:"sort"`

	// --- Fields from other subcommands ---
	Details      bool          `mapstructure:"details"`
	Qualifier    string        `mapstructure:"qualifier"`
	FailOnError  bool          `mapstructure:"fail-on-error"`
	Record       bool          `mapstructure:"record"`
	WaitTimeout  time.Duration `mapstructure:"wait-timeout"`
	PollInterval time.Duration `mapstructure:"poll-interval"`

	// --- Fields from scanCmd.Flags() ---
	SourceDir      string        `mapstructure:"source-dir"`
	Sources        string        `mapstructure:"sources"`
	Tests          string        `mapstructure:"tests"`
	Exclusions     string        `mapstructure:"exclusions"`
	CoverageReport string        `mapstructure:"coverage-report"`
	ScannerPath    string        `mapstructure:"scanner-path"`
	Docker         bool          `mapstructure:"docker"`
	DockerImage    string        `mapstructure:"docker-image"`
	Wait           bool          `mapstructure:"wait"`
	ScanTimeout    time.Duration `mapstructure:"scan-timeout"`
	Define         []string      `mapstructure:"define"`

	// --- Fields from snapshotMigrateCmd.Flags() ---
	TargetVersion int `mapstructure:"target-version"`

	// --- Positional argument, set by sharedSetup ---
	Target string `mapstructure:"-"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateConnection(cfg, input); err != nil {
		return err
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateFilters(cfg, input); err != nil {
		return err
	}
	if err := processScanInputs(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// RequireProject fails with a configuration error when no project key is set.
func (c *Config) RequireProject() error {
	if strings.TrimSpace(c.Project) == "" {
		return &sonar.ConfigError{Message: ErrProjectRequired}
	}
	return nil
}

// Clone returns a copy of the config that can be adjusted per request.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Types = slices.Clone(c.Types)
	clone.Statuses = slices.Clone(c.Statuses)
	clone.Metrics = slices.Clone(c.Metrics)
	clone.Resolutions = slices.Clone(c.Resolutions)
	clone.Tags = slices.Clone(c.Tags)
	clone.Rules = slices.Clone(c.Rules)
	clone.Assignees = slices.Clone(c.Assignees)
	clone.Scan.Properties = maps.Clone(c.Scan.Properties)
	if c.MinCoverage != nil {
		minCov := *c.MinCoverage
		clone.MinCoverage = &minCov
	}
	return &clone
}

// validateConnection handles the server URL, credentials and HTTP timeout.
func validateConnection(cfg *Config, input *ConfigRawInput) error {
	raw := strings.TrimSpace(input.URL)
	if raw == "" {
		raw = DefaultURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url '%s'. must look like http://host:port", input.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server url scheme '%s'. must be http or https", u.Scheme)
	}
	cfg.URL = strings.TrimRight(raw, "/")
	cfg.Token = strings.TrimSpace(input.Token)
	cfg.Project = strings.TrimSpace(input.Project)
	cfg.Branch = strings.TrimSpace(input.Branch)

	cfg.Timeout = input.Timeout
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return nil
}

// validateSimpleInputs processes output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Verbose = input.Verbose
	cfg.Width = input.Width
	cfg.Details = input.Details
	cfg.FailOnError = input.FailOnError
	cfg.Record = input.Record
	cfg.TargetVersion = input.TargetVersion
	cfg.Target = strings.TrimSpace(input.Target)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.JSON {
		cfg.Output = schema.JSONOut
	} else {
		cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
		if cfg.Output == "" {
			cfg.Output = schema.TextOut
		}
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit cannot be negative or exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	cfg.WaitTimeout = input.WaitTimeout
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = DefaultWaitTimeout
	}
	cfg.PollInterval = input.PollInterval
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return nil
}

// validateFilters processes the search filters shared by the query commands.
func validateFilters(cfg *Config, input *ConfigRawInput) error {
	cfg.Severity = ""
	if strings.TrimSpace(input.Severity) != "" {
		sev, ok := schema.ParseSeverity(input.Severity)
		if !ok {
			return fmt.Errorf("invalid severity '%s'. must be INFO, MINOR, MAJOR, CRITICAL, BLOCKER", input.Severity)
		}
		cfg.Severity = sev
	}

	cfg.Types = SplitList(input.Type)
	cfg.Statuses = SplitList(input.Status)
	cfg.Search = strings.TrimSpace(input.Search)
	cfg.Language = strings.TrimSpace(input.Language)
	cfg.Metrics = SplitList(input.Metrics)
	cfg.From = strings.TrimSpace(input.From)
	cfg.To = strings.TrimSpace(input.To)
	cfg.Resolutions = SplitList(input.Resolution)
	cfg.Tags = SplitList(input.Tag)
	cfg.Rules = SplitList(input.Rule)
	now := time.Now()
	var err error
	if cfg.CreatedAfter, err = NormalizeDateFilter(input.CreatedAfter, now); err != nil {
		return fmt.Errorf("created-after: %w", err)
	}
	if cfg.CreatedBefore, err = NormalizeDateFilter(input.CreatedBefore, now); err != nil {
		return fmt.Errorf("created-before: %w", err)
	}
	cfg.Author = strings.TrimSpace(input.Author)
	cfg.Assignees = SplitList(input.Assignee)
	cfg.Qualifier = strings.TrimSpace(input.Qualifier)

	cfg.MinCoverage = nil
	if input.MinCoverage >= 0 {
		if input.MinCoverage > 100 {
			return fmt.Errorf("min-coverage must be between 0 and 100 (received %.2f)", input.MinCoverage)
		}
		minCov := input.MinCoverage
		cfg.MinCoverage = &minCov
	}

	cfg.CoverageSort = schema.CoverageSort(strings.ToLower(strings.TrimSpace(input.Sort)))
	if cfg.CoverageSort == "" {
		cfg.CoverageSort = schema.SortByCoverage
	}
	if _, ok := schema.ValidCoverageSorts[cfg.CoverageSort]; !ok {
		return fmt.Errorf("invalid sort '%s'. must be coverage, uncovered, file", input.Sort)
	}
	return nil
}

// processScanInputs handles the scanner settings and -D properties.
func processScanInputs(cfg *Config, input *ConfigRawInput) error {
	scan := ScanConfig{
		SourceDir:      orDefault(input.SourceDir, DefaultSourceDir),
		Sources:        orDefault(input.Sources, DefaultSources),
		Tests:          strings.TrimSpace(input.Tests),
		Exclusions:     strings.TrimSpace(input.Exclusions),
		CoverageReport: strings.TrimSpace(input.CoverageReport),
		ScannerPath:    orDefault(input.ScannerPath, DefaultScannerPath),
		Docker:         input.Docker,
		DockerImage:    orDefault(input.DockerImage, DefaultDockerImage),
		Wait:           input.Wait,
		Timeout:        input.ScanTimeout,
		Properties:     map[string]string{},
	}
	if scan.Timeout <= 0 {
		scan.Timeout = DefaultScanTimeout
	}
	for _, def := range input.Define {
		key, value, found := strings.Cut(def, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return fmt.Errorf("invalid property '%s'. expected key=value", def)
		}
		scan.Properties[key] = value
	}
	cfg.Scan = scan
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' with host:port")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the snapshot store configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// SplitList splits a comma-separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func orDefault(s, fallback string) string {
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return trimmed
	}
	return fallback
}
