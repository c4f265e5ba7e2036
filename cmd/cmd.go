// Package cmd defines the command-line interface for sonar-cli.
package cmd

import (
	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(qualityGateCmd)
	rootCmd.AddCommand(measuresCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(duplicationsCmd)
	rootCmd.AddCommand(hotspotsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the auth subcommands to the parent auth command
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotRecordCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("url", "", "Server URL (env SONAR_HOST_URL or SONAR_URL)")
	rootCmd.PersistentFlags().String("token", "", "Authentication token (env SONAR_TOKEN)")
	rootCmd.PersistentFlags().StringP("project", "p", "", "Project key (env SONAR_PROJECT_KEY)")
	rootCmd.PersistentFlags().StringP("branch", "b", "", "Branch name (env SONAR_BRANCH)")
	rootCmd.PersistentFlags().Bool("json", false, "Shorthand for --output json")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or json or csv")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Duration("timeout", contract.DefaultTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log requests and retries to stderr")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Snapshot store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for the snapshot store (sqlite path, mysql DSN or postgres DSN)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	qualityGateCmd.Flags().Bool("fail-on-error", false, "Exit with status 1 unless the gate is OK")
	qualityGateCmd.Flags().Bool("record", false, "Record the gate and measures in the snapshot store")

	measuresCmd.Flags().String("metrics", "", "Comma-separated metric keys (default: an overview set)")

	addLimitFlag(issuesCmd)
	issuesCmd.Flags().String("severity", "", "Minimum severity: INFO, MINOR, MAJOR, CRITICAL, BLOCKER")
	issuesCmd.Flags().String("type", "", "Comma-separated types: BUG, VULNERABILITY, CODE_SMELL")
	issuesCmd.Flags().String("status", "", "Comma-separated statuses (default OPEN,CONFIRMED,REOPENED)")
	issuesCmd.Flags().String("resolution", "", "Comma-separated resolutions")
	issuesCmd.Flags().String("tag", "", "Comma-separated tags")
	issuesCmd.Flags().String("rule", "", "Comma-separated rule keys")
	issuesCmd.Flags().String("created-after", "", "Only issues created after this date (YYYY-MM-DD)")
	issuesCmd.Flags().String("created-before", "", "Only issues created before this date (YYYY-MM-DD)")
	issuesCmd.Flags().String("author", "", "SCM author of the issue")
	issuesCmd.Flags().String("assignee", "", "Comma-separated assignee logins")
	issuesCmd.Flags().String("language", "", "Language key, e.g. go or java")

	addLimitFlag(coverageCmd)
	coverageCmd.Flags().Float64("min-coverage", -1, "Only show files with coverage below this percentage")
	coverageCmd.Flags().String("sort", string(schema.SortByCoverage), "Sort by: coverage or uncovered or file")

	addLimitFlag(duplicationsCmd)
	duplicationsCmd.Flags().Bool("details", false, "Show the duplicated blocks of each file")

	addLimitFlag(hotspotsCmd)
	hotspotsCmd.Flags().String("status", "TO_REVIEW", "Single hotspot status: TO_REVIEW or REVIEWED")

	addLimitFlag(projectsCmd)
	projectsCmd.Flags().String("search", "", "Part of the project name or key")
	projectsCmd.Flags().String("qualifier", "TRK", "Component qualifier")

	addLimitFlag(rulesCmd)
	rulesCmd.Flags().String("search", "", "Part of the rule name or key")
	rulesCmd.Flags().String("language", "", "Language key, e.g. go or java")
	rulesCmd.Flags().String("severity", "", "Exact rule severity")
	rulesCmd.Flags().String("type", "", "Comma-separated rule types")
	rulesCmd.Flags().String("status", "", "Comma-separated rule statuses")

	historyCmd.Flags().String("metrics", "", "Comma-separated metric keys (required)")
	historyCmd.Flags().String("from", "", "Start date (YYYY-MM-DD)")
	historyCmd.Flags().String("to", "", "End date (YYYY-MM-DD)")

	sourceCmd.Flags().String("from", "", "First line to show")
	sourceCmd.Flags().String("to", "", "Last line to show")

	addWaitFlags(waitCmd)

	addWaitFlags(scanCmd)
	scanCmd.Flags().String("source-dir", contract.DefaultSourceDir, "Project base directory")
	scanCmd.Flags().String("sources", contract.DefaultSources, "Comma-separated source directories relative to --source-dir")
	scanCmd.Flags().String("tests", "", "Comma-separated test directories")
	scanCmd.Flags().String("exclusions", "", "Comma-separated exclusion patterns")
	scanCmd.Flags().String("coverage-report", "", "Coverage report; Cobertura XML is converted automatically")
	scanCmd.Flags().String("scanner-path", contract.DefaultScannerPath, "Path to the sonar-scanner executable")
	scanCmd.Flags().Bool("docker", false, "Run the scanner in Docker")
	scanCmd.Flags().String("docker-image", contract.DefaultDockerImage, "Scanner Docker image")
	scanCmd.Flags().Bool("wait", false, "Wait for the analysis and print the quality gate")
	scanCmd.Flags().Duration("scan-timeout", contract.DefaultScanTimeout, "Maximum scanner run time")
	scanCmd.Flags().StringArrayP("define", "D", nil, "Extra scanner property key=value (repeatable)")

	addLimitFlag(snapshotListCmd)
	snapshotMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}

// addLimitFlag declares --limit on a search command.
func addLimitFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("limit", "l", 0, "Maximum number of results (0 = all)")
}

// addWaitFlags declares the analysis polling flags.
func addWaitFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("wait-timeout", contract.DefaultWaitTimeout, "Maximum time to wait for the analysis")
	cmd.Flags().Duration("poll-interval", contract.DefaultPollInterval, "Time between task status checks")
}
