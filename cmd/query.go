package cmd

import (
	"github.com/huangsam/sonar-cli/core"
	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/spf13/cobra"
)

// healthCmd checks the server status.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the server is up.",
	Long: `Query the server status endpoint.

Exits with status 1 when the server answers with anything but UP, which makes
the command usable as a readiness probe in CI pipelines.

Examples:
  # Check the default server
  sonar-cli health

  # Check another server
  sonar-cli health --url https://sonar.example.com`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Cannot check server health", core.ExecuteHealth),
}

// qualityGateCmd shows the quality gate of a project.
var qualityGateCmd = &cobra.Command{
	Use:   "quality-gate",
	Short: "Show the quality gate status of a project.",
	Long: `Show the quality gate status of a project with each of its conditions.

Examples:
  # Show the gate
  sonar-cli quality-gate -p my-project

  # Fail a CI job when the gate does not pass
  sonar-cli quality-gate -p my-project --fail-on-error

  # Keep a local history of gate results
  sonar-cli quality-gate -p my-project --record`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		var store contract.SnapshotStore
		if cfg.Record {
			store = openStore()
			defer func() { _ = store.Close() }()
		}
		if err := core.ExecuteQualityGate(rootCtx, cfg, core.NewClient(cfg), store); err != nil {
			exitOnError("Cannot get quality gate", err)
		}
	},
}

// measuresCmd shows project level metrics.
var measuresCmd = &cobra.Command{
	Use:   "measures",
	Short: "Show project level metrics.",
	Long: `Show project level metrics such as lines of code, coverage and ratings.

Examples:
  # Overview metrics
  sonar-cli measures -p my-project

  # Selected metrics as JSON
  sonar-cli measures -p my-project --metrics coverage,bugs --json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Cannot get measures", core.ExecuteMeasures),
}

// issuesCmd searches issues.
var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Search the issues of a project.",
	Long: `Search the issues of a project. All pages are fetched unless --limit is set.

A severity selects that severity and everything above it.

Examples:
  # Open issues
  sonar-cli issues -p my-project

  # Critical and blocker bugs
  sonar-cli issues -p my-project --severity critical --type BUG

  # Export to CSV
  sonar-cli issues -p my-project --output csv --output-file issues.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Cannot search issues", core.ExecuteIssues),
}

// hotspotsCmd searches security hotspots.
var hotspotsCmd = &cobra.Command{
	Use:     "hotspots",
	Short:   "Search the security hotspots of a project.",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Cannot search hotspots", core.ExecuteHotspots),
}

// projectsCmd searches projects.
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Search the projects visible to the token.",
	Long: `Search the projects visible to the configured token.

Examples:
  sonar-cli projects
  sonar-cli projects --search api --limit 20`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Cannot search projects", core.ExecuteProjects),
}

// rulesCmd searches coding rules.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Search the coding rules known to the server.",
	Long: `Search the coding rules known to the server.

Unlike issues, --severity matches the rule severity exactly.

Examples:
  sonar-cli rules --language go
  sonar-cli rules --search "sql injection" --type VULNERABILITY`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Cannot search rules", core.ExecuteRules),
}

// historyCmd shows metric history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the history of project metrics.",
	Long: `Show how project metrics changed across analyses.

Examples:
  sonar-cli history -p my-project --metrics coverage,bugs
  sonar-cli history -p my-project --metrics coverage --from 2024-01-01 --to 2024-06-30`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Cannot get measure history", core.ExecuteHistory),
}
