package cmd

import (
	"github.com/huangsam/sonar-cli/core"
	"github.com/spf13/cobra"
)

// waitCmd waits for a background analysis task.
var waitCmd = &cobra.Command{
	Use:   "wait <task-id>",
	Short: "Wait for an analysis task to finish.",
	Long: `Poll an analysis task until it succeeds, fails or the wait times out.

Exits with status 1 when the analysis failed, was canceled or did not finish
in time.

Examples:
  sonar-cli wait AYx9Uu1vZ5Gm8h3kQ2pT
  sonar-cli wait AYx9Uu1vZ5Gm8h3kQ2pT --wait-timeout 10m --poll-interval 10s`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Analysis did not complete", core.ExecuteWait),
}

// scanCmd runs the scanner.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run sonar-scanner for a project.",
	Long: `Run sonar-scanner directly or in Docker and submit the analysis.

A Cobertura coverage report is converted to the generic coverage format before
the scanner runs. With --wait the analysis is awaited and the quality gate is
printed.

Examples:
  # Scan with a local scanner
  sonar-cli scan -p my-project --sources src,lib

  # Scan in Docker with coverage and wait for the gate
  sonar-cli scan -p my-project --docker --coverage-report coverage.xml --wait

  # Pass extra scanner properties
  sonar-cli scan -p my-project -D sonar.go.tests.reportPaths=report.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Scan failed", core.ExecuteScan),
}
