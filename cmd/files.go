package cmd

import (
	"github.com/huangsam/sonar-cli/core"
	"github.com/spf13/cobra"
)

// coverageCmd shows per-file coverage.
var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Show the coverage of each file of a project.",
	Long: `Show the line coverage of each file of a project.

Files without a coverage value count as fully covered. Results are sorted with
the least covered files first unless --sort says otherwise.

Examples:
  # Files below 80% coverage
  sonar-cli coverage -p my-project --min-coverage 80

  # The ten files with the most uncovered lines
  sonar-cli coverage -p my-project --sort uncovered --limit 10`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Cannot get coverage", core.ExecuteCoverage),
}

// duplicationsCmd shows duplicated code.
var duplicationsCmd = &cobra.Command{
	Use:   "duplications",
	Short: "Show the files of a project that contain duplicated lines.",
	Long: `Show the files of a project that contain duplicated lines.

With --details each file's duplicated blocks are listed along with the other
file and line they duplicate.

Examples:
  sonar-cli duplications -p my-project
  sonar-cli duplications -p my-project --details --limit 5`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Cannot get duplications", core.ExecuteDuplications),
}

// sourceCmd prints the lines of a file.
var sourceCmd = &cobra.Command{
	Use:   "source <file-key>",
	Short: "Show the source of a file.",
	Long: `Show the source of a file as known to the server.

Examples:
  # Whole file
  sonar-cli source my-project:src/main.go

  # Lines 10 to 40
  sonar-cli source my-project:src/main.go --from 10 --to 40`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runQuery("Cannot get source", core.ExecuteSource),
}
