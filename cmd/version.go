package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd prints build metadata injected through -ldflags.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information for sonar-cli",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		info := [][2]string{
			{"Version", version},
			{"Commit", commit},
			{"Built", date},
			{"Go", runtime.Version()},
			{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
		}
		cmd.Println("sonar-cli")
		for _, kv := range info {
			cmd.Printf("  %-9s %s\n", kv[0]+":", kv[1])
		}
	},
}
