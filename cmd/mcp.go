package cmd

import (
	"github.com/huangsam/sonar-cli/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the sonar-cli MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents query the server through
standard tools: quality gate, measures, issues, coverage, duplications,
hotspots, projects, rules, history, source and analysis waits.

The global flags and environment provide the defaults of every tool call.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}
