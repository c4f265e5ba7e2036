// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/sonar-cli/core"
	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ClientFactory builds the API client for one tool call.
type ClientFactory func(cfg *contract.Config) contract.SonarClient

func projectParam() mcp.ToolOption {
	return mcp.WithString("project", mcp.Description("Project key. Defaults to the configured project."))
}

func branchParam() mcp.ToolOption {
	return mcp.WithString("branch", mcp.Description("Branch to query. Defaults to the main branch."))
}

func limitParam() mcp.ToolOption {
	return mcp.WithNumber("limit", mcp.Description("Limit the number of results returned."))
}

// NewMCPServer initializes and configures the sonar-cli MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, newClient ClientFactory) *server.MCPServer {
	s := server.NewMCPServer(
		"Sonar Quality Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:   baseCfg,
		newClient: newClient,
	}

	// --- Server and project state ---
	s.AddTool(mcp.NewTool("get_health",
		mcp.WithDescription("Check whether the code quality server is up."),
	), h.handleGetHealth)

	s.AddTool(mcp.NewTool("get_quality_gate",
		mcp.WithDescription("Get the quality gate status of a project with its conditions."),
		projectParam(),
		branchParam(),
	), h.handleGetQualityGate)

	s.AddTool(mcp.NewTool("get_measures",
		mcp.WithDescription("Get project level metrics such as coverage, bugs and code smells."),
		projectParam(),
		branchParam(),
		mcp.WithString("metrics", mcp.Description("Comma-separated metric keys. Defaults to an overview set.")),
	), h.handleGetMeasures)

	// --- Searches ---
	s.AddTool(mcp.NewTool("search_issues",
		mcp.WithDescription("Search the issues of a project."),
		projectParam(),
		branchParam(),
		mcp.WithString("severity", mcp.Description("Minimum severity. Higher severities are included."),
			mcp.Enum("INFO", "MINOR", "MAJOR", "CRITICAL", "BLOCKER")),
		mcp.WithString("type", mcp.Description("Comma-separated issue types (BUG, VULNERABILITY, CODE_SMELL).")),
		mcp.WithString("status", mcp.Description("Comma-separated statuses. Defaults to OPEN,CONFIRMED,REOPENED.")),
		mcp.WithString("tag", mcp.Description("Comma-separated tags.")),
		mcp.WithString("rule", mcp.Description("Comma-separated rule keys.")),
		mcp.WithString("language", mcp.Description("Language key, e.g. go or java.")),
		limitParam(),
	), h.handleSearchIssues)

	s.AddTool(mcp.NewTool("get_coverage",
		mcp.WithDescription("Get per-file coverage of a project, lowest coverage first by default."),
		projectParam(),
		branchParam(),
		mcp.WithNumber("min_coverage", mcp.Description("Only return files with coverage strictly below this percentage.")),
		mcp.WithString("sort", mcp.Description("Sort order."), mcp.Enum("coverage", "uncovered", "file")),
		limitParam(),
	), h.handleGetCoverage)

	s.AddTool(mcp.NewTool("get_duplications",
		mcp.WithDescription("Get the files of a project that contain duplicated lines."),
		projectParam(),
		branchParam(),
		mcp.WithBoolean("details", mcp.Description("Resolve the duplicated blocks of each file.")),
		limitParam(),
	), h.handleGetDuplications)

	s.AddTool(mcp.NewTool("search_hotspots",
		mcp.WithDescription("Search the security hotspots of a project."),
		projectParam(),
		branchParam(),
		mcp.WithString("status", mcp.Description("Hotspot status. Defaults to TO_REVIEW."), mcp.Enum("TO_REVIEW", "REVIEWED")),
		limitParam(),
	), h.handleSearchHotspots)

	s.AddTool(mcp.NewTool("search_projects",
		mcp.WithDescription("Search the projects visible to the configured token."),
		mcp.WithString("search", mcp.Description("Part of the project name or key.")),
		limitParam(),
	), h.handleSearchProjects)

	s.AddTool(mcp.NewTool("search_rules",
		mcp.WithDescription("Search the coding rules known to the server."),
		mcp.WithString("search", mcp.Description("Part of the rule name or key.")),
		mcp.WithString("language", mcp.Description("Language key, e.g. go or java.")),
		mcp.WithString("severity", mcp.Description("Exact rule severity."),
			mcp.Enum("INFO", "MINOR", "MAJOR", "CRITICAL", "BLOCKER")),
		limitParam(),
	), h.handleSearchRules)

	s.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("Get the history of project metrics over time."),
		projectParam(),
		branchParam(),
		mcp.WithString("metrics", mcp.Description("Comma-separated metric keys, e.g. coverage,bugs."), mcp.Required()),
		mcp.WithString("from", mcp.Description("Start date (YYYY-MM-DD).")),
		mcp.WithString("to", mcp.Description("End date (YYYY-MM-DD).")),
	), h.handleGetHistory)

	s.AddTool(mcp.NewTool("get_source",
		mcp.WithDescription("Get the source lines of a file."),
		mcp.WithString("file_key", mcp.Description("File key, e.g. my-project:src/main.go."), mcp.Required()),
		mcp.WithNumber("from", mcp.Description("First line to return (1-based).")),
		mcp.WithNumber("to", mcp.Description("Last line to return.")),
	), h.handleGetSource)

	// --- Background tasks ---
	s.AddTool(mcp.NewTool("wait_for_analysis",
		mcp.WithDescription("Wait for a submitted analysis task to finish."),
		mcp.WithString("task_id", mcp.Description("The analysis task ID printed by the scanner."), mcp.Required()),
		mcp.WithNumber("timeout_seconds", mcp.Description("How long to wait before giving up.")),
	), h.handleWaitForAnalysis)

	return s
}

// StartMCPServer starts the sonar-cli MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg, core.NewClient)
	return server.ServeStdio(s)
}
