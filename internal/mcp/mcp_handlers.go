package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/sonar-cli/core"
	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg   *contract.Config
	newClient ClientFactory
}

// requestConfig clones the base config and applies the parameters every tool shares.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) *contract.Config {
	cfg := h.baseCfg.Clone()
	cfg.Output = schema.JSONOut
	if p := strings.TrimSpace(request.GetString("project", "")); p != "" {
		cfg.Project = p
	}
	if b := strings.TrimSpace(request.GetString("branch", "")); b != "" {
		cfg.Branch = b
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}
	return cfg
}

// result renders data as JSON text, or err as a tool error.
func result(action string, data any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err)), nil
	}
	jsonData, _ := json.MarshalIndent(data, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	health, err := core.GetHealth(ctx, h.newClient(cfg))
	return result("health check", health, err)
}

func (h *toolHandler) handleGetQualityGate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	gate, err := core.GetQualityGate(ctx, cfg, h.newClient(cfg))
	return result("quality gate", gate, err)
}

func (h *toolHandler) handleGetMeasures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	if m := request.GetString("metrics", ""); m != "" {
		cfg.Metrics = contract.SplitList(m)
	}
	measures, err := core.GetMeasures(ctx, cfg, h.newClient(cfg))
	return result("measures", measures, err)
}

func (h *toolHandler) handleSearchIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	if s := request.GetString("severity", ""); s != "" {
		sev, ok := schema.ParseSeverity(s)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid severity '%s'", s)), nil
		}
		cfg.Severity = sev
	}
	if v := request.GetString("type", ""); v != "" {
		cfg.Types = contract.SplitList(v)
	}
	if v := request.GetString("status", ""); v != "" {
		cfg.Statuses = contract.SplitList(v)
	}
	if v := request.GetString("tag", ""); v != "" {
		cfg.Tags = contract.SplitList(v)
	}
	if v := request.GetString("rule", ""); v != "" {
		cfg.Rules = contract.SplitList(v)
	}
	if v := request.GetString("language", ""); v != "" {
		cfg.Language = v
	}
	issues, err := core.GetIssues(ctx, cfg, h.newClient(cfg))
	return result("issue search", issues, err)
}

func (h *toolHandler) handleGetCoverage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	if args := request.GetArguments(); args["min_coverage"] != nil {
		minCov := request.GetFloat("min_coverage", 100)
		cfg.MinCoverage = &minCov
	}
	if s := request.GetString("sort", ""); s != "" {
		sortBy := schema.CoverageSort(strings.ToLower(s))
		if _, ok := schema.ValidCoverageSorts[sortBy]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid sort '%s'", s)), nil
		}
		cfg.CoverageSort = sortBy
	}
	files, err := core.GetCoverage(ctx, cfg, h.newClient(cfg))
	return result("coverage", files, err)
}

func (h *toolHandler) handleGetDuplications(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	cfg.Details = request.GetBool("details", false)
	files, err := core.GetDuplications(ctx, cfg, h.newClient(cfg))
	return result("duplications", files, err)
}

func (h *toolHandler) handleSearchHotspots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	if s := request.GetString("status", ""); s != "" {
		cfg.Statuses = []string{s}
	}
	hotspots, err := core.GetHotspots(ctx, cfg, h.newClient(cfg))
	return result("hotspot search", hotspots, err)
}

func (h *toolHandler) handleSearchProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	cfg.Search = request.GetString("search", "")
	projects, err := core.GetProjects(ctx, cfg, h.newClient(cfg))
	return result("project search", projects, err)
}

func (h *toolHandler) handleSearchRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	cfg.Search = request.GetString("search", "")
	cfg.Language = request.GetString("language", "")
	cfg.Severity = ""
	if s := request.GetString("severity", ""); s != "" {
		sev, ok := schema.ParseSeverity(s)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid severity '%s'", s)), nil
		}
		cfg.Severity = sev
	}
	rules, err := core.GetRules(ctx, cfg, h.newClient(cfg))
	return result("rule search", rules, err)
}

func (h *toolHandler) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	cfg.Metrics = contract.SplitList(request.GetString("metrics", ""))
	cfg.From = request.GetString("from", "")
	cfg.To = request.GetString("to", "")
	histories, err := core.GetHistory(ctx, cfg, h.newClient(cfg))
	return result("history", histories, err)
}

func (h *toolHandler) handleGetSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	cfg.Target = strings.TrimSpace(request.GetString("file_key", ""))
	cfg.From, cfg.To = "", ""
	if from := request.GetInt("from", 0); from != 0 {
		cfg.From = strconv.Itoa(from)
	}
	if to := request.GetInt("to", 0); to != 0 {
		cfg.To = strconv.Itoa(to)
	}
	lines, err := core.GetSource(ctx, cfg, h.newClient(cfg))
	return result("source", lines, err)
}

func (h *toolHandler) handleWaitForAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	if secs := request.GetInt("timeout_seconds", 0); secs > 0 {
		cfg.WaitTimeout = time.Duration(secs) * time.Second
	}
	task, err := core.WaitForTask(ctx, cfg, h.newClient(cfg), request.GetString("task_id", ""))
	return result("analysis wait", task, err)
}
