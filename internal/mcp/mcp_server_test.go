package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/sonar-cli/internal/contract"
	mcp_internal "github.com/huangsam/sonar-cli/internal/mcp"
	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newServer returns a server whose tools all talk to client, and records the
// config each call was made with.
func newServer(client contract.SonarClient, seen **contract.Config) *server.MCPServer {
	baseCfg := &contract.Config{URL: "http://sonar.test", Project: "demo", Output: schema.TextOut}
	s := mcp_internal.NewMCPServer(baseCfg, func(cfg *contract.Config) contract.SonarClient {
		if seen != nil {
			*seen = cfg
		}
		return client
	})
	return s
}

func call(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s should exist", name)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "handlers report failures as tool errors")
	require.NotNil(t, res)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServer_ToolsRegistered(t *testing.T) {
	s := newServer(&contract.MockSonarClient{}, nil)
	for _, name := range []string{
		"get_health", "get_quality_gate", "get_measures", "search_issues", "get_coverage",
		"get_duplications", "search_hotspots", "search_projects", "search_rules",
		"get_history", "get_source", "wait_for_analysis",
	} {
		assert.NotNil(t, s.GetTool(name), name)
	}
}

func TestMCPServer_SearchIssues(t *testing.T) {
	client := &contract.MockSonarClient{}
	client.On("SearchIssues", mock.Anything, mock.MatchedBy(func(q sonar.IssueQuery) bool {
		return q.Project == "other" &&
			len(q.Severities) == 2 &&
			assert.ObjectsAreEqual([]string{"BUG"}, q.Types) &&
			q.Limit == 5
	})).Return([]schema.Issue{{Key: "AX1", Severity: schema.SeverityBlocker}}, nil)

	var seen *contract.Config
	tools := newServer(client, &seen)
	res := call(t, tools, "search_issues", map[string]any{
		"project":  "other",
		"branch":   "feature/x",
		"severity": "critical",
		"type":     "BUG",
		"limit":    5.0,
	})

	assert.False(t, res.IsError, text(res))
	var issues []schema.Issue
	require.NoError(t, json.Unmarshal([]byte(text(res)), &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, "AX1", issues[0].Key)
	assert.Equal(t, "feature/x", seen.Branch)
	client.AssertExpectations(t)
}

func TestMCPServer_ValidationErrors(t *testing.T) {
	tools := newServer(&contract.MockSonarClient{}, nil)

	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		message string
	}{
		{name: "bad severity", tool: "search_issues", args: map[string]any{"severity": "urgent"}, message: "invalid severity 'urgent'"},
		{name: "history without metrics", tool: "get_history", args: map[string]any{}, message: "at least one metric is required"},
		{name: "source without file key", tool: "get_source", args: map[string]any{}, message: "a file key is required"},
		{name: "bad sort", tool: "get_coverage", args: map[string]any{"sort": "size"}, message: "invalid sort 'size'"},
		{name: "wait without task", tool: "wait_for_analysis", args: map[string]any{}, message: "a task ID is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, tools, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, text(res), tt.message)
		})
	}
}

func TestMCPServer_APIErrorBecomesToolError(t *testing.T) {
	client := &contract.MockSonarClient{}
	client.On("QualityGate", mock.Anything, "demo").
		Return(schema.QualityGate{}, &sonar.APIError{StatusCode: 404, Body: "Project not found"})

	res := call(t, newServer(client, nil), "get_quality_gate", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "quality gate failed")
	assert.Contains(t, text(res), "404")
}

func TestMCPServer_Coverage(t *testing.T) {
	client := &contract.MockSonarClient{}
	client.On("FileCoverage", mock.Anything, "demo").Return([]schema.FileCoverage{
		{Path: "a.go", Coverage: 95},
		{Path: "b.go", Coverage: 20},
	}, nil)

	res := call(t, newServer(client, nil), "get_coverage", map[string]any{"min_coverage": 50.0})
	require.False(t, res.IsError, text(res))
	var files []schema.FileCoverage
	require.NoError(t, json.Unmarshal([]byte(text(res)), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "b.go", files[0].Path)
}

func TestMCPServer_Source(t *testing.T) {
	client := &contract.MockSonarClient{}
	client.On("SourceRange", mock.Anything, "demo:main.go", 2, 4).
		Return([]schema.SourceLine{{Line: 2, Code: "import \"fmt\""}}, nil)

	res := call(t, newServer(client, nil), "get_source", map[string]any{
		"file_key": "demo:main.go",
		"from":     2.0,
		"to":       4.0,
	})
	assert.False(t, res.IsError, text(res))
	client.AssertExpectations(t)
}

func TestMCPServer_WaitForAnalysis(t *testing.T) {
	client := &contract.MockSonarClient{}
	client.On("WaitForAnalysis", mock.Anything, "AYtask", mock.MatchedBy(func(o sonar.WaitOptions) bool {
		return o.Timeout.Seconds() == 30
	})).Return(schema.AnalysisTask{ID: "AYtask", Status: schema.TaskSuccess}, nil)

	res := call(t, newServer(client, nil), "wait_for_analysis", map[string]any{
		"task_id":         "AYtask",
		"timeout_seconds": 30.0,
	})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), `"status": "SUCCESS"`)
}
