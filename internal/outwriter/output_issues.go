package outwriter

import (
	"fmt"
	"strings"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
)

// WriteIssues prints the issues of a project using the configured output format.
func (ow *OutWriter) WriteIssues(issues []schema.Issue, project string, cfg *contract.Config) error {
	return writeView(cfg, issuesView(issues, project, GetMaxTablePathWidth(cfg, 60)))
}

// issueLine returns the line of an issue, falling back to its text range.
func issueLine(issue schema.Issue) *int {
	if issue.Line != nil {
		return issue.Line
	}
	if issue.TextRange != nil {
		return &issue.TextRange.StartLine
	}
	return nil
}

func issuesView(issues []schema.Issue, project string, pathWidth int) view {
	v := view{
		name:      "issues",
		payload:   issues,
		title:     fmt.Sprintf("%d issues found (project: %s)", len(issues), project),
		headers:   []string{"Severity", "Type", "File", "Line", "Message"},
		csvHeader: []string{"key", "severity", "type", "file", "line", "rule", "status", "message", "tags"},
		alignLeft: true,
	}
	for _, issue := range issues {
		path := sonar.ExtractPath(issue.Component, "")
		line := optInt(issueLine(issue))
		v.rows = append(v.rows, []string{
			contract.GetSeverityLabel(issue.Severity),
			issue.Type,
			contract.TruncatePath(path, pathWidth),
			line,
			issue.Message,
		})
		v.csvRows = append(v.csvRows, []string{
			issue.Key,
			string(issue.Severity),
			issue.Type,
			path,
			line,
			issue.Rule,
			issue.Status,
			issue.Message,
			strings.Join(issue.Tags, "|"),
		})
	}
	return v
}
