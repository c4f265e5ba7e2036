package sonar

import (
	"context"
	"net/url"

	"github.com/huangsam/sonar-cli/schema"
)

// IssueQuery holds the filters of an issue search.
type IssueQuery struct {
	Project       string
	Statuses      []string
	Severities    []schema.Severity
	Types         []string
	Resolutions   []string
	Tags          []string
	Rules         []string
	CreatedAfter  string
	CreatedBefore string
	Author        string
	Assignees     []string
	Languages     []string
	Limit         int
}

type issueSearchResponse struct {
	Total  int            `json:"total"`
	Paging *paging        `json:"paging"`
	Issues []schema.Issue `json:"issues"`
}

func (c *Client) issueQuery(q IssueQuery) url.Values {
	v := url.Values{}
	v.Set("projectKeys", q.Project)
	statuses := q.Statuses
	if len(statuses) == 0 {
		statuses = schema.DefaultIssueStatuses
	}
	setList(v, "statuses", statuses)
	if len(q.Severities) > 0 {
		v.Set("severities", schema.JoinSeverities(q.Severities))
	}
	setList(v, "types", q.Types)
	setList(v, "resolutions", q.Resolutions)
	setList(v, "tags", q.Tags)
	setList(v, "rules", q.Rules)
	setIf(v, "createdAfter", q.CreatedAfter)
	setIf(v, "createdBefore", q.CreatedBefore)
	setIf(v, "author", q.Author)
	setList(v, "assignees", q.Assignees)
	setList(v, "languages", q.Languages)
	return c.withBranch(v)
}

// SearchIssues returns every issue matching q, up to q.Limit when set.
func (c *Client) SearchIssues(ctx context.Context, q IssueQuery) ([]schema.Issue, error) {
	return searchAll(ctx, c, "/api/issues/search", c.issueQuery(q), q.Limit,
		func(r issueSearchResponse) ([]schema.Issue, int) {
			return r.Issues, totalOf(r.Total, r.Paging)
		})
}
