package sonar

import (
	"context"
	"net/url"

	"github.com/huangsam/sonar-cli/schema"
)

// DefaultHotspotStatus is the hotspot status searched when none is given.
const DefaultHotspotStatus = "TO_REVIEW"

// DefaultQualifier selects projects in the component search.
const DefaultQualifier = "TRK"

// ProjectQuery holds the filters of a project search.
type ProjectQuery struct {
	Search    string
	Qualifier string
	Limit     int
}

// RuleQuery holds the filters of a rule search.
type RuleQuery struct {
	Search   string
	Language string
	Severity string
	Type     string
	Status   string
	Limit    int
}

// HotspotQuery holds the filters of a hotspot search.
type HotspotQuery struct {
	Project string
	Status  string
	Limit   int
}

type projectSearchResponse struct {
	Paging     *paging          `json:"paging"`
	Components []schema.Project `json:"components"`
}

type ruleSearchResponse struct {
	Total  int           `json:"total"`
	Paging *paging       `json:"paging"`
	Rules  []schema.Rule `json:"rules"`
}

type hotspotSearchResponse struct {
	Paging   *paging          `json:"paging"`
	Hotspots []schema.Hotspot `json:"hotspots"`
}

// searchAll aggregates an item-count endpoint whose response maps to items and a total.
func searchAll[R any, T any](ctx context.Context, c *Client, path string, base url.Values, limit int, unwrap func(R) ([]T, int)) ([]T, error) {
	return Collect(ctx, Pager[T]{
		Rule:  StopOnItemCount,
		Limit: limit,
		Fetch: func(ctx context.Context, page, pageSize int) (Page[T], error) {
			resp, err := getJSON[R](ctx, c, path, pageQuery(base, page, pageSize))
			if err != nil {
				return Page[T]{}, err
			}
			items, total := unwrap(resp)
			return NewPage(items, total), nil
		},
	})
}

// Projects returns the components matching q.
func (c *Client) Projects(ctx context.Context, q ProjectQuery) ([]schema.Project, error) {
	qualifier := q.Qualifier
	if qualifier == "" {
		qualifier = DefaultQualifier
	}
	base := url.Values{"qualifiers": {qualifier}}
	setIf(base, "q", q.Search)
	return searchAll(ctx, c, "/api/components/search", base, q.Limit,
		func(r projectSearchResponse) ([]schema.Project, int) {
			return r.Components, totalOf(0, r.Paging)
		})
}

// Rules returns the rules matching q.
func (c *Client) Rules(ctx context.Context, q RuleQuery) ([]schema.Rule, error) {
	base := url.Values{}
	setIf(base, "q", q.Search)
	setIf(base, "languages", q.Language)
	setIf(base, "severities", q.Severity)
	setIf(base, "types", q.Type)
	setIf(base, "statuses", q.Status)
	return searchAll(ctx, c, "/api/rules/search", base, q.Limit,
		func(r ruleSearchResponse) ([]schema.Rule, int) {
			return r.Rules, totalOf(r.Total, r.Paging)
		})
}

// Hotspots returns the security hotspots of a project matching q.
func (c *Client) Hotspots(ctx context.Context, q HotspotQuery) ([]schema.Hotspot, error) {
	status := q.Status
	if status == "" {
		status = DefaultHotspotStatus
	}
	base := c.withBranch(url.Values{"projectKey": {q.Project}, "status": {status}})
	return searchAll(ctx, c, "/api/hotspots/search", base, q.Limit,
		func(r hotspotSearchResponse) ([]schema.Hotspot, int) {
			return r.Hotspots, totalOf(0, r.Paging)
		})
}
