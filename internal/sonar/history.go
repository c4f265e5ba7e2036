package sonar

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/huangsam/sonar-cli/schema"
)

// HistoryQuery holds the filters of a measure history search.
type HistoryQuery struct {
	Project string
	Metrics []string
	From    string
	To      string
}

type historyResponse struct {
	Paging   *paging                 `json:"paging"`
	Measures []schema.MeasureHistory `json:"measures"`
}

// MergeHistory folds one page of histories into acc. Points of a known
// metric are appended in arrival order and unseen metrics are appended as
// new entries, so metrics keep their first-seen order.
func MergeHistory(acc, page []schema.MeasureHistory) []schema.MeasureHistory {
	index := make(map[string]int, len(acc))
	for i, m := range acc {
		index[m.Metric] = i
	}
	for _, m := range page {
		if i, ok := index[m.Metric]; ok {
			acc[i].History = append(acc[i].History, m.History...)
			continue
		}
		index[m.Metric] = len(acc)
		acc = append(acc, schema.MeasureHistory{Metric: m.Metric, History: slices.Clone(m.History)})
	}
	return acc
}

// History returns the merged history of the requested metrics. The server
// pages over points rather than metrics, so a page holds at most one page
// worth of points per metric.
func (c *Client) History(ctx context.Context, q HistoryQuery) ([]schema.MeasureHistory, error) {
	base := c.withBranch(url.Values{
		"component": {q.Project},
		"metrics":   {strings.Join(q.Metrics, ",")},
	})
	setIf(base, "from", q.From)
	setIf(base, "to", q.To)

	return Collect(ctx, Pager[schema.MeasureHistory]{
		Rule:  StopOnPageArithmetic,
		Merge: MergeHistory,
		Fetch: func(ctx context.Context, page, pageSize int) (Page[schema.MeasureHistory], error) {
			resp, err := getJSON[historyResponse](ctx, c, "/api/measures/search_history", pageQuery(base, page, pageSize))
			if err != nil {
				return Page[schema.MeasureHistory]{}, err
			}
			points := 0
			for _, m := range resp.Measures {
				points = max(points, len(m.History))
			}
			return Page[schema.MeasureHistory]{
				Items: resp.Measures,
				Total: totalOf(0, resp.Paging),
				Size:  points,
			}, nil
		},
	})
}
