package sonar

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/huangsam/sonar-cli/schema"
)

type projectStatusResponse struct {
	ProjectStatus schema.QualityGate `json:"projectStatus"`
}

type componentMeasuresResponse struct {
	Component schema.ComponentMeasures `json:"component"`
}

type componentTreeResponse struct {
	Paging     *paging                    `json:"paging"`
	Components []schema.ComponentMeasures `json:"components"`
}

// QualityGate returns the quality gate status of a project.
func (c *Client) QualityGate(ctx context.Context, project string) (schema.QualityGate, error) {
	q := c.withBranch(url.Values{"projectKey": {project}})
	resp, err := getJSON[projectStatusResponse](ctx, c, "/api/qualitygates/project_status", q)
	if err != nil {
		return schema.QualityGate{}, err
	}
	return resp.ProjectStatus, nil
}

// Measures returns the requested metrics of a project.
func (c *Client) Measures(ctx context.Context, project string, metrics []string) (schema.ComponentMeasures, error) {
	q := c.withBranch(url.Values{
		"component":  {project},
		"metricKeys": {strings.Join(metrics, ",")},
	})
	resp, err := getJSON[componentMeasuresResponse](ctx, c, "/api/measures/component", q)
	if err != nil {
		return schema.ComponentMeasures{}, err
	}
	return resp.Component, nil
}

func (c *Client) fetchFileTree(ctx context.Context, project string, metrics []string, page, pageSize int) (componentTreeResponse, error) {
	base := c.withBranch(url.Values{
		"component":  {project},
		"metricKeys": {strings.Join(metrics, ",")},
		"qualifiers": {"FIL"},
	})
	return getJSON[componentTreeResponse](ctx, c, "/api/measures/component_tree", pageQuery(base, page, pageSize))
}

// FileCoverage returns the coverage of every file of a project.
func (c *Client) FileCoverage(ctx context.Context, project string) ([]schema.FileCoverage, error) {
	return Collect(ctx, Pager[schema.FileCoverage]{
		Rule: StopOnItemCount,
		Fetch: func(ctx context.Context, page, pageSize int) (Page[schema.FileCoverage], error) {
			resp, err := c.fetchFileTree(ctx, project, schema.CoverageMetrics, page, pageSize)
			if err != nil {
				return Page[schema.FileCoverage]{}, err
			}
			files := make([]schema.FileCoverage, 0, len(resp.Components))
			for _, comp := range resp.Components {
				files = append(files, toFileCoverage(comp))
			}
			return NewPage(files, totalOf(0, resp.Paging)), nil
		},
	})
}

// FilesWithDuplications returns the files of a project with at least one
// duplicated line, up to limit when set. Blocks are not resolved here.
func (c *Client) FilesWithDuplications(ctx context.Context, project string, limit int) ([]schema.FileDuplication, error) {
	return Collect(ctx, Pager[schema.FileDuplication]{
		Rule:  StopOnPageArithmetic,
		Limit: limit,
		Fetch: func(ctx context.Context, page, pageSize int) (Page[schema.FileDuplication], error) {
			resp, err := c.fetchFileTree(ctx, project, schema.DuplicationMetrics, page, pageSize)
			if err != nil {
				return Page[schema.FileDuplication]{}, err
			}
			var files []schema.FileDuplication
			for _, comp := range resp.Components {
				if dup, ok := toFileDuplication(comp); ok {
					files = append(files, dup)
				}
			}
			return Page[schema.FileDuplication]{
				Items: files,
				Total: totalOf(0, resp.Paging),
				Size:  len(resp.Components),
			}, nil
		},
	})
}

func toFileCoverage(comp schema.ComponentMeasures) schema.FileCoverage {
	m := comp.Map()
	cov := 100.0
	if v, ok := m["coverage"]; ok {
		cov = parseFloat(v, 100)
	}
	return schema.FileCoverage{
		Path:           ExtractPath(comp.Key, comp.Path),
		Coverage:       cov,
		UncoveredLines: parseInt(m["uncovered_lines"]),
		LinesToCover:   parseInt(m["lines_to_cover"]),
	}
}

func toFileDuplication(comp schema.ComponentMeasures) (schema.FileDuplication, bool) {
	m := comp.Map()
	lines, ok := m["duplicated_lines"]
	if !ok || lines == "" || lines == "0" {
		return schema.FileDuplication{}, false
	}
	return schema.FileDuplication{
		Key:              comp.Key,
		Path:             ExtractPath(comp.Key, comp.Path),
		DuplicatedLines:  parseInt(lines),
		DuplicatedBlocks: parseInt(m["duplicated_blocks"]),
		Density:          parseFloat(m["duplicated_lines_density"], 0),
	}, true
}

// ExtractPath returns the project-relative path of a component. It prefers
// the explicit path and otherwise strips the "project:" prefix of the key.
func ExtractPath(key, path string) string {
	if path != "" {
		return path
	}
	if _, rest, found := strings.Cut(key, ":"); found {
		return rest
	}
	return key
}

func parseInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return int(parseFloat(v, 0))
	}
	return n
}

func parseFloat(v string, fallback float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
