package outwriter

import (
	"fmt"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
)

// WriteHotspots prints the security hotspots of a project.
func (ow *OutWriter) WriteHotspots(hotspots []schema.Hotspot, project string, cfg *contract.Config) error {
	return writeView(cfg, hotspotsView(hotspots, project, GetMaxTablePathWidth(cfg, 70)))
}

// WriteProjects prints the result of a project search.
func (ow *OutWriter) WriteProjects(projects []schema.Project, cfg *contract.Config) error {
	return writeView(cfg, projectsView(projects))
}

// WriteRules prints the result of a rule search.
func (ow *OutWriter) WriteRules(rules []schema.Rule, cfg *contract.Config) error {
	return writeView(cfg, rulesView(rules))
}

func hotspotsView(hotspots []schema.Hotspot, project string, pathWidth int) view {
	v := view{
		name:      "hotspots",
		payload:   hotspots,
		title:     fmt.Sprintf("%d security hotspots (project: %s)", len(hotspots), project),
		headers:   []string{"Probability", "Category", "File", "Line", "Message"},
		csvHeader: []string{"key", "probability", "category", "file", "line", "status", "message"},
		alignLeft: true,
	}
	for _, h := range hotspots {
		path := sonar.ExtractPath(h.Component, "")
		line := optInt(h.Line)
		v.rows = append(v.rows, []string{
			h.VulnerabilityProbability,
			orDash(h.SecurityCategory),
			contract.TruncatePath(path, pathWidth),
			line,
			h.Message,
		})
		v.csvRows = append(v.csvRows, []string{h.Key, h.VulnerabilityProbability, h.SecurityCategory, path, line, h.Status, h.Message})
	}
	return v
}

func projectsView(projects []schema.Project) view {
	v := view{
		name:      "projects",
		payload:   projects,
		title:     fmt.Sprintf("%d projects found", len(projects)),
		headers:   []string{"Key", "Name", "Visibility", "Last Analysis"},
		alignLeft: true,
	}
	for _, p := range projects {
		v.rows = append(v.rows, []string{p.Key, p.Name, orDash(p.Visibility), orDash(p.LastAnalysis)})
	}
	return v
}

func rulesView(rules []schema.Rule) view {
	v := view{
		name:      "rules",
		payload:   rules,
		title:     fmt.Sprintf("%d rules found", len(rules)),
		headers:   []string{"Key", "Severity", "Type", "Language", "Name"},
		csvHeader: []string{"key", "severity", "type", "language", "name"},
		alignLeft: true,
	}
	for _, r := range rules {
		lang := r.LangName
		if lang == "" {
			lang = r.Lang
		}
		v.rows = append(v.rows, []string{r.Key, contract.GetSeverityLabel(r.Severity), r.Type, lang, r.Name})
		v.csvRows = append(v.csvRows, []string{r.Key, string(r.Severity), r.Type, lang, r.Name})
	}
	return v
}
