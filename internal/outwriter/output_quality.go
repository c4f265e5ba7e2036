package outwriter

import (
	"fmt"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/schema"
)

// WriteHealth prints the result of a server status probe.
func (ow *OutWriter) WriteHealth(health schema.ServerHealth, cfg *contract.Config) error {
	return writeView(cfg, healthView(health))
}

// WriteQualityGate prints the quality gate of a project and its conditions.
func (ow *OutWriter) WriteQualityGate(gate schema.QualityGate, project string, cfg *contract.Config) error {
	return writeView(cfg, qualityGateView(gate, project))
}

// WriteMeasures prints the measures of a component.
func (ow *OutWriter) WriteMeasures(measures schema.ComponentMeasures, cfg *contract.Config) error {
	return writeView(cfg, measuresView(measures))
}

func healthView(health schema.ServerHealth) view {
	icon := "OK"
	if !health.Healthy {
		icon = "FAIL"
	}
	return view{
		name:      "health",
		payload:   health,
		title:     fmt.Sprintf("[%s] Server at %s, status: %s", icon, health.URL, health.Status),
		csvHeader: []string{"url", "status", "healthy"},
		csvRows:   [][]string{{health.URL, health.Status, fmt.Sprint(health.Healthy)}},
	}
}

func qualityGateView(gate schema.QualityGate, project string) view {
	v := view{
		name:      "quality gate",
		payload:   gate,
		title:     fmt.Sprintf("Quality Gate: [%s] %s  (project: %s)", contract.GetGateLabel(gate.Status), gate.Status, project),
		headers:   []string{"Metric", "Status", "Value", "Threshold"},
		csvHeader: []string{"metric", "status", "value", "comparator", "threshold"},
		alignLeft: true,
	}
	for _, c := range gate.Conditions {
		threshold := orDash(c.ErrorThreshold)
		if c.Comparator != "" {
			threshold = c.Comparator + " " + threshold
		}
		v.rows = append(v.rows, []string{c.MetricKey, string(c.Status), orDash(c.ActualValue), threshold})
		v.csvRows = append(v.csvRows, []string{c.MetricKey, string(c.Status), c.ActualValue, c.Comparator, c.ErrorThreshold})
	}
	return v
}

func measuresView(measures schema.ComponentMeasures) view {
	v := view{
		name:      "measures",
		payload:   measures,
		title:     "Measures for: " + measures.Key,
		headers:   []string{"Metric", "Value"},
		alignLeft: true,
	}
	for _, m := range measures.Measures {
		v.rows = append(v.rows, []string{m.Metric, orDash(m.Value)})
	}
	return v
}
