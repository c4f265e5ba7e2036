// Package schema has the records and enums shared by all parts of sonar-cli.
package schema

// TextRange locates an issue inside a source file.
type TextRange struct {
	StartLine   int `json:"startLine"`
	EndLine     int `json:"endLine"`
	StartOffset int `json:"startOffset"`
	EndOffset   int `json:"endOffset"`
}

// Issue is a single finding reported by the server.
type Issue struct {
	Key          string     `json:"key"`
	Rule         string     `json:"rule"`
	Severity     Severity   `json:"severity"`
	Component    string     `json:"component"`
	Project      string     `json:"project,omitempty"`
	Line         *int       `json:"line,omitempty"`
	TextRange    *TextRange `json:"textRange,omitempty"`
	Message      string     `json:"message"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	Resolution   string     `json:"resolution,omitempty"`
	Effort       string     `json:"effort,omitempty"`
	Debt         string     `json:"debt,omitempty"`
	Author       string     `json:"author,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	CreationDate string     `json:"creationDate,omitempty"`
	UpdateDate   string     `json:"updateDate,omitempty"`
}

// GateCondition is one threshold check of a quality gate.
type GateCondition struct {
	Status         GateStatus `json:"status"`
	MetricKey      string     `json:"metricKey"`
	Comparator     string     `json:"comparator,omitempty"`
	ErrorThreshold string     `json:"errorThreshold,omitempty"`
	ActualValue    string     `json:"actualValue,omitempty"`
}

// Passed reports whether the condition holds.
func (c GateCondition) Passed() bool {
	return c.Status == GateOK
}

// QualityGate is the quality gate result of a project.
type QualityGate struct {
	Status     GateStatus      `json:"status"`
	Conditions []GateCondition `json:"conditions,omitempty"`
}

// Passed reports whether the gate as a whole holds.
func (q QualityGate) Passed() bool {
	return q.Status == GateOK
}

// Measure is a single metric value of a component.
type Measure struct {
	Metric    string `json:"metric"`
	Value     string `json:"value,omitempty"`
	BestValue bool   `json:"bestValue,omitempty"`
}

// ComponentMeasures holds the measures of one component.
type ComponentMeasures struct {
	Key       string    `json:"key"`
	Name      string    `json:"name,omitempty"`
	Qualifier string    `json:"qualifier,omitempty"`
	Path      string    `json:"path,omitempty"`
	Measures  []Measure `json:"measures"`
}

// Map flattens the measures into a metric-name to value map.
func (c ComponentMeasures) Map() map[string]string {
	out := make(map[string]string, len(c.Measures))
	for _, m := range c.Measures {
		out[m.Metric] = m.Value
	}
	return out
}

// Hotspot is a security hotspot awaiting or after review.
type Hotspot struct {
	Key                      string `json:"key"`
	Component                string `json:"component"`
	Project                  string `json:"project,omitempty"`
	SecurityCategory         string `json:"securityCategory,omitempty"`
	VulnerabilityProbability string `json:"vulnerabilityProbability"`
	Status                   string `json:"status"`
	Resolution               string `json:"resolution,omitempty"`
	Line                     *int   `json:"line,omitempty"`
	Message                  string `json:"message"`
	RuleKey                  string `json:"ruleKey,omitempty"`
}

// Project is an entry of the component search.
type Project struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Qualifier    string `json:"qualifier"`
	Visibility   string `json:"visibility,omitempty"`
	LastAnalysis string `json:"lastAnalysisDate,omitempty"`
}

// Rule is a coding rule known to the server.
type Rule struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Severity Severity `json:"severity,omitempty"`
	Type     string   `json:"type,omitempty"`
	Lang     string   `json:"lang,omitempty"`
	LangName string   `json:"langName,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// HistoryPoint is one dated value of a metric.
type HistoryPoint struct {
	Date  string  `json:"date"`
	Value *string `json:"value,omitempty"`
}

// MeasureHistory is the ordered history of one metric.
type MeasureHistory struct {
	Metric  string         `json:"metric"`
	History []HistoryPoint `json:"history"`
}

// SourceLine is one numbered line of source code.
type SourceLine struct {
	Line int    `json:"line"`
	Code string `json:"code"`
}

// ServerHealth is the outcome of a server status probe.
type ServerHealth struct {
	URL     string `json:"url"`
	Status  string `json:"status"`
	Healthy bool   `json:"healthy"`
}

// AuthStatus describes the stored credentials. Token is always masked.
type AuthStatus struct {
	ConfigPath string `json:"configPath"`
	URL        string `json:"url,omitempty"`
	Token      string `json:"token,omitempty"`
	Healthy    bool   `json:"healthy"`
}
