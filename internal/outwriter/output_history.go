package outwriter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/schema"
)

// WriteHistory prints the history of each metric, one row per point.
func (ow *OutWriter) WriteHistory(histories []schema.MeasureHistory, project string, cfg *contract.Config) error {
	return writeView(cfg, historyView(histories, project))
}

// WriteSource prints numbered source lines.
func (ow *OutWriter) WriteSource(lines []schema.SourceLine, component string, cfg *contract.Config) error {
	return writeView(cfg, sourceView(lines, component))
}

func historyView(histories []schema.MeasureHistory, project string) view {
	v := view{
		name:      "history",
		payload:   histories,
		title:     fmt.Sprintf("Measure history (project: %s)", project),
		headers:   []string{"Metric", "Date", "Value"},
		alignLeft: true,
	}
	for _, h := range histories {
		for _, p := range h.History {
			v.rows = append(v.rows, []string{h.Metric, p.Date, orDash(optString(p.Value))})
		}
	}
	return v
}

// sourceView renders the text form without a table so the code stays copyable.
func sourceView(lines []schema.SourceLine, component string) view {
	v := view{
		name:    "source",
		payload: lines,
		title:   "Source: " + component,
		headers: []string{"Line", "Code"},
	}
	for _, l := range lines {
		v.csvRows = append(v.csvRows, []string{strconv.Itoa(l.Line), l.Code})
	}
	if len(lines) > 0 {
		width := len(strconv.Itoa(lines[len(lines)-1].Line))
		var listing strings.Builder
		for i, l := range lines {
			if i > 0 {
				listing.WriteByte('\n')
			}
			fmt.Fprintf(&listing, "%*d | %s", width, l.Line, l.Code)
		}
		v.footer = listing.String()
	}
	if v.csvRows == nil {
		v.csvRows = [][]string{}
	}
	return v
}
