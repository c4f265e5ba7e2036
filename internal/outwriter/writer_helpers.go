package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// view is one renderable result: the JSON document plus its tabular form.
type view struct {
	name      string     // used in the "Wrote ..." message
	payload   any        // JSON document
	title     string     // printed above the text table
	headers   []string   // text table header
	rows      [][]string // text rows, may carry color codes
	csvHeader []string   // defaults to lower-cased headers
	csvRows   [][]string // defaults to rows
	footer    string     // printed below the text table
	alignLeft bool
}

// writeView writes v in the configured output format to the configured destination.
func writeView(cfg *contract.Config, v view) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return renderView(w, cfg.Output, v)
	}, fmt.Sprintf("Wrote %s %s", strings.ToUpper(string(cfg.Output)), v.name))
}

// renderView dispatches on the output mode.
func renderView(w io.Writer, mode schema.OutputMode, v view) error {
	switch mode {
	case schema.JSONOut:
		return writeJSON(w, v.payload)
	case schema.CSVOut:
		header := v.csvHeader
		if header == nil {
			header = make([]string, len(v.headers))
			for i, h := range v.headers {
				header[i] = strings.ReplaceAll(strings.ToLower(h), " ", "_")
			}
		}
		rows := v.csvRows
		if rows == nil {
			rows = v.rows
		}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			return cw.WriteAll(rows)
		})
	default:
		return writeTable(w, v)
	}
}

// writeTable prints the title, the table (if there are rows) and the footer.
func writeTable(w io.Writer, v view) error {
	if v.title != "" {
		if _, err := fmt.Fprintln(w, v.title); err != nil {
			return err
		}
	}
	if len(v.rows) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header(v.headers)
		if !v.alignLeft {
			table.Configure(func(cfg *tablewriter.Config) {
				cfg.Row.Alignment.Global = tw.AlignRight
			})
		}
		if err := table.Bulk(v.rows); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	if v.footer != "" {
		if _, err := fmt.Fprintln(w, v.footer); err != nil {
			return err
		}
	}
	return nil
}

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	return writeRows(csvWriter)
}

// orDash renders an empty value as "-".
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func fmtPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
