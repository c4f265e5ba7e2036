// Package coverage converts Cobertura reports into the generic coverage
// format accepted by the code-quality server.
package coverage

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// ConvertedName is the file written next to the sources by a conversion.
const ConvertedName = "coverage-sonar.xml"

// detectLines is how many leading lines IsCobertura inspects.
const detectLines = 5

// IsCobertura reports whether the file at path is a Cobertura report. A file
// already in the generic format, or one that cannot be read, is not.
func IsCobertura(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()
	return isCobertura(f)
}

func isCobertura(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	for i := 0; i < detectLines && scanner.Scan(); i++ {
		lower := strings.ToLower(scanner.Text())
		if strings.Contains(lower, "<!doctype coverage") ||
			(strings.Contains(lower, "<coverage") && strings.Contains(lower, "branch-rate")) {
			return true
		}
		if strings.Contains(lower, "<coverage version=") {
			return false
		}
	}
	return false
}

type lineToCover struct {
	LineNumber int  `xml:"lineNumber,attr"`
	Covered    bool `xml:"covered,attr"`
}

type genericFile struct {
	Path  string        `xml:"path,attr"`
	Lines []lineToCover `xml:"lineToCover"`
}

type genericCoverage struct {
	XMLName xml.Name      `xml:"coverage"`
	Version string        `xml:"version,attr"`
	Files   []genericFile `xml:"file"`
}

// ConvertFile converts the Cobertura report at input into the generic
// format at output. Paths are made relative to workDir.
func ConvertFile(input, output, workDir string) error {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open coverage file: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Convert(in, out, workDir); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Convert streams a Cobertura report from r and writes the generic format to w.
// Lines of the same file are deduplicated (covered if any hit is positive) and
// sorted; classes of the same file are merged in first-seen order.
func Convert(r io.Reader, w io.Writer, workDir string) error {
	files, err := collect(r, newPathResolver(workDir))
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, "<?xml version=\"1.0\"?>\n"); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(genericCoverage{Version: "1", Files: files}); err != nil {
		return fmt.Errorf("failed to write coverage: %w", err)
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// collect decodes the Cobertura tokens and groups the line hits by file.
func collect(r io.Reader, paths pathResolver) ([]genericFile, error) {
	var (
		order   []string
		hits    = map[string]map[int]bool{}
		source  string
		current string
	)

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse Cobertura report: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "source":
			var text string
			if err := dec.DecodeElement(&text, &start); err != nil {
				return nil, fmt.Errorf("failed to parse source element: %w", err)
			}
			if text = strings.TrimSpace(text); source == "" && text != "" {
				source = paths.relative(text)
			}
		case "class":
			filename := attr(start, "filename")
			if filename == "" {
				continue
			}
			current = paths.relative(joinSource(source, filename))
			if _, seen := hits[current]; !seen {
				hits[current] = map[int]bool{}
				order = append(order, current)
			}
		case "line":
			if current == "" {
				continue
			}
			number, err1 := strconv.Atoi(attr(start, "number"))
			count, err2 := strconv.Atoi(attr(start, "hits"))
			if err1 != nil || err2 != nil {
				continue
			}
			hits[current][number] = hits[current][number] || count > 0
		}
	}

	files := make([]genericFile, 0, len(order))
	for _, path := range order {
		lines := hits[path]
		if len(lines) == 0 {
			continue
		}
		numbers := make([]int, 0, len(lines))
		for n := range lines {
			numbers = append(numbers, n)
		}
		slices.Sort(numbers)

		file := genericFile{Path: path, Lines: make([]lineToCover, len(numbers))}
		for i, n := range numbers {
			file.Lines[i] = lineToCover{LineNumber: n, Covered: lines[n]}
		}
		files = append(files, file)
	}
	return files, nil
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func joinSource(source, filename string) string {
	prefix := strings.TrimRight(source, `/\`)
	if prefix == "" {
		return filename
	}
	return prefix + "/" + filename
}

// pathResolver strips the work directory from absolute report paths. Both the
// resolved and the given spelling of the directory are tried.
type pathResolver struct {
	prefixes []string
}

func newPathResolver(workDir string) pathResolver {
	var prefixes []string
	add := func(p string) {
		p = strings.TrimRight(filepath.ToSlash(p), "/")
		if p != "" && !slices.Contains(prefixes, p) {
			prefixes = append(prefixes, p)
		}
	}
	if abs, err := filepath.Abs(workDir); err == nil {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			add(resolved)
		}
		add(abs)
	}
	add(workDir)
	return pathResolver{prefixes: prefixes}
}

func (p pathResolver) relative(path string) string {
	path = filepath.ToSlash(path)
	for _, prefix := range p.prefixes {
		if path == prefix {
			return ""
		}
		if rest, ok := strings.CutPrefix(path, prefix+"/"); ok {
			return rest
		}
	}
	return path
}
