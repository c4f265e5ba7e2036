package outwriter

import (
	"fmt"
	"strconv"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/schema"
)

// WriteCoverage prints per-file coverage using the configured output format.
func (ow *OutWriter) WriteCoverage(files []schema.FileCoverage, project string, cfg *contract.Config) error {
	return writeView(cfg, coverageView(files, project, GetMaxTablePathWidth(cfg, 40)))
}

// WriteDuplications prints per-file duplications. Blocks are listed when details is set.
func (ow *OutWriter) WriteDuplications(files []schema.FileDuplication, project string, cfg *contract.Config) error {
	return writeView(cfg, duplicationsView(files, project, cfg.Details, GetMaxTablePathWidth(cfg, 40)))
}

func coverageView(files []schema.FileCoverage, project string, pathWidth int) view {
	v := view{
		name:      "coverage",
		payload:   files,
		title:     fmt.Sprintf("%d files with coverage data (project: %s)", len(files), project),
		headers:   []string{"File", "Coverage", "Uncovered", "Lines"},
		csvHeader: []string{"file", "coverage", "uncovered_lines", "lines_to_cover"},
	}
	for _, f := range files {
		v.rows = append(v.rows, []string{
			contract.TruncatePath(f.Path, pathWidth),
			fmtPercent(f.Coverage),
			strconv.Itoa(f.UncoveredLines),
			strconv.Itoa(f.LinesToCover),
		})
		v.csvRows = append(v.csvRows, []string{
			f.Path,
			strconv.FormatFloat(f.Coverage, 'f', 1, 64),
			strconv.Itoa(f.UncoveredLines),
			strconv.Itoa(f.LinesToCover),
		})
	}
	return v
}

func duplicationsView(files []schema.FileDuplication, project string, details bool, pathWidth int) view {
	v := view{
		name:      "duplications",
		payload:   files,
		title:     fmt.Sprintf("%d files with duplications (project: %s)", len(files), project),
		headers:   []string{"File", "Lines", "Blocks", "Density"},
		csvHeader: []string{"file", "duplicated_lines", "duplicated_blocks", "density", "from", "size", "duplicated_in", "duplicated_from"},
	}
	if details {
		v.headers = append(v.headers, "Duplicated In")
	}

	for _, f := range files {
		path := contract.TruncatePath(f.Path, pathWidth)
		lines := strconv.Itoa(f.DuplicatedLines)
		blocks := strconv.Itoa(f.DuplicatedBlocks)
		density := fmtPercent(f.Density)

		row := []string{path, lines, blocks, density}
		if details {
			row = append(row, "")
		}
		v.rows = append(v.rows, row)

		plain := []string{f.Path, lines, blocks, strconv.FormatFloat(f.Density, 'f', 1, 64)}
		if len(f.Blocks) == 0 {
			v.csvRows = append(v.csvRows, append(plain, "", "", "", ""))
		}
		for _, b := range f.Blocks {
			v.csvRows = append(v.csvRows, append(append([]string{}, plain...),
				strconv.Itoa(b.From), strconv.Itoa(b.Size), b.DuplicatedIn, strconv.Itoa(b.DuplicatedFrom)))
			if details {
				v.rows = append(v.rows, []string{
					fmt.Sprintf("L%d-%d", b.From, b.From+b.Size-1), "", "", "",
					fmt.Sprintf("%s:%d", b.DuplicatedIn, b.DuplicatedFrom),
				})
			}
		}
	}
	return v
}
