package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
)

// FilterCoverage keeps the files below minCoverage (all files when nil),
// sorts them by the requested key and applies limit when positive.
func FilterCoverage(files []schema.FileCoverage, minCoverage *float64, sortBy schema.CoverageSort, limit int) []schema.FileCoverage {
	out := make([]schema.FileCoverage, 0, len(files))
	for _, f := range files {
		if minCoverage != nil && f.Coverage >= *minCoverage {
			continue
		}
		out = append(out, f)
	}

	switch sortBy {
	case schema.SortByUncovered:
		slices.SortStableFunc(out, func(a, b schema.FileCoverage) int {
			return cmp.Or(cmp.Compare(b.UncoveredLines, a.UncoveredLines), cmp.Compare(a.Path, b.Path))
		})
	case schema.SortByFile:
		slices.SortStableFunc(out, func(a, b schema.FileCoverage) int {
			return cmp.Compare(a.Path, b.Path)
		})
	default:
		slices.SortStableFunc(out, func(a, b schema.FileCoverage) int {
			return cmp.Or(cmp.Compare(a.Coverage, b.Coverage), cmp.Compare(a.Path, b.Path))
		})
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GetCoverage returns the per-file coverage of the configured project.
func GetCoverage(ctx context.Context, cfg *contract.Config, client contract.SonarClient) ([]schema.FileCoverage, error) {
	if err := cfg.RequireProject(); err != nil {
		return nil, err
	}
	files, err := client.FileCoverage(ctx, cfg.Project)
	if err != nil {
		return nil, fmt.Errorf("failed to get file coverage: %w", err)
	}
	return FilterCoverage(files, cfg.MinCoverage, cfg.CoverageSort, cfg.ResultLimit), nil
}

// ExecuteCoverage prints the per-file coverage of the configured project.
func ExecuteCoverage(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	files, err := GetCoverage(ctx, cfg, client)
	if err != nil {
		return err
	}
	return writer.WriteCoverage(files, cfg.Project, cfg)
}

// GetDuplications returns the files with duplicated lines. With --details
// the duplicated blocks of each file are resolved as well.
func GetDuplications(ctx context.Context, cfg *contract.Config, client contract.SonarClient) ([]schema.FileDuplication, error) {
	if err := cfg.RequireProject(); err != nil {
		return nil, err
	}
	fetch := client.FilesWithDuplications
	if cfg.Details {
		fetch = client.DuplicationsWithBlocks
	}
	files, err := fetch(ctx, cfg.Project, cfg.ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get duplications: %w", err)
	}
	return files, nil
}

// ExecuteDuplications prints the files with duplicated lines.
func ExecuteDuplications(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	files, err := GetDuplications(ctx, cfg, client)
	if err != nil {
		return err
	}
	return writer.WriteDuplications(files, cfg.Project, cfg)
}

// parseLine reads an optional 1-based line number.
func parseLine(name, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &sonar.ConfigError{Message: fmt.Sprintf("--%s must be a positive line number (received '%s')", name, raw)}
	}
	return n, nil
}

// GetSource returns the lines of the file named by the positional argument.
// Without --from and --to the raw file is fetched.
func GetSource(ctx context.Context, cfg *contract.Config, client contract.SonarClient) ([]schema.SourceLine, error) {
	if cfg.Target == "" {
		return nil, &sonar.ConfigError{Message: "a file key is required, e.g. my-project:src/main.go"}
	}
	from, err := parseLine("from", cfg.From)
	if err != nil {
		return nil, err
	}
	to, err := parseLine("to", cfg.To)
	if err != nil {
		return nil, err
	}
	if from > 0 && to > 0 && from > to {
		return nil, &sonar.ConfigError{Message: fmt.Sprintf("--from (%d) must not be greater than --to (%d)", from, to)}
	}

	var lines []schema.SourceLine
	if from == 0 && to == 0 {
		lines, err = client.RawSource(ctx, cfg.Target)
	} else {
		lines, err = client.SourceRange(ctx, cfg.Target, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source of %s: %w", cfg.Target, err)
	}
	return lines, nil
}

// ExecuteSource prints the lines of a file.
func ExecuteSource(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	lines, err := GetSource(ctx, cfg, client)
	if err != nil {
		return err
	}
	return writer.WriteSource(lines, cfg.Target, cfg)
}
