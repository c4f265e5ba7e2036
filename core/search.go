package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
)

// BuildIssueQuery maps the config filters onto an issue search.
// A severity selects that severity and everything above it.
func BuildIssueQuery(cfg *contract.Config) sonar.IssueQuery {
	q := sonar.IssueQuery{
		Project:       cfg.Project,
		Statuses:      cfg.Statuses,
		Types:         cfg.Types,
		Resolutions:   cfg.Resolutions,
		Tags:          cfg.Tags,
		Rules:         cfg.Rules,
		CreatedAfter:  cfg.CreatedAfter,
		CreatedBefore: cfg.CreatedBefore,
		Author:        cfg.Author,
		Assignees:     cfg.Assignees,
		Limit:         cfg.ResultLimit,
	}
	if cfg.Severity != "" {
		q.Severities = schema.SeveritiesAtLeast(cfg.Severity)
	}
	if cfg.Language != "" {
		q.Languages = []string{cfg.Language}
	}
	return q
}

// GetIssues returns the issues of the configured project.
func GetIssues(ctx context.Context, cfg *contract.Config, client contract.SonarClient) ([]schema.Issue, error) {
	if err := cfg.RequireProject(); err != nil {
		return nil, err
	}
	issues, err := client.SearchIssues(ctx, BuildIssueQuery(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}
	return issues, nil
}

// ExecuteIssues prints the issues of the configured project.
func ExecuteIssues(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	issues, err := GetIssues(ctx, cfg, client)
	if err != nil {
		return err
	}
	return writer.WriteIssues(issues, cfg.Project, cfg)
}

// GetHotspots returns the security hotspots of the configured project.
func GetHotspots(ctx context.Context, cfg *contract.Config, client contract.SonarClient) ([]schema.Hotspot, error) {
	if err := cfg.RequireProject(); err != nil {
		return nil, err
	}
	if len(cfg.Statuses) > 1 {
		return nil, &sonar.ConfigError{Message: fmt.Sprintf("hotspots accept a single --status, got %q", strings.Join(cfg.Statuses, ","))}
	}
	q := sonar.HotspotQuery{Project: cfg.Project, Limit: cfg.ResultLimit}
	if len(cfg.Statuses) == 1 {
		q.Status = strings.ToUpper(cfg.Statuses[0])
	}
	hotspots, err := client.Hotspots(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search hotspots: %w", err)
	}
	return hotspots, nil
}

// ExecuteHotspots prints the security hotspots of the configured project.
func ExecuteHotspots(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	hotspots, err := GetHotspots(ctx, cfg, client)
	if err != nil {
		return err
	}
	return writer.WriteHotspots(hotspots, cfg.Project, cfg)
}

// GetProjects searches the projects visible to the token.
func GetProjects(ctx context.Context, cfg *contract.Config, client contract.SonarClient) ([]schema.Project, error) {
	projects, err := client.Projects(ctx, sonar.ProjectQuery{
		Search:    cfg.Search,
		Qualifier: cfg.Qualifier,
		Limit:     cfg.ResultLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	return projects, nil
}

// ExecuteProjects prints the projects visible to the token.
func ExecuteProjects(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	projects, err := GetProjects(ctx, cfg, client)
	if err != nil {
		return err
	}
	return writer.WriteProjects(projects, cfg)
}

// GetRules searches the coding rules. Unlike issues, the severity filter is exact.
func GetRules(ctx context.Context, cfg *contract.Config, client contract.SonarClient) ([]schema.Rule, error) {
	rules, err := client.Rules(ctx, sonar.RuleQuery{
		Search:   cfg.Search,
		Language: cfg.Language,
		Severity: string(cfg.Severity),
		Type:     strings.Join(cfg.Types, ","),
		Status:   strings.Join(cfg.Statuses, ","),
		Limit:    cfg.ResultLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search rules: %w", err)
	}
	return rules, nil
}

// ExecuteRules prints the matching coding rules.
func ExecuteRules(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	rules, err := GetRules(ctx, cfg, client)
	if err != nil {
		return err
	}
	return writer.WriteRules(rules, cfg)
}

// GetHistory returns the history of the requested metrics, merged by metric.
func GetHistory(ctx context.Context, cfg *contract.Config, client contract.SonarClient) ([]schema.MeasureHistory, error) {
	if err := cfg.RequireProject(); err != nil {
		return nil, err
	}
	if len(cfg.Metrics) == 0 {
		return nil, &sonar.ConfigError{Message: "at least one metric is required. Use --metrics coverage,bugs"}
	}
	now := time.Now()
	from, err := contract.NormalizeDateFilter(cfg.From, now)
	if err != nil {
		return nil, &sonar.ConfigError{Message: "--from: " + err.Error()}
	}
	to, err := contract.NormalizeDateFilter(cfg.To, now)
	if err != nil {
		return nil, &sonar.ConfigError{Message: "--to: " + err.Error()}
	}
	histories, err := client.History(ctx, sonar.HistoryQuery{
		Project: cfg.Project,
		Metrics: cfg.Metrics,
		From:    from,
		To:      to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get measure history: %w", err)
	}
	return histories, nil
}

// ExecuteHistory prints the history of the requested metrics.
func ExecuteHistory(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	histories, err := GetHistory(ctx, cfg, client)
	if err != nil {
		return err
	}
	return writer.WriteHistory(histories, cfg.Project, cfg)
}

// IsConfigError reports whether err is a caller-facing validation failure.
func IsConfigError(err error) bool {
	var cfgErr *sonar.ConfigError
	return errors.As(err, &cfgErr)
}
