package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
)

// GetHealth probes the server. An unreachable server is an error, while a
// server that answers with anything but UP is reported as unhealthy.
func GetHealth(ctx context.Context, client contract.SonarClient) (schema.ServerHealth, error) {
	health := schema.ServerHealth{URL: client.BaseURL()}
	status, err := client.SystemStatus(ctx)
	if err != nil {
		return health, fmt.Errorf("failed to reach server at %s: %w", health.URL, err)
	}
	health.Status = status
	health.Healthy = status == sonar.StatusUp
	return health, nil
}

// ExecuteHealth prints the server status and returns ErrUnhealthy when it is not UP.
func ExecuteHealth(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	health, err := GetHealth(ctx, client)
	if err != nil {
		return err
	}
	if err := writer.WriteHealth(health, cfg); err != nil {
		return err
	}
	if !health.Healthy {
		return ErrUnhealthy
	}
	return nil
}

// GetQualityGate returns the quality gate status of the configured project.
func GetQualityGate(ctx context.Context, cfg *contract.Config, client contract.SonarClient) (schema.QualityGate, error) {
	if err := cfg.RequireProject(); err != nil {
		return schema.QualityGate{}, err
	}
	gate, err := client.QualityGate(ctx, cfg.Project)
	if err != nil {
		return schema.QualityGate{}, fmt.Errorf("failed to get quality gate: %w", err)
	}
	return gate, nil
}

// ExecuteQualityGate prints the quality gate. With --record the result is
// also stored as a snapshot, and with --fail-on-error a gate that is not OK
// yields ErrQualityGateFailed.
func ExecuteQualityGate(ctx context.Context, cfg *contract.Config, client contract.SonarClient, store contract.SnapshotStore) error {
	gate, err := GetQualityGate(ctx, cfg, client)
	if err != nil {
		return err
	}
	if err := writer.WriteQualityGate(gate, cfg.Project, cfg); err != nil {
		return err
	}
	if cfg.Record && store != nil {
		if _, err := RecordSnapshot(ctx, cfg, client, store, gate); err != nil {
			contract.LogWarn("Failed to record snapshot", err)
		}
	}
	if cfg.FailOnError && !gate.Passed() {
		return ErrQualityGateFailed
	}
	return nil
}

// metricsOrDefault returns the requested metrics or the default overview set.
func metricsOrDefault(cfg *contract.Config) []string {
	if len(cfg.Metrics) > 0 {
		return cfg.Metrics
	}
	return schema.DefaultMeasureMetrics
}

// GetMeasures returns the project-level measures.
func GetMeasures(ctx context.Context, cfg *contract.Config, client contract.SonarClient) (schema.ComponentMeasures, error) {
	if err := cfg.RequireProject(); err != nil {
		return schema.ComponentMeasures{}, err
	}
	measures, err := client.Measures(ctx, cfg.Project, metricsOrDefault(cfg))
	if err != nil {
		return schema.ComponentMeasures{}, fmt.Errorf("failed to get measures: %w", err)
	}
	return measures, nil
}

// ExecuteMeasures prints the project-level measures.
func ExecuteMeasures(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	measures, err := GetMeasures(ctx, cfg, client)
	if err != nil {
		return err
	}
	return writer.WriteMeasures(measures, cfg)
}

// RecordSnapshot stores gate together with the current project measures.
func RecordSnapshot(ctx context.Context, cfg *contract.Config, client contract.SonarClient, store contract.SnapshotStore, gate schema.QualityGate) (int64, error) {
	measures, err := GetMeasures(ctx, cfg, client)
	if err != nil {
		return 0, err
	}
	snap := schema.Snapshot{
		ProjectKey: cfg.Project,
		Branch:     cfg.Branch,
		ServerURL:  client.BaseURL(),
		TakenAt:    time.Now().UTC(),
		GateStatus: gate.Status,
		Measures:   measures.Map(),
	}
	id, err := store.RecordSnapshot(snap)
	if err != nil {
		return 0, fmt.Errorf("failed to record snapshot: %w", err)
	}
	return id, nil
}
