package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/outwriter"
	"github.com/huangsam/sonar-cli/internal/scanner"
	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
)

// Seams for tests.
var (
	runScanner           = scanner.Run
	statusOut  io.Writer = os.Stderr
)

// WaitForTask polls the analysis task until it is terminal or the wait times out.
func WaitForTask(ctx context.Context, cfg *contract.Config, client contract.SonarClient, taskID string) (schema.AnalysisTask, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return schema.AnalysisTask{}, &sonar.ConfigError{Message: "a task ID is required, e.g. sonar-cli wait AXyz123"}
	}

	spinner := outwriter.NewSpinner(fmt.Sprintf("Waiting for analysis %s", taskID), cfg)
	defer spinner.Finish()

	task, err := client.WaitForAnalysis(ctx, taskID, sonar.WaitOptions{
		Timeout:      cfg.WaitTimeout,
		PollInterval: cfg.PollInterval,
		OnPoll:       spinner.Update,
	})
	if err != nil {
		return task, fmt.Errorf("analysis %s did not succeed: %w", taskID, err)
	}
	return task, nil
}

// ExecuteWait waits for the task named by the positional argument and prints it.
func ExecuteWait(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	task, err := WaitForTask(ctx, cfg, client, cfg.Target)
	if err != nil {
		return err
	}
	return writer.WriteTask(task, cfg)
}

// ExecuteScan runs the scanner for the configured project. With --wait the
// submitted analysis is awaited and the resulting quality gate printed.
func ExecuteScan(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error {
	if err := cfg.RequireProject(); err != nil {
		return err
	}
	req := scanner.Request{
		Project: cfg.Project,
		URL:     cfg.URL,
		Token:   cfg.Token,
		Scan:    cfg.Scan,
	}
	_, _ = fmt.Fprintf(statusOut, "Running sonar-scanner (%s) for project '%s' in %s...\n", req.Mode(), cfg.Project, cfg.Scan.SourceDir)

	result, err := runScanner(ctx, req, contract.NewLogger(cfg.Verbose))
	if err != nil {
		return err
	}
	if result.TaskID == "" {
		_, _ = fmt.Fprintln(statusOut, "Analysis submitted (no task ID captured)")
	} else {
		_, _ = fmt.Fprintf(statusOut, "Analysis submitted, task ID: %s\n", result.TaskID)
	}

	if !cfg.Scan.Wait {
		return nil
	}
	if result.TaskID == "" {
		return fmt.Errorf("cannot wait for analysis: no task ID found in scanner output")
	}
	task, err := WaitForTask(ctx, cfg, client, result.TaskID)
	if err != nil {
		return err
	}
	if err := writer.WriteTask(task, cfg); err != nil {
		return err
	}
	gate, err := GetQualityGate(ctx, cfg, client)
	if err != nil {
		return err
	}
	return writer.WriteQualityGate(gate, cfg.Project, cfg)
}
