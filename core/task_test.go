package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/scanner"
	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubScanner replaces the scanner run and captures status lines for one test.
func stubScanner(t *testing.T, result scanner.Result, err error) (*bytes.Buffer, *scanner.Request) {
	t.Helper()
	var status bytes.Buffer
	var seen scanner.Request
	origRun, origOut := runScanner, statusOut
	runScanner = func(_ context.Context, req scanner.Request, _ zerolog.Logger) (scanner.Result, error) {
		seen = req
		return result, err
	}
	statusOut = &status
	t.Cleanup(func() { runScanner, statusOut = origRun, origOut })
	return &status, &seen
}

func waitOpts(cfg *contract.Config) any {
	return mock.MatchedBy(func(o sonar.WaitOptions) bool {
		return o.Timeout == cfg.WaitTimeout && o.PollInterval == cfg.PollInterval && o.OnPoll != nil
	})
}

func TestWaitForTask(t *testing.T) {
	ctx := context.Background()

	t.Run("requires task id", func(t *testing.T) {
		cfg := testConfig(t)
		_, err := WaitForTask(ctx, cfg, &contract.MockSonarClient{}, " ")
		assert.True(t, IsConfigError(err))
	})

	t.Run("success", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Target = "AYtask"
		client := &contract.MockSonarClient{}
		client.On("WaitForAnalysis", ctx, "AYtask", waitOpts(cfg)).
			Return(schema.AnalysisTask{ID: "AYtask", Status: schema.TaskSuccess}, nil)

		require.NoError(t, ExecuteWait(ctx, cfg, client))
		task := readOutput[schema.AnalysisTask](t, cfg)
		assert.Equal(t, schema.TaskSuccess, task.Status)
	})

	t.Run("failed analysis", func(t *testing.T) {
		cfg := testConfig(t)
		client := &contract.MockSonarClient{}
		client.On("WaitForAnalysis", ctx, "AYtask", mock.Anything).
			Return(schema.AnalysisTask{ID: "AYtask", Status: schema.TaskFailed}, &sonar.AnalysisError{Message: "boom"})

		_, err := WaitForTask(ctx, cfg, client, "AYtask")
		var analysisErr *sonar.AnalysisError
		require.ErrorAs(t, err, &analysisErr)
		assert.Equal(t, "boom", analysisErr.Message)
	})

	t.Run("timeout", func(t *testing.T) {
		cfg := testConfig(t)
		client := &contract.MockSonarClient{}
		client.On("WaitForAnalysis", ctx, "AYtask", mock.Anything).Return(schema.AnalysisTask{}, sonar.ErrTimeout)

		_, err := WaitForTask(ctx, cfg, client, "AYtask")
		assert.ErrorIs(t, err, sonar.ErrTimeout)
	})
}

func TestExecuteScan_RequiresProject(t *testing.T) {
	cfg := testConfig(t)
	cfg.Project = ""
	_, seen := stubScanner(t, scanner.Result{}, nil)

	err := ExecuteScan(context.Background(), cfg, &contract.MockSonarClient{})
	assert.True(t, IsConfigError(err))
	assert.Empty(t, seen.Project, "scanner must not run")
}

func TestExecuteScan_NoWait(t *testing.T) {
	cfg := testConfig(t)
	cfg.Token = "sqa_secret"
	cfg.Scan = contract.ScanConfig{SourceDir: ".", Sources: "src", Docker: true}
	status, seen := stubScanner(t, scanner.Result{TaskID: "AYtask42"}, nil)

	require.NoError(t, ExecuteScan(context.Background(), cfg, &contract.MockSonarClient{}))
	assert.Equal(t, "demo", seen.Project)
	assert.Equal(t, "http://sonar.test", seen.URL)
	assert.Equal(t, "sqa_secret", seen.Token)
	assert.Contains(t, status.String(), "Running sonar-scanner (Docker) for project 'demo' in .")
	assert.Contains(t, status.String(), "task ID: AYtask42")
}

func TestExecuteScan_NoTaskID(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scan = contract.ScanConfig{SourceDir: ".", Wait: true}
	status, _ := stubScanner(t, scanner.Result{}, nil)

	err := ExecuteScan(context.Background(), cfg, &contract.MockSonarClient{})
	assert.ErrorContains(t, err, "no task ID found")
	assert.Contains(t, status.String(), "(no task ID captured)")
}

func TestExecuteScan_ScannerFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scan = contract.ScanConfig{SourceDir: "."}
	stubScanner(t, scanner.Result{}, scanner.ErrScanTimeout)

	err := ExecuteScan(context.Background(), cfg, &contract.MockSonarClient{})
	assert.ErrorIs(t, err, scanner.ErrScanTimeout)
}

func TestExecuteScan_WaitPrintsGate(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Scan = contract.ScanConfig{SourceDir: ".", Wait: true}
	stubScanner(t, scanner.Result{TaskID: "AYtask42"}, nil)

	client := &contract.MockSonarClient{}
	client.On("WaitForAnalysis", ctx, "AYtask42", waitOpts(cfg)).
		Return(schema.AnalysisTask{ID: "AYtask42", Status: schema.TaskSuccess}, nil)
	client.On("QualityGate", ctx, "demo").Return(schema.QualityGate{Status: schema.GateOK}, nil)

	require.NoError(t, ExecuteScan(ctx, cfg, client))
	client.AssertExpectations(t)

	// The gate is the last document written to the output file.
	gate := readOutput[schema.QualityGate](t, cfg)
	assert.Equal(t, schema.GateOK, gate.Status)
}

func TestExecuteScan_WaitFailure(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Scan = contract.ScanConfig{SourceDir: ".", Wait: true}
	stubScanner(t, scanner.Result{TaskID: "AYtask42"}, nil)

	client := &contract.MockSonarClient{}
	client.On("WaitForAnalysis", ctx, "AYtask42", mock.Anything).
		Return(schema.AnalysisTask{}, &sonar.AnalysisError{Message: sonar.CanceledMessage})

	err := ExecuteScan(ctx, cfg, client)
	var analysisErr *sonar.AnalysisError
	assert.True(t, errors.As(err, &analysisErr))
	client.AssertNotCalled(t, "QualityGate", mock.Anything, mock.Anything)
	_, statErr := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(statErr))
}
