// Package scanner runs the analysis scanner, either installed locally or
// through its Docker image, and captures the task it submits.
package scanner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/coverage"
	"github.com/huangsam/sonar-cli/internal/sonar"
	"github.com/rs/zerolog"
)

// containerMount is where the sources are mounted inside the scanner image.
const containerMount = "/usr/src"

// taskMarker precedes the task id in the scanner's report line.
const taskMarker = "task?id="

// ErrScanTimeout is returned when the scanner does not exit before its deadline.
var ErrScanTimeout = errors.New("scanner timed out")

// commandContext is replaced in tests.
var commandContext = exec.CommandContext

// Request describes one scanner run.
type Request struct {
	Project string
	URL     string
	Token   string
	Scan    contract.ScanConfig
}

// Result is what a successful run produced.
type Result struct {
	TaskID string
	Stdout string
	Stderr string
}

// Mode names the way the scanner is launched.
func (r Request) Mode() string {
	if r.Scan.Docker {
		return "Docker"
	}
	return "direct"
}

// BuildArgs returns the analysis properties shared by both modes.
// coverageReport is the report path as seen by the scanner, empty for none.
func BuildArgs(project string, scan contract.ScanConfig, coverageReport string) []string {
	args := []string{
		"-Dsonar.projectKey=" + project,
		"-Dsonar.sources=" + scan.Sources,
	}
	if scan.Tests != "" {
		args = append(args, "-Dsonar.tests="+scan.Tests)
	}
	if scan.Exclusions != "" {
		args = append(args, "-Dsonar.exclusions="+scan.Exclusions)
	}
	if coverageReport != "" {
		args = append(args, "-Dsonar.coverageReportPaths="+coverageReport)
	}
	for _, key := range slices.Sorted(maps.Keys(scan.Properties)) {
		args = append(args, fmt.Sprintf("-D%s=%s", key, scan.Properties[key]))
	}
	return args
}

// DirectArgs returns the arguments of a locally installed scanner.
func DirectArgs(req Request, workDir, coverageReport string) []string {
	args := []string{
		"-Dsonar.host.url=" + req.URL,
		"-Dsonar.projectBaseDir=" + workDir,
	}
	if req.Token != "" {
		args = append(args, "-Dsonar.token="+req.Token)
	}
	return append(args, BuildArgs(req.Project, req.Scan, coverageReport)...)
}

// DockerArgs returns the arguments of `docker` for a containerized run.
func DockerArgs(req Request, workDir, container, coverageReport string) []string {
	args := []string{
		"run", "--rm",
		"--name=" + container,
		"--network=host",
		"-e", "GIT_CONFIG_COUNT=1",
		"-e", "GIT_CONFIG_KEY_0=safe.directory",
		"-e", "GIT_CONFIG_VALUE_0=" + containerMount,
		"-e", "SONAR_HOST_URL=" + req.URL,
	}
	if req.Token != "" {
		args = append(args, "-e", "SONAR_TOKEN="+req.Token)
	}
	args = append(args, "-v", workDir+":"+containerMount, req.Scan.DockerImage)
	return append(args, BuildArgs(req.Project, req.Scan, coverageReport)...)
}

// PrepareCoverage converts a Cobertura report into the generic format next to
// the sources and returns the path to hand to the scanner. Reports in any
// other format are passed through unchanged.
func PrepareCoverage(workDir, report string) (string, error) {
	if report == "" {
		return "", nil
	}
	path := report
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, report)
	}
	if !coverage.IsCobertura(path) {
		return report, nil
	}
	if err := coverage.ConvertFile(path, filepath.Join(workDir, coverage.ConvertedName), workDir); err != nil {
		return "", fmt.Errorf("failed to convert coverage report: %w", err)
	}
	return coverage.ConvertedName, nil
}

// ExtractTaskID finds the background task id in the scanner output.
func ExtractTaskID(output string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		_, rest, found := strings.Cut(scanner.Text(), taskMarker)
		if !found {
			continue
		}
		if fields := strings.Fields(rest); len(fields) > 0 {
			return fields[0], true
		}
		return "", false
	}
	return "", false
}

// Validate checks that the scanner binary can be executed.
func Validate(ctx context.Context, scannerPath string) error {
	if err := commandContext(ctx, scannerPath, "--version").Run(); err != nil {
		return &sonar.ConfigError{Message: fmt.Sprintf(
			"sonar-scanner not found at '%s': %v\n"+
				"Install it from https://docs.sonarsource.com/sonarqube/latest/analyzing-source-code/scanners/sonarscanner/\n"+
				"Or use --docker to run via Docker instead.", scannerPath, err)}
	}
	return nil
}

// Run converts the coverage report if needed, launches the scanner and waits
// for it to exit. The task id is empty when the output did not mention one.
func Run(ctx context.Context, req Request, log zerolog.Logger) (Result, error) {
	workDir, err := filepath.Abs(req.Scan.SourceDir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve source directory: %w", err)
	}
	if info, err := os.Stat(workDir); err != nil || !info.IsDir() {
		return Result{}, &sonar.ConfigError{Message: fmt.Sprintf("source directory '%s' does not exist", req.Scan.SourceDir)}
	}
	if !req.Scan.Docker {
		if err := Validate(ctx, req.Scan.ScannerPath); err != nil {
			return Result{}, err
		}
	}

	report, err := PrepareCoverage(workDir, req.Scan.CoverageReport)
	if err != nil {
		return Result{}, err
	}

	timeout := req.Scan.Timeout
	if timeout <= 0 {
		timeout = contract.DefaultScanTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		name      string
		args      []string
		container string
	)
	if req.Scan.Docker {
		container = "sonar-cli-" + uuid.NewString()
		name, args = "docker", DockerArgs(req, workDir, container, report)
	} else {
		name, args = req.Scan.ScannerPath, DirectArgs(req, workDir, report)
	}

	var stdout, stderr bytes.Buffer
	cmd := commandContext(runCtx, name, args...)
	cmd.Dir = workDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 5 * time.Second

	log.Debug().Str("command", name).Strs("args", redact(args)).Msg("Starting scanner")
	start := time.Now()
	runErr := cmd.Run()
	log.Debug().Dur("elapsed", time.Since(start)).Msg("Scanner exited")

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		if container != "" {
			killContainer(container, log)
		}
		return Result{}, fmt.Errorf("%s %w after %s", req.Mode(), ErrScanTimeout, timeout)
	}
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if runErr != nil {
		return Result{}, fmt.Errorf("scanner failed: %w\nstdout: %s\nstderr: %s", runErr, stdout.String(), stderr.String())
	}

	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	result.TaskID, _ = ExtractTaskID(result.Stdout)
	return result, nil
}

// killContainer stops a container that outlived its deadline. The run
// context is already done, so a fresh one bounds the kill.
func killContainer(name string, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := commandContext(ctx, "docker", "kill", name).Run(); err != nil {
		log.Warn().Err(err).Str("container", name).Msg("Failed to kill scanner container")
	}
}

// redact hides credentials before arguments are logged.
func redact(args []string) []string {
	out := slices.Clone(args)
	for i, arg := range out {
		for _, prefix := range []string{"-Dsonar.token=", "SONAR_TOKEN="} {
			if strings.HasPrefix(arg, prefix) {
				out[i] = prefix + "****"
			}
		}
	}
	return out
}
