// Package core has the use cases behind each command: it builds queries from
// the validated config, calls the server and hands results to the writers.
package core

import (
	"context"
	"errors"
	"net/http"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/outwriter"
	"github.com/huangsam/sonar-cli/internal/sonar"
)

// ExecutorFunc defines the function signature shared by the query commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, client contract.SonarClient) error

// Sentinel errors that map to a non-zero exit without a fatal message.
var (
	// ErrUnhealthy is returned when the server answered but is not UP.
	ErrUnhealthy = errors.New("server is not healthy")

	// ErrQualityGateFailed is returned with --fail-on-error when the gate is not OK.
	ErrQualityGateFailed = errors.New("quality gate failed")
)

// writer renders every result.
var writer = outwriter.NewOutWriter()

// NewClient builds the API client for cfg.
func NewClient(cfg *contract.Config) contract.SonarClient {
	return sonar.NewClient(sonar.Options{
		BaseURL: cfg.URL,
		Token:   cfg.Token,
		Branch:  cfg.Branch,
		Timeout: cfg.Timeout,
		Logger:  contract.NewLogger(cfg.Verbose),
	})
}

// ErrorHint returns a short suggestion for err, or "" when there is none.
func ErrorHint(err error) string {
	if IsConfigError(err) {
		return "check the flags, environment and .sonar-cli.yaml"
	}
	switch sonar.StatusCode(err) {
	case http.StatusUnauthorized:
		return "the token was rejected; run 'sonar-cli auth login' or set SONAR_TOKEN"
	case http.StatusForbidden:
		return "the token lacks permission for this project"
	case http.StatusNotFound:
		return "check --project and --branch"
	}
	return ""
}
