package core

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/credentials"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCredentialStore(t *testing.T) *credentials.Store {
	t.Helper()
	return credentials.NewStore(filepath.Join(t.TempDir(), "sonar-cli", "config.yaml"))
}

func fixedPrompt(url, token string) CredentialPrompt {
	return func(credentials.StoredConfig) (credentials.StoredConfig, error) {
		return credentials.StoredConfig{URL: url, Token: token}, nil
	}
}

func TestExecuteAuthLogin(t *testing.T) {
	store := newCredentialStore(t)
	cfg := testConfig(t)
	cfg.Output = schema.TextOut
	var out bytes.Buffer

	require.NoError(t, ExecuteAuthLogin(cfg, store, fixedPrompt(" https://sonar.example.com/ ", "sqa_1234567890"), &out))
	assert.Contains(t, out.String(), "Credentials saved.")
	assert.Contains(t, out.String(), "sqa_...7890")
	assert.NotContains(t, out.String(), "sqa_1234567890")

	stored := store.Load()
	assert.Equal(t, "https://sonar.example.com", stored.URL)
	assert.Equal(t, "sqa_1234567890", stored.Token)
}

func TestExecuteAuthLogin_PromptSeesStoredValues(t *testing.T) {
	store := newCredentialStore(t)
	require.NoError(t, store.Save(credentials.StoredConfig{URL: "http://old", Token: "old-token"}))

	var current credentials.StoredConfig
	prompt := func(c credentials.StoredConfig) (credentials.StoredConfig, error) {
		current = c
		return credentials.StoredConfig{URL: c.URL, Token: "new-token-value"}, nil
	}
	require.NoError(t, ExecuteAuthLogin(testConfig(t), store, prompt, &bytes.Buffer{}))
	assert.Equal(t, "old-token", current.Token)
	assert.Equal(t, "new-token-value", store.Load().Token)
}

func TestExecuteAuthLogin_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prompt  CredentialPrompt
		message string
	}{
		{name: "nothing entered", prompt: fixedPrompt("", " "), message: "Nothing to save, both URL and token are empty."},
		{name: "missing token", prompt: fixedPrompt("http://localhost:9000", ""), message: "Token must not be empty."},
		{
			name: "prompt aborted",
			prompt: func(credentials.StoredConfig) (credentials.StoredConfig, error) {
				return credentials.StoredConfig{}, errors.New("^C")
			},
			message: "failed to read credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newCredentialStore(t)
			err := ExecuteAuthLogin(testConfig(t), store, tt.prompt, &bytes.Buffer{})
			assert.ErrorContains(t, err, tt.message)
			assert.True(t, store.Load().Empty())
		})
	}
}

func TestExecuteAuthLogin_JSON(t *testing.T) {
	store := newCredentialStore(t)
	var out bytes.Buffer
	require.NoError(t, ExecuteAuthLogin(testConfig(t), store, fixedPrompt("", "sqa_1234567890"), &out))
	assert.Contains(t, out.String(), `"status": "saved"`)
	assert.Contains(t, out.String(), `"token": "sqa_...7890"`)
}

func TestExecuteAuthStatus_NotConfigured(t *testing.T) {
	store := newCredentialStore(t)
	newClient := func(*contract.Config) contract.SonarClient {
		t.Fatal("no client expected without credentials")
		return nil
	}

	var text bytes.Buffer
	cfg := testConfig(t)
	cfg.Output = schema.TextOut
	require.NoError(t, ExecuteAuthStatus(context.Background(), cfg, store, newClient, &text))
	assert.Contains(t, text.String(), "No credentials configured. Run `sonar-cli auth login` to set up.")

	var js bytes.Buffer
	require.NoError(t, ExecuteAuthStatus(context.Background(), testConfig(t), store, newClient, &js))
	assert.Contains(t, js.String(), `"status": "not_configured"`)
}

func TestExecuteAuthStatus_Configured(t *testing.T) {
	ctx := context.Background()
	store := newCredentialStore(t)
	require.NoError(t, store.Save(credentials.StoredConfig{URL: "https://sonar.example.com", Token: "sqa_1234567890"}))

	var probed *contract.Config
	client := &contract.MockSonarClient{}
	client.On("BaseURL").Return("https://sonar.example.com")
	client.On("SystemStatus", ctx).Return("UP", nil)
	newClient := func(c *contract.Config) contract.SonarClient {
		probed = c
		return client
	}

	cfg := testConfig(t)
	require.NoError(t, ExecuteAuthStatus(ctx, cfg, store, newClient, &bytes.Buffer{}))

	require.NotNil(t, probed)
	assert.Equal(t, "https://sonar.example.com", probed.URL)
	assert.Equal(t, "sqa_1234567890", probed.Token)
	assert.Equal(t, "http://sonar.test", cfg.URL, "the caller's config is left untouched")

	status := readOutput[schema.AuthStatus](t, cfg)
	assert.Equal(t, "sqa_...7890", status.Token)
	assert.Equal(t, store.Path(), status.ConfigPath)
	assert.True(t, status.Healthy)
}

func TestExecuteAuthLogout(t *testing.T) {
	store := newCredentialStore(t)
	require.NoError(t, store.Save(credentials.StoredConfig{Token: "sqa_1234567890"}))

	cfg := testConfig(t)
	cfg.Output = schema.TextOut
	var out bytes.Buffer
	require.NoError(t, ExecuteAuthLogout(cfg, store, &out))
	assert.Contains(t, out.String(), "Credentials removed")
	assert.True(t, store.Load().Empty())

	// Logging out twice is fine.
	assert.NoError(t, ExecuteAuthLogout(cfg, store, &bytes.Buffer{}))
}
