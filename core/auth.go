package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/credentials"
	"github.com/huangsam/sonar-cli/schema"
)

// CredentialPrompt asks the user for the URL and token, starting from the
// currently stored values.
type CredentialPrompt func(current credentials.StoredConfig) (credentials.StoredConfig, error)

type authMessage struct {
	Status     string `json:"status"`
	ConfigPath string `json:"configPath"`
	URL        string `json:"url,omitempty"`
	Token      string `json:"token,omitempty"`
}

func writeAuthMessage(w io.Writer, cfg *contract.Config, msg authMessage, text string) error {
	if cfg.Output == schema.JSONOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(msg)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

// ExecuteAuthLogin prompts for credentials and saves them to the store.
func ExecuteAuthLogin(cfg *contract.Config, store *credentials.Store, prompt CredentialPrompt, w io.Writer) error {
	entered, err := prompt(store.Load())
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}
	entered.URL = strings.TrimRight(strings.TrimSpace(entered.URL), "/")
	entered.Token = strings.TrimSpace(entered.Token)

	if entered.Empty() {
		return errors.New("Nothing to save, both URL and token are empty.")
	}
	if entered.Token == "" {
		return errors.New("Token must not be empty.")
	}
	if err := store.Save(entered); err != nil {
		return err
	}

	masked := credentials.MaskToken(entered.Token)
	msg := authMessage{Status: "saved", ConfigPath: store.Path(), URL: entered.URL, Token: masked}
	text := fmt.Sprintf("Credentials saved.\n  URL:   %s\n  Token: %s\n  File:  %s", entered.URL, masked, store.Path())
	return writeAuthMessage(w, cfg, msg, text)
}

// ExecuteAuthStatus shows the stored credentials and whether the stored server answers.
func ExecuteAuthStatus(ctx context.Context, cfg *contract.Config, store *credentials.Store, newClient func(*contract.Config) contract.SonarClient, w io.Writer) error {
	stored := store.Load()
	if stored.Empty() {
		msg := authMessage{Status: "not_configured", ConfigPath: store.Path()}
		return writeAuthMessage(w, cfg, msg, "No credentials configured. Run `sonar-cli auth login` to set up.")
	}

	status := schema.AuthStatus{
		ConfigPath: store.Path(),
		URL:        stored.URL,
		Token:      credentials.MaskToken(stored.Token),
	}
	probe := cfg.Clone()
	if stored.URL != "" {
		probe.URL = stored.URL
	}
	probe.Token = stored.Token
	if health, err := GetHealth(ctx, newClient(probe)); err == nil {
		status.Healthy = health.Healthy
	}
	return writer.WriteAuthStatus(status, cfg)
}

// ExecuteAuthLogout removes the stored credentials.
func ExecuteAuthLogout(cfg *contract.Config, store *credentials.Store, w io.Writer) error {
	if err := store.Remove(); err != nil {
		return err
	}
	msg := authMessage{Status: "removed", ConfigPath: store.Path()}
	return writeAuthMessage(w, cfg, msg, fmt.Sprintf("Credentials removed from %s.", store.Path()))
}
