package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/sonar-cli/core"
	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/credentials"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// promptCredentials asks for the server URL and token on the terminal.
func promptCredentials(current credentials.StoredConfig) (credentials.StoredConfig, error) {
	defaultURL := current.URL
	if defaultURL == "" {
		defaultURL = contract.DefaultURL
	}

	urlPrompt := promptui.Prompt{
		Label:     "Server URL",
		Default:   defaultURL,
		AllowEdit: true,
	}
	url, err := urlPrompt.Run()
	if err != nil {
		return credentials.StoredConfig{}, fmt.Errorf("URL input cancelled: %w", err)
	}

	tokenPrompt := promptui.Prompt{
		Label: "Token",
		Mask:  '*',
	}
	token, err := tokenPrompt.Run()
	if err != nil {
		return credentials.StoredConfig{}, fmt.Errorf("token input cancelled: %w", err)
	}

	return credentials.StoredConfig{URL: url, Token: token}, nil
}

// authCmd manages stored credentials.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored server URL and token",
	Long: `Manage the server URL and token stored in the user config directory.

Stored credentials are used when neither a flag, an environment variable nor
the config file provides them.

Subcommands:
  login  - Prompt for the URL and token and store them
  status - Show the stored credentials and whether the server answers
  logout - Remove the stored credentials`,
}

var authLoginCmd = &cobra.Command{
	Use:     "login",
	Short:   "Store the server URL and token",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAuthLogin(cfg, credentialStore, promptCredentials, os.Stdout); err != nil {
			contract.LogFatal("Login failed", err)
		}
	},
}

var authStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show the stored credentials",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAuthStatus(rootCtx, cfg, credentialStore, core.NewClient, os.Stdout); err != nil {
			contract.LogFatal("Cannot show auth status", err)
		}
	},
}

var authLogoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Remove the stored credentials",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAuthLogout(cfg, credentialStore, os.Stdout); err != nil {
			contract.LogFatal("Logout failed", err)
		}
	},
}
