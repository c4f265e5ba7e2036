package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/sonar-cli/core"
	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/internal/credentials"
	"github.com/huangsam/sonar-cli/internal/snapshot"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// credentialStore holds the credentials written by auth login.
var credentialStore = credentials.DefaultStore()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "sonar-cli",
	Short: "Query a SonarQube server from the command line.",
	Long: `sonar-cli queries the Web API of a SonarQube compatible server: quality gates,
issues, measures, coverage, duplications, security hotspots, rules, source and
metric history. It can also run the scanner and wait for the analysis to finish.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".sonar-cli")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("SONAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// The scanner's own variable names win over the prefixed ones.
	_ = viper.BindEnv("url", "SONAR_HOST_URL", "SONAR_URL")
	_ = viper.BindEnv("project", "SONAR_PROJECT_KEY", "SONAR_PROJECT")

	// Stored credentials rank below flags, env and the config file.
	stored := credentialStore.Load()
	viper.SetDefault("url", contract.DefaultURL)
	if stored.URL != "" {
		viper.SetDefault("url", stored.URL)
	}
	viper.SetDefault("token", stored.Token)

	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("timeout", contract.DefaultTimeout)
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("min-coverage", -1)
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, cmd *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Bind the flags of the command being run. Several commands share
	// flag names, so they are bound here rather than at init time.
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	// 3. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 4. Handle positional arguments (which Viper doesn't do).
	input.Target = ""
	if len(args) == 1 {
		input.Target = args[0]
	}

	// 5. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	color.NoColor = !cfg.UseColors
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile reads the config file when one is present.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// openStore opens the configured snapshot store.
func openStore() contract.SnapshotStore {
	store, err := snapshot.NewStore(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		contract.LogFatal("Failed to open snapshot store", err)
	}
	return store
}

// exitOnError reports err and exits. Gate and health failures were already
// printed by the command, so they only set the exit status.
func exitOnError(msg string, err error) {
	if errors.Is(err, core.ErrUnhealthy) || errors.Is(err, core.ErrQualityGateFailed) {
		os.Exit(1)
	}
	if hint := core.ErrorHint(err); hint != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	contract.LogFatal(msg, err)
}

// runQuery adapts a query executor to a cobra Run function.
func runQuery(msg string, execute core.ExecutorFunc) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := execute(rootCtx, cfg, core.NewClient(cfg)); err != nil {
			exitOnError(msg, err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
