package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jonathan/capacity-planner/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "CAPACITY"

// settings is the resolved configuration shared by every subcommand.
var settings config.Config

// persistentKeys are the root flags that viper resolves from flags, then env, then the config file.
var persistentKeys = []string{
	"database-url",
	"snapshot",
	"llm-provider",
	"llm-model",
	"api-key",
	"advisory-timeout",
}

// initConfig resolves settings and installs the default logger. Flags win over
// CAPACITY_* environment variables, which win over the --config file.
func initConfig(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	for _, key := range persistentKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	if err := v.BindPFlag("verbose", cmd.Flags().Lookup("verbose")); err != nil {
		return fmt.Errorf("failed to bind flag verbose: %w", err)
	}

	resolved := config.Config{
		DatabaseURL:     v.GetString("database-url"),
		Snapshot:        v.GetString("snapshot"),
		LLMProvider:     v.GetString("llm-provider"),
		LLMModel:        v.GetString("llm-model"),
		APIKey:          v.GetString("api-key"),
		AdvisoryTimeout: v.GetString("advisory-timeout"),
		Port:            v.GetInt("port"),
		WeeksAhead:      v.GetInt("weeks_ahead"),
		Verbose:         v.GetBool("verbose"),
	}

	if rootConfigPath != "" {
		fileCfg, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		resolved = resolved.MergeWithDefaults(*fileCfg)
		if !resolved.Verbose {
			resolved.Verbose = fileCfg.Verbose
		}
	}

	if resolved.DatabaseURL == "" && resolved.Snapshot == "" {
		resolved.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := resolved.Validate(); err != nil {
		return err
	}

	settings = resolved
	setupLogging(cmd, settings.Verbose)
	if settings.Verbose && rootConfigPath != "" {
		slog.Debug("loaded config", "path", rootConfigPath)
	}
	return nil
}

// setupLogging writes text logs to stderr so stdout stays clean for JSON output.
func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
