// Package cmd implements the CLI commands for reelhouse.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/reelhouse/reelhouse/internal/config"
	"github.com/reelhouse/reelhouse/internal/observability"
	"github.com/reelhouse/reelhouse/internal/version"
	"github.com/spf13/cobra"
)

// cfgFile holds the config file path from CLI flag.
var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "reelhouse",
	Short:   "Movie streaming platform backend",
	Version: version.Short(),
	Long: `reelhouse is the backend for a movie streaming platform. It issues
time-limited play grants with signed media URLs, ingests player lifecycle
events, reconciles playback sessions, and serves catalog administration.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initLogging()
	}
	// Global flags. These are not bound to viper: only explicitly set flags
	// override config/env values, preserving the priority
	// CLI flag > env var > config > default.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., ./configs, /etc/reelhouse)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
}

// loadConfig reads configuration from file, env, and defaults, then applies
// CLI flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if rootCmd.PersistentFlags().Changed("log-level") {
		cfg.Logging.Level, _ = rootCmd.PersistentFlags().GetString("log-level")
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		cfg.Logging.Format, _ = rootCmd.PersistentFlags().GetString("log-format")
	}
	return cfg, nil
}

// initLogging configures the default slog logger before any command runs.
// Commands that load full configuration reconfigure it with the final values.
func initLogging() error {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	format, _ := rootCmd.PersistentFlags().GetString("log-format")

	logCfg := config.LoggingConfig{
		Level:  strings.ToLower(level),
		Format: strings.ToLower(format),
	}
	if logCfg.Level == "warning" {
		logCfg.Level = "warn"
	}

	logger := observability.NewLoggerWithWriter(logCfg, os.Stderr)
	observability.SetDefault(logger)
	return nil
}
