package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/toolhouse"
	"github.com/aretw0/toolhouse/internal/logging"
	"github.com/aretw0/toolhouse/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toolhouse",
	Short: "Toolhouse is a tool server for AI agents",
	Long: `Toolhouse hosts a small set of tools (dice rolling, web search, GitHub
lookups, social post helpers) and exposes them over MCP or a JSON API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

// loadConfig reads the configuration named by --config and applies
// --log-level on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, nil
}

// newServer builds the tool host from the command's configuration. Logs
// always go to stderr.
func newServer(cmd *cobra.Command) (*toolhouse.Server, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(level)
	slog.SetDefault(logger)

	srv, err := toolhouse.New(cfg, toolhouse.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing toolhouse: %w", err)
	}
	return srv, logger, nil
}
