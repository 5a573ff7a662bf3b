// Package main runs the didyouthough API server and its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/config"
	"github.com/MikeSquared-Agency/didyouthough/internal/logging"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "didyouthough",
	Short: "Meeting accountability service",
	Long: `didyouthough turns meeting notes and recordings into tracked action items.

Configuration is read from the environment (PORT, DATABASE_URL, NATS_URL,
REDIS_URL, GROQ_API_KEY, SUPABASE_JWT_SECRET, SLACK_BOT_TOKEN, ...).`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// setup loads configuration and builds the logger every command shares.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
