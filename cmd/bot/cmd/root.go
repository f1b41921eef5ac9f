package cmd

import (
	"fmt"
	"os"

	"SignalSentinel/internal/config"
	"SignalSentinel/internal/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Hourly market signal alerts for a stock watch-list",
	Long: `SignalSentinel watches a list of instruments, scores trend, volatility and
distance from the all-time high, and posts one alert per instrument to Telegram.

Commands:
  run      Start the bot: cron cycles, Telegram commands and the HTTP endpoints
  cycle    Run a single cycle now and exit
  history  Show the most recent cycles from the audit log
  version  Print the version`,
	SilenceUsage: true,
}

var configPath string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	def := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", def, "path to the YAML config (env CONFIG_PATH)")
}

// loadConfig loads and validates the config, then builds the logger from it.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("config validation: %w", err)
	}
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
