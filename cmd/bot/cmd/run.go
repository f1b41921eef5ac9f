package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/server"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	Long: `Run the alert bot until interrupted.

It evaluates the watch-list on the cron cadence (top of every hour by default,
skipped during quiet hours), answers /test, /cycle and /status in Telegram, and
serves the keep-alive, health, metrics and manual trigger endpoints.

Example:
  bot run --config configs/config.yaml`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireTelegram(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log.Info().Int("instruments", len(cfg.Watchlist)).Msg("SignalSentinel starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sched.Start(ctx, cfg.Schedule.Cron); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	go a.telegram.StartPolling(ctx, a.sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	var srv *server.Server
	if cfg.ServerEnabled() {
		srv = server.New(server.Config{
			Port:       cfg.Server.Port,
			APIToken:   cfg.Server.APIToken,
			TrustProxy: cfg.Server.TrustProxy,
		}, a.sched, a.registry, logger.Component(log, "http"))
		srv.Start()
	}

	if cfg.RunOnStart() {
		a.sched.RunInBackground(ctx, model.TriggerStartup, false)
	}

	log.Info().Msg("SignalSentinel is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http server shutdown")
		}
	}
	// Waits for the startup cycle too, so the recorder is not closed under it.
	a.sched.Stop()
	log.Info().Msg("SignalSentinel stopped")
	return nil
}
