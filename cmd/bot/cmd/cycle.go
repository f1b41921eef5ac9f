package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/scheduler"

	"github.com/spf13/cobra"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one alert cycle now and exit",
	Long: `Evaluate the whole watch-list once.

Without --force the cycle is skipped during quiet hours. With --dry-run the
reports are printed to stdout instead of being sent to Telegram.

Example:
  bot cycle --force --dry-run`,
	RunE: runOneCycle,
}

var (
	cycleForce  bool
	cycleDryRun bool
)

func init() {
	rootCmd.AddCommand(cycleCmd)

	cycleCmd.Flags().BoolVarP(&cycleForce, "force", "f", false, "run even during quiet hours")
	cycleCmd.Flags().BoolVar(&cycleDryRun, "dry-run", false, "print reports to stdout instead of Telegram")
}

func runOneCycle(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	var sink scheduler.Sink
	if cycleDryRun {
		sink = notifier.NewConsoleSink(cmd.OutOrStdout())
	} else if err := cfg.RequireTelegram(); err != nil {
		return fmt.Errorf("config validation: %w (use --dry-run to print instead)", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log, sink)
	if err != nil {
		return err
	}
	defer a.Close()

	trigger := model.TriggerScheduled
	if cycleForce {
		trigger = model.TriggerManual
	}
	report := a.sched.RunCycle(ctx, trigger, cycleForce)
	fmt.Fprintln(cmd.OutOrStdout(), notifier.PlainText(notifier.FormatCycleSummary(report)))

	if !report.Skipped && report.SuccessCount == 0 && report.Evaluated() > 0 {
		return fmt.Errorf("cycle %s: no instrument delivered", report.ID)
	}
	return nil
}
