package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/recorder"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent cycles from the audit log",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of cycles to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is not set")
	}

	rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.Component(log, "recorder"))
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer rec.Close()

	rows, err := rec.RecentCycles(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tTRIGGER\tFORCED\tSKIPPED\tOK\tERR\tSKIP\tDURATION")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Trigger, r.Forced, r.Skipped,
			r.SuccessCount, r.ErrorCount, r.SkippedCount, r.Duration.Round(time.Millisecond))
	}
	return w.Flush()
}
