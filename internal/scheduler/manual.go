package scheduler

import (
	"context"
	"fmt"

	"SignalSentinel/internal/cooldown"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
)

// TriggerManual runs a forced cycle for requester unless it is cooling down.
// A rejection wraps cooldown.ErrCooldown; use cooldown.Remaining for the wait.
func (s *Scheduler) TriggerManual(ctx context.Context, requester string) (model.CycleReport, error) {
	if s.Guard != nil {
		if left, ok := s.Guard.Check(ctx, requester); !ok {
			return model.CycleReport{}, &cooldown.WaitError{Remaining: left}
		}
	}
	s.Log.Info().Str("requester", requester).Msg("manual cycle requested")
	return s.RunCycle(ctx, model.TriggerManual, true), nil
}

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, cmd model.Command) string {
	switch cmd.Name() {
	case "/test", "/cycle":
		report, err := s.TriggerManual(ctx, cmd.UserID)
		if err != nil {
			if left, ok := cooldown.Remaining(err); ok {
				return fmt.Sprintf("⏳ Please wait %ds before triggering another cycle.", cooldown.Seconds(left))
			}
			return "❌ Something went wrong while running the cycle."
		}
		return "🧪 Manual cycle done, see the alerts chat.\n" + notifier.FormatCycleSummary(report)
	case "/status":
		return notifier.FormatStatus(s.Last(), s.Next(), s.Location)
	default:
		return notifier.FormatHelp()
	}
}
