package scheduler

// QuietWindow is a range of local hours [Start, End) during which scheduled
// cycles are skipped. Start > End wraps midnight.
type QuietWindow struct {
	Start   int
	End     int
	Enabled bool
}

// DefaultQuietWindow is 22:00 to 06:00.
var DefaultQuietWindow = QuietWindow{Start: 22, End: 6, Enabled: true}

// Contains reports whether hour falls inside the window.
func (q QuietWindow) Contains(hour int) bool {
	if !q.Enabled || q.Start == q.End {
		return false
	}
	if q.Start < q.End {
		return hour >= q.Start && hour < q.End
	}
	return hour >= q.Start || hour < q.End
}
