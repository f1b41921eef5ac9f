// Package cooldown limits how often a requester may trigger a manual cycle.
package cooldown

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultWindow is the wait imposed between two manual triggers of one requester.
const DefaultWindow = 30 * time.Second

// ErrCooldown is returned when a requester is still cooling down.
var ErrCooldown = errors.New("cooldown active")

// Store records the last accepted request per key.
type Store interface {
	// Acquire starts a window for key if none is active. When one is active it
	// returns ok=false and the time left.
	Acquire(ctx context.Context, key string, window time.Duration) (remaining time.Duration, ok bool, err error)
}

// WaitError carries the time left before a requester may trigger again.
type WaitError struct {
	Remaining time.Duration
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("%v: retry in %ds", ErrCooldown, Seconds(e.Remaining))
}

func (e *WaitError) Unwrap() error { return ErrCooldown }

// Remaining extracts the wait from an error returned for a rejected request.
func Remaining(err error) (time.Duration, bool) {
	var we *WaitError
	if errors.As(err, &we) {
		return we.Remaining, true
	}
	return 0, false
}

// Seconds rounds d up to whole seconds, so a pending wait never reads as 0.
func Seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
