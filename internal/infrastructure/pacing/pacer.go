package pacing

import (
	"context"
	"time"

	"TosdrCollector/internal/ports"
)

// TimerPacer blocks on a real timer; it returns early when ctx is done.
type TimerPacer struct{}

var _ ports.Pacer = TimerPacer{}

// Pause sleeps for d. Non-positive durations return immediately.
func (TimerPacer) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
