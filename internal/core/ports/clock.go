package ports

import (
	"context"
	"time"
)

// FrameClock drives the engine's animation loops. Frame blocks until the
// next animation frame is due; Sleep blocks for a fixed pause. Both
// return early with the context error on cancellation. Animation code
// re-checks its generation token after every Frame/Sleep return, so a
// real implementation only needs to tick, never to cancel work itself.
type FrameClock interface {
	Now() time.Time
	Frame(ctx context.Context) error
	Sleep(ctx context.Context, d time.Duration) error
}

// TickClock is the production FrameClock: wall time plus a fixed frame
// interval.
type TickClock struct {
	Interval time.Duration
}

// NewTickClock returns a TickClock at the given frame interval,
// defaulting to ~60 frames per second.
func NewTickClock(interval time.Duration) *TickClock {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &TickClock{Interval: interval}
}

func (c *TickClock) Now() time.Time { return time.Now() }

func (c *TickClock) Frame(ctx context.Context) error {
	return c.Sleep(ctx, c.Interval)
}

func (c *TickClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
