package vm

import (
	"context"
	"time"
)

const DefaultFrameHz = 50

// Clock - Display tick source the engine synchronises to when a frame is
// shown.
type Clock interface {
	Ticks() int64
	Period() time.Duration
	Wait(ctx context.Context, ticks int) error
}

type RealClock struct {
	start  time.Time
	period time.Duration
}

func NewRealClock(hz int) *RealClock {
	if hz <= 0 {
		hz = DefaultFrameHz
	}
	return &RealClock{start: time.Now(), period: time.Second / time.Duration(hz)}
}

func (c *RealClock) Ticks() int64          { return int64(time.Since(c.start) / c.period) }
func (c *RealClock) Period() time.Duration { return c.period }

// Wait - Sleeps until the start of the tick n ticks from now, returning
// early when ctx is done.
func (c *RealClock) Wait(ctx context.Context, n int) error {
	if n <= 0 {
		return ctx.Err()
	}
	deadline := c.start.Add(time.Duration(c.Ticks()+int64(n)) * c.period)
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ManualClock - Clock that only moves when waited on or advanced, so runs
// are reproducible.
type ManualClock struct {
	ticks  int64
	period time.Duration
}

func NewManualClock(hz int) *ManualClock {
	if hz <= 0 {
		hz = DefaultFrameHz
	}
	return &ManualClock{period: time.Second / time.Duration(hz)}
}

func (c *ManualClock) Ticks() int64          { return c.ticks }
func (c *ManualClock) Period() time.Duration { return c.period }
func (c *ManualClock) Advance(n int)         { c.ticks += int64(n) }

func (c *ManualClock) Wait(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n > 0 {
		c.ticks += int64(n)
	}
	return nil
}
