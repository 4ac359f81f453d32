package app

import (
	"context"
	"time"
)

// Countdown decrements once per interval and fires its expiry callback exactly once when
// it reaches zero. Cancelling the context stops it without firing.
type Countdown struct {
	seconds  int
	interval time.Duration
}

func NewCountdown(seconds int, interval time.Duration) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{seconds: seconds, interval: interval}
}

// Run blocks until the countdown expires or ctx is cancelled.
func (c *Countdown) Run(ctx context.Context, onTick func(remaining int), onExpire func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	remaining := c.seconds
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		remaining--
		if onTick != nil {
			onTick(remaining)
		}
	}
	if ctx.Err() != nil {
		return
	}
	if onExpire != nil {
		onExpire()
	}
}
