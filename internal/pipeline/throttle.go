package pipeline

import (
	"context"
	"time"
)

// SendDelay is the pause after every send attempt. It keeps a batch under
// typical provider rate limits and is not meant to be tuned per run.
const SendDelay = time.Second

// Throttle pauses for a fixed interval between outgoing messages.
type Throttle struct {
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewThrottle(interval time.Duration) *Throttle {
	if interval < 0 {
		interval = 0
	}
	return &Throttle{interval: interval, sleep: sleepContext}
}

// Wait blocks for the interval or until ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t.interval == 0 {
		return ctx.Err()
	}
	return t.sleep(ctx, t.interval)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
