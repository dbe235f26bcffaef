package waha

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/wahax/logx"
)

// rateLimiter enforces a sliding-window cap on outbound sends: at most limit
// messages per window. A nil limiter or a limit of zero means unlimited.
type rateLimiter struct {
	mutex  sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		return nil
	}
	return &rateLimiter{
		limit:  limit,
		window: time.Minute,
		now:    time.Now,
	}
}

// wait blocks until a send slot is free or the context is cancelled, then
// claims the slot
func (r *rateLimiter) wait(ctx context.Context) error {
	if r == nil {
		return nil
	}

	for {
		r.mutex.Lock()
		now := r.now()

		// Drop timestamps that fell out of the window
		cutoff := now.Add(-r.window)
		kept := r.stamps[:0]
		for _, stamp := range r.stamps {
			if stamp.After(cutoff) {
				kept = append(kept, stamp)
			}
		}
		r.stamps = kept

		if len(r.stamps) < r.limit {
			r.stamps = append(r.stamps, now)
			r.mutex.Unlock()
			return nil
		}

		waitTime := r.window - now.Sub(r.stamps[0])
		r.mutex.Unlock()

		logx.Debug("Rate limit reached, waiting %s", waitTime)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}
