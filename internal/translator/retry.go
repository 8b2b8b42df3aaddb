package translator

import (
	"context"
	"math"
	"math/rand"
	"time"

	"tonetranslate-go/internal/constants"
	"tonetranslate-go/internal/upstream"
)

func (p RetryPolicy) maxInterval() time.Duration {
	if p.MaxInterval <= 0 {
		return constants.DefaultMaxRetryDelay
	}
	return p.MaxInterval
}

func (p RetryPolicy) nextBackoff(attempt int) time.Duration {
	base := float64(p.Interval)
	max := float64(p.maxInterval())
	if base <= 0 {
		base = float64(constants.DefaultRetryInterval)
	}
	dur := base * math.Pow(constants.RetryBackoffFactor, float64(attempt))
	if dur > max {
		dur = max
	}
	jitter := 0.5 + rand.Float64()
	return time.Duration(dur * jitter)
}

// delay waits at least as long as the vendor's Retry-After hint, capped at
// MaxInterval.
func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	wait := p.nextBackoff(attempt)
	if hint := upstream.RetryAfter(err); hint > wait {
		wait = hint
		if ceil := p.maxInterval(); wait > ceil {
			wait = ceil
		}
	}
	return wait
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
