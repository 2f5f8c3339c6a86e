package pace

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out successive calls to an external API. The first Wait
// returns immediately; each later one blocks until interval has passed
// since the previous call was let through.
type Pacer struct {
	lim *rate.Limiter
}

// New returns a pacer for interval. A zero or negative interval never blocks.
func New(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{lim: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{lim: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call may proceed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return p.lim.Wait(ctx)
}
