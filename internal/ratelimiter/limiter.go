package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RelayLimiter is a token bucket ahead of every relay send. The chat API
// behind the relay throttles aggressively on bursts, so burst is set equal
// to the rate: no "saved up" capacity above the per-second maximum.
type RelayLimiter struct {
	limiter *rate.Limiter
}

// New creates a RelayLimiter allowing ratePerSec sends per second.
func New(ratePerSec int) *RelayLimiter {
	return &RelayLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// Wait blocks until the limiter grants a token. Called by each fan-out
// goroutine immediately before its relay call. Returns a non-nil error
// only if ctx is cancelled while waiting.
func (rl *RelayLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}
