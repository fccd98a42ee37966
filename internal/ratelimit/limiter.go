// Package ratelimit caps requests per identity over fixed time windows.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether one more request for key fits its window.
// When it does not, retryAfter is the time until the window resets.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration)
}

// Clock is injected so windows can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}
