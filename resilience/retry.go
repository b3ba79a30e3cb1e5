package resilience

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig shapes the exponential backoff used against downstream
// services.
type RetryConfig struct {
	MaxAttempts       uint
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       4,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

// Backoff materializes the config as a fresh backoff policy. Policies are
// stateful and must not be shared between concurrent retries.
func (c *RetryConfig) Backoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialDelay
	b.MaxInterval = c.MaxDelay
	b.Multiplier = c.BackoffMultiplier
	return b
}
