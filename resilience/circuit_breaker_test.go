package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("test", 3, time.Minute)
	failure := errors.New("downstream failed")

	for range 2 {
		require.True(t, cb.Allow())
		cb.RecordResult(failure)
	}
	require.Equal(t, CircuitClosed, cb.State())

	cb.RecordResult(failure)
	require.Equal(t, CircuitOpen, cb.State())
	require.False(t, cb.Allow())
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("test", 2, time.Minute)
	failure := errors.New("downstream failed")

	cb.RecordResult(failure)
	cb.RecordResult(nil)
	cb.RecordResult(failure)

	require.Equal(t, CircuitClosed, cb.State())
	require.True(t, cb.Allow())
}

func TestCircuitBreakerHalfOpenProbe(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)
	cb.RecordResult(errors.New("downstream failed"))
	require.False(t, cb.Allow())

	time.Sleep(20 * time.Millisecond)

	// One probe is allowed through; its success closes the circuit again.
	require.True(t, cb.Allow())
	require.Equal(t, CircuitHalfOpen, cb.State())
	cb.RecordResult(nil)
	require.Equal(t, CircuitClosed, cb.State())
}

func TestRetryConfigBackoff(t *testing.T) {
	t.Parallel()

	cfg := DefaultRetryConfig()
	b := cfg.Backoff()

	first := b.NextBackOff()
	require.Greater(t, first, time.Duration(0))
	require.LessOrEqual(t, first, cfg.MaxDelay)
}
