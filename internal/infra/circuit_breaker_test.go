package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		assert.Equal(t, CBClosed, cb.State())
		require.Error(t, cb.Execute(func() error { return errBoom }))
	}
	assert.Equal(t, CBOpen, cb.State())

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 20 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	assert.Equal(t, CBOpen, cb.State())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	// Two successful probes close the breaker again.
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: 20 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(func() error { return errBoom }))
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return errBoom }))
	assert.Equal(t, CBClosed, cb.State(), "tripped despite interleaved success")
}
