package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func testConfig() Config {
	return Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             20 * time.Millisecond,
		HalfOpenMaxRequests: 3,
	}
}

func fail() error    { return errBoom }
func succeed() error { return nil }

func tripBreaker(t *testing.T, cb *CircuitBreaker, failures int) {
	t.Helper()
	for i := 0; i < failures; i++ {
		require.ErrorIs(t, cb.Execute(fail), errBoom)
	}
}

func TestClosedPassesThrough(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())

	assert.NoError(t, cb.Execute(succeed))
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())
	tripBreaker(t, cb, 3)

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.False(t, called, "open breaker must not run the call")
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())

	require.ErrorIs(t, cb.Execute(fail), errBoom)
	require.ErrorIs(t, cb.Execute(fail), errBoom)
	require.NoError(t, cb.Execute(succeed))
	require.ErrorIs(t, cb.Execute(fail), errBoom)
	require.ErrorIs(t, cb.Execute(fail), errBoom)

	// two failures after the reset is still below the threshold
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
}

func TestHalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())
	tripBreaker(t, cb, 3)
	require.ErrorIs(t, cb.Execute(succeed), ErrCircuitBreakerOpen)

	time.Sleep(30 * time.Millisecond)

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called, "half-open breaker probes the call")
	assert.Equal(t, StateHalfOpen, cb.GetState())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())
	tripBreaker(t, cb, 3)
	require.ErrorIs(t, cb.Execute(succeed), ErrCircuitBreakerOpen)
	time.Sleep(30 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(fail), errBoom)

	assert.Equal(t, StateOpen, cb.GetState())
	assert.ErrorIs(t, cb.Execute(succeed), ErrCircuitBreakerOpen)
}

func TestHalfOpenSuccessesClose(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())
	tripBreaker(t, cb, 3)
	require.ErrorIs(t, cb.Execute(succeed), ErrCircuitBreakerOpen)
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, cb.Execute(succeed))
	require.NoError(t, cb.Execute(succeed))
	require.NoError(t, cb.Execute(succeed))

	assert.Equal(t, StateClosed, cb.GetState())
}

func TestResetReturnsToClosed(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())
	tripBreaker(t, cb, 3)
	require.ErrorIs(t, cb.Execute(succeed), ErrCircuitBreakerOpen)

	cb.Reset()

	assert.Equal(t, StateClosed, cb.GetState())
	assert.NoError(t, cb.Execute(succeed))
}
