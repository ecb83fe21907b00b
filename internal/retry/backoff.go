package retry

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff implements exponential backoff with jitter.
type ExponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64

	// maxAttempts is the maximum number of retry attempts (-1 = unlimited, 0 = no retries)
	maxAttempts int

	// jitter of 0.1 means +/- 10% randomness
	jitter     float64
	jitterFunc func() float64
}

// BackoffOption is a functional option for configuring ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithInitialDelay sets the delay for the first retry attempt.
func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.initialDelay = d }
}

// WithMaxDelay caps the delay between retry attempts.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.maxDelay = d }
}

// WithMultiplier sets the growth factor between attempts.
func WithMultiplier(m float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.multiplier = m }
}

// WithJitter sets the jitter factor (0.0-1.0).
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitter = j }
}

// WithJitterFunc sets the source of random values in [0, 1).
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitterFunc = f }
}

// NewExponentialBackoff creates a backoff strategy: 100ms initial delay,
// doubling, capped at 30s, 10% jitter, unless overridden by options.
//
// Example:
//
//	backoff := retry.NewExponentialBackoff(3,
//	    retry.WithInitialDelay(200 * time.Millisecond),
//	    retry.WithMaxDelay(5 * time.Second),
//	)
func NewExponentialBackoff(maxAttempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initialDelay: 100 * time.Millisecond,
		maxDelay:     30 * time.Second,
		multiplier:   2.0,
		maxAttempts:  maxAttempts,
		jitter:       0.1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NextDelay returns initialDelay * multiplier^attempt, capped and jittered.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delayMs := float64(b.initialDelay.Milliseconds()) * math.Pow(b.multiplier, float64(attempt))
	if capMs := float64(b.maxDelay.Milliseconds()); delayMs > capMs {
		delayMs = capMs
	}

	if b.jitter > 0 {
		random := b.jitterFunc
		if random == nil {
			random = rand.Float64
		}
		// Map [0,1) to [-1,1) and scale by jitter.
		delayMs *= 1.0 + b.jitter*((random()-0.5)*2.0)
	}

	return time.Duration(delayMs) * time.Millisecond
}

// MaxAttempts returns the maximum number of retry attempts.
func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}

// InitialDelay returns the initial delay for tests and debugging.
func (b *ExponentialBackoff) InitialDelay() time.Duration {
	return b.initialDelay
}

// MaxDelay returns the maximum delay for tests and debugging.
func (b *ExponentialBackoff) MaxDelay() time.Duration {
	return b.maxDelay
}
