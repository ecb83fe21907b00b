package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoff_Defaults(t *testing.T) {
	strategy := NewExponentialBackoff(3)

	if strategy.InitialDelay() != 100*time.Millisecond {
		t.Errorf("Expected InitialDelay=100ms, got %v", strategy.InitialDelay())
	}
	if strategy.MaxDelay() != 30*time.Second {
		t.Errorf("Expected MaxDelay=30s, got %v", strategy.MaxDelay())
	}
	if strategy.MaxAttempts() != 3 {
		t.Errorf("Expected MaxAttempts=3, got %d", strategy.MaxAttempts())
	}
}

func TestExponentialBackoff_NextDelay_WithoutJitter(t *testing.T) {
	strategy := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithJitter(0),
	)

	tests := []struct {
		attempt       int
		expectedDelay time.Duration
	}{
		{attempt: 0, expectedDelay: 100 * time.Millisecond},
		{attempt: 1, expectedDelay: 200 * time.Millisecond},
		{attempt: 2, expectedDelay: 400 * time.Millisecond},
		{attempt: 3, expectedDelay: 800 * time.Millisecond},
	}

	for _, tt := range tests {
		if delay := strategy.NextDelay(tt.attempt); delay != tt.expectedDelay {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, delay, tt.expectedDelay)
		}
	}
}

func TestExponentialBackoff_NextDelay_Capped(t *testing.T) {
	strategy := NewExponentialBackoff(50,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(1*time.Second),
		WithJitter(0),
	)

	for attempt := 4; attempt <= 50; attempt++ {
		if delay := strategy.NextDelay(attempt); delay != time.Second {
			t.Errorf("Attempt %d: expected delay capped at 1s, got %v", attempt, delay)
		}
	}
}

func TestExponentialBackoff_NextDelay_DeterministicJitter(t *testing.T) {
	tests := []struct {
		random float64
		want   time.Duration
	}{
		{random: 0.0, want: 90 * time.Millisecond},
		{random: 0.5, want: 100 * time.Millisecond},
		{random: 1.0, want: 110 * time.Millisecond},
	}

	for _, tt := range tests {
		strategy := NewExponentialBackoff(3,
			WithInitialDelay(100*time.Millisecond),
			WithJitter(0.1),
			WithJitterFunc(func() float64 { return tt.random }),
		)
		if got := strategy.NextDelay(0); got != tt.want {
			t.Errorf("NextDelay with random=%v = %v, want %v", tt.random, got, tt.want)
		}
	}
}
