package backend

import "time"

// Retry policy defaults.
const (
	DefaultMaxAttempts       = 3
	DefaultAttemptTimeout    = 30 * time.Second
	DefaultBackoffInitial    = 200 * time.Millisecond
	DefaultBackoffMultiplier = 2.0
	DefaultBackoffMax        = 2 * time.Second
)

// RetryPolicy is applied identically to every outbound call and never
// changes during one.
type RetryPolicy struct {
	MaxAttempts       int
	AttemptTimeout    time.Duration
	BackoffInitial    time.Duration
	BackoffMultiplier float64
	BackoffMax        time.Duration
}

// DefaultRetryPolicy returns 3 attempts of 30s with 200ms..2s backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{}.withDefaults()
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.AttemptTimeout <= 0 {
		p.AttemptTimeout = DefaultAttemptTimeout
	}
	if p.BackoffInitial <= 0 {
		p.BackoffInitial = DefaultBackoffInitial
	}
	if p.BackoffMultiplier < 1 {
		p.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if p.BackoffMax <= 0 {
		p.BackoffMax = DefaultBackoffMax
	}
	if p.BackoffMax < p.BackoffInitial {
		p.BackoffMax = p.BackoffInitial
	}
	return p
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(failed int) time.Duration {
	delay := p.BackoffInitial
	for i := 1; i < failed; i++ {
		delay = time.Duration(float64(delay) * p.BackoffMultiplier)
		if delay >= p.BackoffMax {
			return p.BackoffMax
		}
	}
	if delay > p.BackoffMax {
		return p.BackoffMax
	}
	return delay
}

// Ceiling is the operational upper bound on one call's latency:
// every attempt times out and every backoff is waited in full.
func (p RetryPolicy) Ceiling() time.Duration {
	total := time.Duration(p.MaxAttempts) * p.AttemptTimeout
	for i := 1; i < p.MaxAttempts; i++ {
		total += p.Backoff(i)
	}
	return total
}
