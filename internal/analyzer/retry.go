package analyzer

import "time"

// RetryPolicy bounds repeated calls to the generation service.
// The backoff doubles per failed attempt: base, 2x base, 4x base...
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy matches the service's documented rate-limit guidance.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
}

// Backoff returns the delay to wait after the given zero-based
// failed attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BaseDelay << uint(attempt)
}
