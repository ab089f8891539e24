package pipeline

import (
	"math/rand/v2"
	"time"
)

// RetryPolicy bounds how often and how slowly a generation is retried.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

// DefaultRetry is used by NewWorker.
var DefaultRetry = RetryPolicy{Attempts: 3, Base: time.Second, Max: 30 * time.Second}

// Delay returns the wait before retry n (0-indexed): Base doubled per
// attempt, capped at Max, plus up to 50% jitter.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.Base << uint(attempt)
	if d <= 0 || d > p.Max {
		d = p.Max
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}
	return d
}
