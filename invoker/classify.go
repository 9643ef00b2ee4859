package invoker

import "time"

// Classifier tags errors for the retry loop. Classification is predicate
// based rather than type-set based so it can be unit-tested without any
// provider SDK's error hierarchy.
type Classifier struct {
	// IsRetryable reports whether the error is transient and should
	// trigger backoff and retry. Errors it rejects propagate on the
	// first occurrence.
	IsRetryable func(error) bool
	// IsRateLimit reports whether the error is specifically a rate-limit
	// rejection. Rate-limit errors may carry a provider sleep hint.
	IsRateLimit func(error) bool
	// SleepRecommendation extracts a provider-recommended sleep duration
	// from a rate-limit error, 0 when the error carries none.
	SleepRecommendation func(error) time.Duration
}

// NeverRetry classifies every error as permanent.
func NeverRetry() Classifier {
	return Classifier{}
}

func (c Classifier) retryable(err error) bool {
	return c.IsRetryable != nil && c.IsRetryable(err)
}

func (c Classifier) rateLimit(err error) bool {
	return c.IsRateLimit != nil && c.IsRateLimit(err)
}

func (c Classifier) sleepHint(err error) time.Duration {
	if c.SleepRecommendation == nil {
		return 0
	}
	return c.SleepRecommendation(err)
}
