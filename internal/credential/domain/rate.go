package domain

// RateDecision is the outcome of a rate-guard check for one bucket.
type RateDecision struct {
	// Throttled is true once the bucket's count exceeds its limit. Further
	// calls within the same window stay throttled without bumping the count.
	Throttled bool

	// Count is the number of attempts recorded in the current window.
	Count int64

	// Limit is the configured maximum for the bucket.
	Limit int64
}
