package utils

import "time"

// TimeProvider interface for time operations
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider implements TimeProvider using actual system time
type RealTimeProvider struct{}

func (p RealTimeProvider) Now() time.Time {
	return time.Now()
}

// FixedTimeProvider implements TimeProvider with a fixed instant, for tests
// of freshness checks and run summaries.
type FixedTimeProvider struct {
	Fixed time.Time
}

func (p FixedTimeProvider) Now() time.Time {
	return p.Fixed
}
