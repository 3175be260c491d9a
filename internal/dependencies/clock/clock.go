package clock

import "time"

// Clock abstracts the wall clock so services can be tested against a
// fixed or advancing time source.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// New creates a RealClock.
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC. Timestamps are persisted and
// compared across storage backends, so they are normalized here.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
