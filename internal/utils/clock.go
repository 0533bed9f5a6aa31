package utils

import "time"

// Clock supplies the current time so services depending on "now" can be
// tested against fixed instants.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock with the server system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock implements Clock for tests.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Time
}
