package model

import "time"

// TimeSource provides the current time. Chain validation takes it as a
// dependency so that tests can control the clock.
type TimeSource interface {
	Now() time.Time
}
