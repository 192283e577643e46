package engine

import "time"

// Clock supplies the current time. The engine never calls time.Now directly
// so tests can drive calendar-date behavior (streaks, the daily cap window).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
