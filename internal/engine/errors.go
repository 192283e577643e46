package engine

import "errors"

// Validation errors are returned before any state is mutated.
var (
	// ErrSessionActive is returned by StartSession while another focus
	// session is still in flight for the same user.
	ErrSessionActive = errors.New("a focus session is already active")

	// ErrInvalidDuration is returned for durations outside 1-120 minutes.
	// Out-of-range input is rejected rather than clamped so UI bugs
	// surface instead of being masked.
	ErrInvalidDuration = errors.New("session duration must be between 1 and 120 minutes")

	// ErrNoActiveSession is returned by pause/resume/collect/abort when
	// nothing is running.
	ErrNoActiveSession = errors.New("no active focus session")

	// ErrClaimAlreadyDone is returned when an achievement reward has
	// already been claimed.
	ErrClaimAlreadyDone = errors.New("achievement reward already claimed")

	// ErrNotCompleted is returned when claiming an achievement whose
	// requirement is not yet met.
	ErrNotCompleted = errors.New("achievement not completed")
)
