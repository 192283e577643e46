package engine

import (
	"fmt"
	"time"

	"github.com/harshithreddy-dev/rewardo/internal/store"
)

// activeSession is the in-memory side of one running focus session. The
// one-second countdown is owned here: a single re-armed timer per session,
// cancelled on pause and re-armed on resume.
type activeSession struct {
	id          string
	taskID      *int64
	planned     int // seconds
	remaining   int // seconds
	state       string
	timer       *time.Timer
	finalizeErr error
}

func (s *activeSession) elapsed() int {
	el := s.planned - s.remaining
	if el < 0 {
		el = 0
	}
	if el > s.planned {
		el = s.planned
	}
	return el
}

// SessionResult summarizes a finalized session for the UI. Coins may be less
// than Minutes once the daily cap is reached; that is a valid outcome, not
// an error.
type SessionResult struct {
	SessionID string
	TaskID    *int64
	Elapsed   int // seconds
	Minutes   int
	Coins     int
	Natural   bool // expired on its own rather than collected early
}

// SessionSnapshot is a read-only view safe to poll every tick.
type SessionSnapshot struct {
	Active     bool
	SessionID  string
	TaskID     *int64
	State      string
	Planned    int
	Remaining  int
	Elapsed    int
	LastResult *SessionResult
	// LastError holds the most recent finalize failure while the session is
	// stuck in finalizing; Collect retries and clears it.
	LastError error
}

// StartSession validates the duration, persists a new running session and
// arms the countdown. Exactly one session may be in flight per user.
func (e *Engine) StartSession(userKey string, taskID *int64, minutes int) (*SessionSnapshot, error) {
	if minutes < MinSessionMinutes || minutes > MaxSessionMinutes {
		return nil, ErrInvalidDuration
	}

	slot := e.slot(userKey)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.session != nil {
		return nil, ErrSessionActive
	}

	row, err := e.store.CreateSession(userKey, taskID, minutes*60)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	sess := &activeSession{
		id:        row.ID,
		taskID:    taskID,
		planned:   row.PlannedDuration,
		remaining: row.PlannedDuration,
		state:     store.SessionRunning,
	}
	slot.session = sess
	slot.lastResult = nil
	if e.autoTick {
		e.armTick(userKey, sess)
	}
	return snapshotLocked(slot), nil
}

func (e *Engine) armTick(userKey string, sess *activeSession) {
	sess.timer = time.AfterFunc(time.Second, func() {
		e.Tick(userKey)
	})
}

// Tick advances the countdown by one second. A tick that fires after a
// pause or abort observes the state and applies nothing. At zero remaining
// the session finalizes itself.
func (e *Engine) Tick(userKey string) {
	slot := e.slot(userKey)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	sess := slot.session
	if sess == nil || sess.state != store.SessionRunning {
		return
	}

	sess.remaining--
	if sess.remaining <= 0 {
		sess.remaining = 0
		// A failed finalize is recorded on the session and surfaced through
		// Snapshot; the session stays in finalizing until Collect retries.
		e.finalizeLocked(userKey, slot, sess, true)
		return
	}
	if e.autoTick {
		e.armTick(userKey, sess)
	}
}

// Pause stops the countdown without losing elapsed time. Pausing an already
// paused session is a no-op.
func (e *Engine) Pause(userKey string) error {
	slot := e.slot(userKey)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	sess := slot.session
	if sess == nil {
		return ErrNoActiveSession
	}
	if sess.state != store.SessionRunning {
		return nil
	}

	if sess.timer != nil {
		sess.timer.Stop()
	}
	sess.state = store.SessionPaused
	if err := e.store.SetSessionState(sess.id, store.SessionPaused, sess.elapsed()); err != nil {
		return fmt.Errorf("pause session: %w", err)
	}
	return nil
}

// Resume re-arms the countdown. Resuming a running session is a no-op.
func (e *Engine) Resume(userKey string) error {
	slot := e.slot(userKey)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	sess := slot.session
	if sess == nil {
		return ErrNoActiveSession
	}
	if sess.state != store.SessionPaused {
		return nil
	}

	sess.state = store.SessionRunning
	if e.autoTick {
		e.armTick(userKey, sess)
	}
	if err := e.store.SetSessionState(sess.id, store.SessionRunning, sess.elapsed()); err != nil {
		return fmt.Errorf("resume session: %w", err)
	}
	return nil
}

// Collect ends the session early (or retries a finalize that failed on
// persistence) and claims the reward.
func (e *Engine) Collect(userKey string) (*SessionResult, error) {
	slot := e.slot(userKey)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	sess := slot.session
	if sess == nil {
		return nil, ErrNoActiveSession
	}
	return e.finalizeLocked(userKey, slot, sess, false)
}

// Abort terminates the session without any reward. Valid from running or
// paused; the elapsed time is recorded for history.
func (e *Engine) Abort(userKey string) error {
	slot := e.slot(userKey)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	sess := slot.session
	if sess == nil {
		return ErrNoActiveSession
	}
	if sess.state != store.SessionRunning && sess.state != store.SessionPaused {
		return ErrNoActiveSession
	}

	if sess.timer != nil {
		sess.timer.Stop()
	}
	if err := e.store.AbortSession(sess.id, sess.elapsed()); err != nil {
		return fmt.Errorf("abort session: %w", err)
	}
	slot.session = nil
	return nil
}

// finalizeLocked runs the reward and achievement pipeline exactly once per
// session. The store's finalize transaction flips the session terminal and
// applies the grant atomically; on persistence failure the session stays in
// finalizing and a later Collect retries. Callers hold the slot lock.
func (e *Engine) finalizeLocked(userKey string, slot *userSlot, sess *activeSession, natural bool) (*SessionResult, error) {
	if sess.timer != nil {
		sess.timer.Stop()
	}
	sess.state = store.SessionFinalizing
	sess.finalizeErr = nil

	elapsed := sess.elapsed()
	minutes := elapsed / 60
	date := e.clock.Now().UTC().Format(dateLayout)

	grant, alreadyDone, err := e.store.FinalizeSession(sess.id, userKey, elapsed, minutes, date, DailyCap)
	if err != nil {
		sess.finalizeErr = err
		return nil, fmt.Errorf("finalize session: %w", err)
	}

	result := &SessionResult{
		SessionID: sess.id,
		TaskID:    sess.taskID,
		Elapsed:   elapsed,
		Minutes:   minutes,
		Coins:     grant,
		Natural:   natural,
	}
	slot.session = nil
	slot.lastResult = result

	if alreadyDone {
		return result, nil
	}
	if err := e.achievements.OnSessionCompleted(userKey, elapsed, grant); err != nil {
		return result, fmt.Errorf("apply session to achievements: %w", err)
	}
	return result, nil
}

// Snapshot returns the current session view; safe to poll every tick.
func (e *Engine) Snapshot(userKey string) SessionSnapshot {
	slot := e.slot(userKey)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return *snapshotLocked(slot)
}

// TimeRemaining reports the seconds left, or zero with no active session.
func (e *Engine) TimeRemaining(userKey string) int {
	slot := e.slot(userKey)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.session == nil {
		return 0
	}
	return slot.session.remaining
}

func snapshotLocked(slot *userSlot) *SessionSnapshot {
	snap := &SessionSnapshot{LastResult: slot.lastResult}
	if sess := slot.session; sess != nil {
		snap.Active = true
		snap.SessionID = sess.id
		snap.TaskID = sess.taskID
		snap.State = sess.state
		snap.Planned = sess.planned
		snap.Remaining = sess.remaining
		snap.Elapsed = sess.elapsed()
		snap.LastError = sess.finalizeErr
	}
	return snap
}
