package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session states as persisted in focus_sessions.state.
const (
	SessionRunning    = "running"
	SessionPaused     = "paused"
	SessionFinalizing = "finalizing"
	SessionCompleted  = "completed"
	SessionAborted    = "aborted"
)

func (s *Store) CreateSession(userKey string, taskID *int64, plannedSeconds int) (*FocusSession, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO focus_sessions (id, user_key, task_id, planned_duration, state, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, userKey, taskID, plannedSeconds, SessionRunning, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s.GetSession(id)
}

func (s *Store) GetSession(id string) (*FocusSession, error) {
	row := s.db.QueryRow(
		`SELECT id, user_key, task_id, planned_duration, elapsed, state, completed, started_at, ended_at
		 FROM focus_sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// GetActiveSession returns the user's non-terminal session, or nil.
func (s *Store) GetActiveSession(userKey string) (*FocusSession, error) {
	row := s.db.QueryRow(
		`SELECT id, user_key, task_id, planned_duration, elapsed, state, completed, started_at, ended_at
		 FROM focus_sessions
		 WHERE user_key = ? AND state NOT IN (?, ?)
		 ORDER BY started_at DESC LIMIT 1`,
		userKey, SessionCompleted, SessionAborted,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return sess, nil
}

// SetSessionState updates state (and elapsed) on a non-terminal session row.
func (s *Store) SetSessionState(id, state string, elapsed int) error {
	_, err := s.db.Exec(
		`UPDATE focus_sessions SET state = ?, elapsed = ?
		 WHERE id = ? AND state NOT IN (?, ?)`,
		state, elapsed, id, SessionCompleted, SessionAborted,
	)
	if err != nil {
		return fmt.Errorf("set session state: %w", err)
	}
	return nil
}

// AbortSession terminates the session without any reward.
func (s *Store) AbortSession(id string, elapsed int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE focus_sessions SET state = ?, elapsed = ?, ended_at = ?, completed = 0
		 WHERE id = ? AND state NOT IN (?, ?)`,
		SessionAborted, elapsed, now, id, SessionCompleted, SessionAborted,
	)
	if err != nil {
		return fmt.Errorf("abort session: %w", err)
	}
	return nil
}

// FinalizeSession marks the session completed and awards its coins in one
// transaction. The guard on completed = 0 makes a retry after a crash or a
// racing duplicate call award nothing: the grant and the completed flag
// commit or roll back together. Returns the coins granted (0 can mean the
// daily cap was reached, which is a valid outcome) and whether the session
// had already been finalized.
func (s *Store) FinalizeSession(id, userKey string, elapsed, minutes int, date string, dailyCap int) (grant int, alreadyDone bool, err error) {
	now := time.Now().UTC().Format(time.RFC3339)
	err = s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE focus_sessions
			 SET state = ?, completed = 1, elapsed = ?, ended_at = ?
			 WHERE id = ? AND completed = 0`,
			SessionCompleted, elapsed, now, id,
		)
		if err != nil {
			return fmt.Errorf("finalize session: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			alreadyDone = true
			return nil
		}

		grant, err = awardCoinsTx(tx, userKey, date, minutes, dailyCap)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return grant, alreadyDone, nil
}

func (s *Store) ListSessions(userKey string, limit int) ([]FocusSession, error) {
	query := `SELECT id, user_key, task_id, planned_duration, elapsed, state, completed, started_at, ended_at
		 FROM focus_sessions WHERE user_key = ? ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query, userKey)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []FocusSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// DailyFocusSummary aggregates completed sessions per day in [from, to).
// Sessions bucket by the day they finished, which is the same date key the
// daily_rewards rows are written under.
func (s *Store) DailyFocusSummary(userKey string, from, to time.Time) ([]DailyFocus, error) {
	rows, err := s.db.Query(`
		SELECT date(f.ended_at) AS day,
		       COALESCE(SUM(f.elapsed / 60), 0),
		       COUNT(*),
		       COALESCE(MAX(d.coins_earned), 0)
		FROM focus_sessions f
		LEFT JOIN daily_rewards d ON d.user_key = f.user_key AND d.date = date(f.ended_at)
		WHERE f.user_key = ? AND f.completed = 1
		  AND f.ended_at >= ? AND f.ended_at < ?
		GROUP BY day
		ORDER BY day`,
		userKey, from.Format(time.RFC3339), to.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily focus summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailyFocus
	for rows.Next() {
		var df DailyFocus
		if err := rows.Scan(&df.Date, &df.Minutes, &df.Sessions, &df.CoinsEarned); err != nil {
			return nil, err
		}
		summaries = append(summaries, df)
	}
	return summaries, rows.Err()
}

// CompletedTotals returns lifetime completed-session counts for the user.
func (s *Store) CompletedTotals(userKey string) (sessions int, minutes int64, err error) {
	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(elapsed / 60), 0)
		FROM focus_sessions
		WHERE user_key = ? AND completed = 1`, userKey,
	).Scan(&sessions, &minutes)
	if err != nil {
		return 0, 0, fmt.Errorf("completed totals: %w", err)
	}
	return sessions, minutes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*FocusSession, error) {
	f := &FocusSession{}
	var taskID sql.NullInt64
	var startedAt string
	var endedAt sql.NullString

	err := row.Scan(&f.ID, &f.UserKey, &taskID, &f.PlannedDuration, &f.Elapsed,
		&f.State, &f.Completed, &startedAt, &endedAt)
	if err != nil {
		return nil, err
	}
	if taskID.Valid {
		f.TaskID = &taskID.Int64
	}
	f.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if endedAt.Valid {
		t, _ := time.Parse(time.RFC3339, endedAt.String)
		f.EndedAt = &t
	}
	return f, nil
}
