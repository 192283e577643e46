package store

import (
	"database/sql"
	"fmt"
)

// GetStreak returns the user's streak row; a missing row reads as zeros.
func (s *Store) GetStreak(userKey string) (*Streak, error) {
	st := &Streak{UserKey: userKey}
	err := s.db.QueryRow(
		`SELECT current_streak, longest_streak, last_qualifying_date
		 FROM streaks WHERE user_key = ?`, userKey,
	).Scan(&st.CurrentStreak, &st.LongestStreak, &st.LastQualifyingDate)
	if err == sql.ErrNoRows {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	return st, nil
}

func (s *Store) UpsertStreak(st *Streak) error {
	_, err := s.db.Exec(
		`INSERT INTO streaks (user_key, current_streak, longest_streak, last_qualifying_date)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_key) DO UPDATE SET
		   current_streak = excluded.current_streak,
		   longest_streak = excluded.longest_streak,
		   last_qualifying_date = excluded.last_qualifying_date`,
		st.UserKey, st.CurrentStreak, st.LongestStreak, st.LastQualifyingDate,
	)
	if err != nil {
		return fmt.Errorf("upsert streak: %w", err)
	}
	return nil
}
