package store

import (
	"database/sql"
	"fmt"
)

// CatalogAchievement is one entry of the fixed achievement catalog inserted
// for each new user.
type CatalogAchievement struct {
	Title       string
	Description string
	Type        string
	Requirement int
	Reward      int
}

// SeedAchievements inserts the catalog for a user. Rows that already exist
// are left untouched, so seeding is safe to repeat on every startup.
func (s *Store) SeedAchievements(userKey string, catalog []CatalogAchievement) error {
	return s.withTx(func(tx *sql.Tx) error {
		for _, c := range catalog {
			_, err := tx.Exec(
				`INSERT OR IGNORE INTO achievements (user_key, title, description, type, requirement, reward)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				userKey, c.Title, c.Description, c.Type, c.Requirement, c.Reward,
			)
			if err != nil {
				return fmt.Errorf("seed achievement %q: %w", c.Title, err)
			}
		}
		return nil
	})
}

func (s *Store) ListAchievements(userKey string) ([]Achievement, error) {
	rows, err := s.db.Query(
		`SELECT id, user_key, title, description, type, requirement, current_value, completed, reward, reward_claimed
		 FROM achievements WHERE user_key = ? ORDER BY id`, userKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.UserKey, &a.Title, &a.Description, &a.Type,
			&a.Requirement, &a.CurrentValue, &a.Completed, &a.Reward, &a.RewardClaimed); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func (s *Store) GetAchievement(id int64) (*Achievement, error) {
	a := &Achievement{}
	err := s.db.QueryRow(
		`SELECT id, user_key, title, description, type, requirement, current_value, completed, reward, reward_claimed
		 FROM achievements WHERE id = ?`, id,
	).Scan(&a.ID, &a.UserKey, &a.Title, &a.Description, &a.Type,
		&a.Requirement, &a.CurrentValue, &a.Completed, &a.Reward, &a.RewardClaimed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get achievement %d: %w", id, err)
	}
	return a, nil
}

// AddAchievementProgress increments current_value by delta and flips
// completed once the requirement is met. completed never flips back.
func (s *Store) AddAchievementProgress(id int64, delta int) error {
	if delta <= 0 {
		return nil
	}
	_, err := s.db.Exec(
		`UPDATE achievements
		 SET current_value = current_value + ?,
		     completed = CASE WHEN current_value + ? >= requirement THEN 1 ELSE completed END
		 WHERE id = ?`,
		delta, delta, id,
	)
	if err != nil {
		return fmt.Errorf("add achievement progress: %w", err)
	}
	return nil
}

// RaiseAchievementValue sets current_value to value unless the stored value
// is already higher, keeping progress monotonic. Used for streak-typed
// achievements where progress is an absolute streak length, not a delta.
func (s *Store) RaiseAchievementValue(id int64, value int) error {
	_, err := s.db.Exec(
		`UPDATE achievements
		 SET current_value = MAX(current_value, ?),
		     completed = CASE WHEN MAX(current_value, ?) >= requirement THEN 1 ELSE completed END
		 WHERE id = ?`,
		value, value, id,
	)
	if err != nil {
		return fmt.Errorf("raise achievement value: %w", err)
	}
	return nil
}

// ClaimAchievement flips reward_claimed and credits the reward in one
// transaction. The WHERE guard makes a repeated claim a no-op: claimed
// reports whether this call performed the credit.
func (s *Store) ClaimAchievement(id int64) (ach *Achievement, claimed bool, err error) {
	err = s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE achievements SET reward_claimed = 1
			 WHERE id = ? AND completed = 1 AND reward_claimed = 0`, id,
		)
		if err != nil {
			return fmt.Errorf("claim achievement: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return nil
		}
		claimed = true

		var userKey string
		var reward int
		if err := tx.QueryRow(
			`SELECT user_key, reward FROM achievements WHERE id = ?`, id,
		).Scan(&userKey, &reward); err != nil {
			return fmt.Errorf("read claimed achievement: %w", err)
		}
		if _, err := tx.Exec(
			`UPDATE users SET coins = coins + ? WHERE key = ?`, reward, userKey,
		); err != nil {
			return fmt.Errorf("credit achievement reward: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	ach, err = s.GetAchievement(id)
	if err != nil {
		return nil, claimed, err
	}
	return ach, claimed, nil
}
