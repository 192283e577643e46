package store

import (
	"database/sql"
	"fmt"
)

// GetDailyReward returns coins earned from focus sessions on the given date.
// A missing row reads as zero.
func (s *Store) GetDailyReward(userKey, date string) (int, error) {
	var coins int
	err := s.db.QueryRow(
		`SELECT coins_earned FROM daily_rewards WHERE user_key = ? AND date = ?`,
		userKey, date,
	).Scan(&coins)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get daily reward: %w", err)
	}
	return coins, nil
}

// AwardCoins grants up to minutes coins, truncated so the day's total never
// exceeds dailyCap, and credits the user's balance by the same amount. The
// read-modify-write runs in one transaction.
func (s *Store) AwardCoins(userKey, date string, minutes, dailyCap int) (int, error) {
	var grant int
	err := s.withTx(func(tx *sql.Tx) error {
		var err error
		grant, err = awardCoinsTx(tx, userKey, date, minutes, dailyCap)
		return err
	})
	if err != nil {
		return 0, err
	}
	return grant, nil
}

func awardCoinsTx(tx *sql.Tx, userKey, date string, minutes, dailyCap int) (int, error) {
	var earned int
	err := tx.QueryRow(
		`SELECT coins_earned FROM daily_rewards WHERE user_key = ? AND date = ?`,
		userKey, date,
	).Scan(&earned)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("read daily reward: %w", err)
	}

	grant := dailyCap - earned
	if grant > minutes {
		grant = minutes
	}
	if grant <= 0 {
		// Cap reached; not an error.
		return 0, nil
	}

	if _, err := tx.Exec(
		`INSERT INTO daily_rewards (user_key, date, coins_earned) VALUES (?, ?, ?)
		 ON CONFLICT(user_key, date) DO UPDATE SET coins_earned = coins_earned + excluded.coins_earned`,
		userKey, date, grant,
	); err != nil {
		return 0, fmt.Errorf("upsert daily reward: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE users SET coins = coins + ? WHERE key = ?`, grant, userKey,
	); err != nil {
		return 0, fmt.Errorf("credit coins: %w", err)
	}
	return grant, nil
}
