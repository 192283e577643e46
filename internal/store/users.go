package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) GetOrCreateUser(key string) (*User, error) {
	u, err := s.GetUser(key)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec(
		`INSERT INTO users (key, created_at) VALUES (?, ?)`, key, now,
	); err != nil {
		return nil, fmt.Errorf("create user %q: %w", key, err)
	}
	return s.GetUser(key)
}

func (s *Store) GetUser(key string) (*User, error) {
	u := &User{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT key, coins, created_at FROM users WHERE key = ?`, key,
	).Scan(&u.Key, &u.Coins, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", key, err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

// AdjustCoins applies delta to the user's coin balance as a single atomic
// increment. Callers must never read-then-write the balance themselves.
func (s *Store) AdjustCoins(key string, delta int64) error {
	res, err := s.db.Exec(
		`UPDATE users SET coins = coins + ? WHERE key = ?`, delta, key,
	)
	if err != nil {
		return fmt.Errorf("adjust coins for %q: %w", key, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("adjust coins: user %q not found", key)
	}
	return nil
}

func (s *Store) CoinBalance(key string) (int64, error) {
	var coins int64
	err := s.db.QueryRow(`SELECT coins FROM users WHERE key = ?`, key).Scan(&coins)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("coin balance for %q: %w", key, err)
	}
	return coins, nil
}
