package store

import (
	"fmt"
	"strconv"
)

// Setting keys. Duration values are stored in seconds, the daily goal in
// minutes.
const (
	SettingDefaultDuration = "default_duration"
	SettingBreakDuration   = "break_duration"
	SettingDailyGoal       = "daily_goal"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// IntSetting reads a numeric setting. A missing or malformed row yields the
// fallback rather than an error: every setting has a usable default.
func (s *Store) IntSetting(key string, fallback int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s *Store) SetIntSetting(key string, value int) error {
	return s.SetSetting(key, strconv.Itoa(value))
}
