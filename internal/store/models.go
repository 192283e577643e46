package store

import "time"

type User struct {
	Key       string
	Coins     int64
	CreatedAt time.Time
}

type Task struct {
	ID          int64
	UserKey     string
	Title       string
	Notes       string
	Done        bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// FocusSession mirrors one row of focus_sessions. A session is terminal once
// state reaches "completed" or "aborted"; terminal rows are never mutated.
type FocusSession struct {
	ID              string
	UserKey         string
	TaskID          *int64
	PlannedDuration int // seconds
	Elapsed         int // seconds, 0 <= Elapsed <= PlannedDuration
	State           string
	Completed       bool
	StartedAt       time.Time
	EndedAt         *time.Time
}

// DailyReward tracks coins earned from focus sessions for one user on one
// calendar date. coins_earned never exceeds the daily cap and never decreases.
type DailyReward struct {
	UserKey     string
	Date        string // YYYY-MM-DD
	CoinsEarned int
}

type Achievement struct {
	ID            int64
	UserKey       string
	Title         string
	Description   string
	Type          string
	Requirement   int
	CurrentValue  int
	Completed     bool
	Reward        int
	RewardClaimed bool
}

type Streak struct {
	UserKey            string
	CurrentStreak      int
	LongestStreak      int
	LastQualifyingDate string // YYYY-MM-DD, empty before the first session
}

// DailyFocus is an aggregate of one user's completed sessions on one day.
type DailyFocus struct {
	Date        string
	Minutes     int64
	Sessions    int
	CoinsEarned int
}
