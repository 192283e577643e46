package engine

// DailyCap is the maximum coins earnable from focus sessions per user per
// calendar date. One coin corresponds to one completed focus minute.
const DailyCap = 100

// Session duration bounds, in minutes.
const (
	MinSessionMinutes = 1
	MaxSessionMinutes = 120
)

// AchievementType enumerates the closed set of achievement categories. Each
// type has exactly one update rule in the engine, so adding a type is a
// compile-time-visible change.
type AchievementType string

const (
	// TypeFocusTime accumulates completed focus minutes.
	TypeFocusTime AchievementType = "focus_time"
	// TypeSessions counts completed sessions.
	TypeSessions AchievementType = "sessions"
	// TypeTask counts completed tasks.
	TypeTask AchievementType = "task"
	// TypeStreak tracks the longest observed daily streak.
	TypeStreak AchievementType = "streak"
	// TypeCoins accumulates coins granted from focus rewards.
	TypeCoins AchievementType = "coins"
	// TypeMilestone marks one-off goals with no automatic session delta.
	TypeMilestone AchievementType = "milestone"
)

func (t AchievementType) IsValid() bool {
	switch t {
	case TypeFocusTime, TypeSessions, TypeTask, TypeStreak, TypeCoins, TypeMilestone:
		return true
	default:
		return false
	}
}

const dateLayout = "2006-01-02"
