package engine

import (
	"fmt"

	"github.com/harshithreddy-dev/rewardo/internal/store"
)

// AchievementEngine maps session and task events onto the seeded achievement
// rows and the user's streak record. Progress is monotonic: current_value
// never decreases and completed never flips back to false.
type AchievementEngine struct {
	store *store.Store
	clock Clock
}

func NewAchievementEngine(s *store.Store, clock Clock) *AchievementEngine {
	return &AchievementEngine{store: s, clock: clock}
}

// OnSessionCompleted applies one finalized session to every matching
// achievement and advances the streak. coinsGranted is the amount the ledger
// actually granted, which may be less than the minutes spent once the daily
// cap is reached. Must run after the reward grant for the same session.
func (a *AchievementEngine) OnSessionCompleted(userKey string, elapsedSeconds, coinsGranted int) error {
	minutes := elapsedSeconds / 60

	streak, err := a.updateStreak(userKey)
	if err != nil {
		return err
	}

	achievements, err := a.store.ListAchievements(userKey)
	if err != nil {
		return err
	}

	for _, ach := range achievements {
		switch AchievementType(ach.Type) {
		case TypeFocusTime:
			err = a.store.AddAchievementProgress(ach.ID, minutes)
		case TypeSessions:
			err = a.store.AddAchievementProgress(ach.ID, 1)
		case TypeCoins:
			err = a.store.AddAchievementProgress(ach.ID, coinsGranted)
		case TypeStreak:
			err = a.store.RaiseAchievementValue(ach.ID, streak.CurrentStreak)
		case TypeTask, TypeMilestone:
			// Tasks advance via OnTaskCompleted; milestones have no
			// automatic session delta.
		}
		if err != nil {
			return fmt.Errorf("update achievement %q: %w", ach.Title, err)
		}
	}
	return nil
}

// OnTaskCompleted applies count completed tasks to task-typed achievements.
func (a *AchievementEngine) OnTaskCompleted(userKey string, count int) error {
	if count <= 0 {
		return nil
	}
	achievements, err := a.store.ListAchievements(userKey)
	if err != nil {
		return err
	}
	for _, ach := range achievements {
		if AchievementType(ach.Type) != TypeTask {
			continue
		}
		if err := a.store.AddAchievementProgress(ach.ID, count); err != nil {
			return fmt.Errorf("update achievement %q: %w", ach.Title, err)
		}
	}
	return nil
}

// ClaimReward credits a completed achievement's coins exactly once.
// Achievement rewards bypass the daily focus cap. The check and the flip run
// as one conditional update in the store, so a concurrent or repeated claim
// credits nothing and reports why.
func (a *AchievementEngine) ClaimReward(id int64) (*store.Achievement, error) {
	ach, claimed, err := a.store.ClaimAchievement(id)
	if err != nil {
		return nil, fmt.Errorf("claim reward: %w", err)
	}
	if ach == nil {
		return nil, fmt.Errorf("achievement %d not found", id)
	}
	if !claimed {
		if !ach.Completed {
			return nil, ErrNotCompleted
		}
		return nil, ErrClaimAlreadyDone
	}
	return ach, nil
}

// Streak returns the user's current streak record.
func (a *AchievementEngine) Streak(userKey string) (*store.Streak, error) {
	return a.store.GetStreak(userKey)
}

// updateStreak advances the day streak for one completed session. Only the
// first completion of a calendar day moves the streak; a same-day repeat is
// a no-op.
func (a *AchievementEngine) updateStreak(userKey string) (*store.Streak, error) {
	now := a.clock.Now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	st, err := a.store.GetStreak(userKey)
	if err != nil {
		return nil, err
	}

	switch st.LastQualifyingDate {
	case today:
		return st, nil
	case yesterday:
		st.CurrentStreak++
	default:
		st.CurrentStreak = 1
	}
	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	st.LastQualifyingDate = today

	if err := a.store.UpsertStreak(st); err != nil {
		return nil, err
	}
	return st, nil
}
