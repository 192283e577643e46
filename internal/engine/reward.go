package engine

import (
	"fmt"

	"github.com/harshithreddy-dev/rewardo/internal/store"
)

// RewardLedger converts completed focus minutes into coins under the daily
// cap. It holds no state of its own: the per-day counter lives in the store
// and every award runs as a single transactional read-modify-write, so two
// sessions ending in the same second cannot jointly overshoot the cap.
//
// The ledger does not deduplicate per session. Callers must invoke Award at
// most once per finalized session; the session manager guarantees that with
// its one-shot finalize.
type RewardLedger struct {
	store *store.Store
}

func NewRewardLedger(s *store.Store) *RewardLedger {
	return &RewardLedger{store: s}
}

// Grant is the pure cap rule: coins granted for minutes of focus given the
// coins already earned that day. May be zero; zero is success, not an error.
func Grant(priorCoinsEarned, minutes int) int {
	remaining := DailyCap - priorCoinsEarned
	if remaining < 0 {
		remaining = 0
	}
	if minutes < remaining {
		return minutes
	}
	return remaining
}

// Award credits up to minutes coins for the given calendar date, truncated
// at the daily cap, and returns the amount actually granted.
func (l *RewardLedger) Award(userKey, date string, minutes int) (int, error) {
	if minutes <= 0 {
		return 0, nil
	}
	grant, err := l.store.AwardCoins(userKey, date, minutes, DailyCap)
	if err != nil {
		return 0, fmt.Errorf("award coins: %w", err)
	}
	return grant, nil
}

// EarnedToday returns the coins already granted for the given date.
func (l *RewardLedger) EarnedToday(userKey, date string) (int, error) {
	return l.store.GetDailyReward(userKey, date)
}
