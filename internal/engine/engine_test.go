package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/harshithreddy-dev/rewardo/internal/store"
)

const testUser = "test_user"

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advanceDays(n int) {
	c.now = c.now.AddDate(0, 0, n)
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if _, err := s.GetOrCreateUser(testUser); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.SeedAchievements(testUser, DefaultCatalog); err != nil {
		t.Fatalf("seed achievements: %v", err)
	}

	clock := &fakeClock{now: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)}
	e := New(s, WithClock(clock), WithManualTicks())
	return e, clock, s
}

// runSession starts a session, ticks it for the given number of seconds and
// collects it.
func runSession(t *testing.T, e *Engine, seconds int) *SessionResult {
	t.Helper()
	if _, err := e.StartSession(testUser, nil, MaxSessionMinutes); err != nil {
		t.Fatalf("start session: %v", err)
	}
	for i := 0; i < seconds; i++ {
		e.Tick(testUser)
	}
	res, err := e.Collect(testUser)
	if err != nil {
		t.Fatalf("collect session: %v", err)
	}
	return res
}

func findAchievement(t *testing.T, s *store.Store, title string) *store.Achievement {
	t.Helper()
	achievements, err := s.ListAchievements(testUser)
	if err != nil {
		t.Fatalf("list achievements: %v", err)
	}
	for i := range achievements {
		if achievements[i].Title == title {
			return &achievements[i]
		}
	}
	t.Fatalf("achievement %q not found", title)
	return nil
}

func TestStartSessionValidatesDuration(t *testing.T) {
	e, _, _ := newTestEngine(t)

	for _, minutes := range []int{0, -5, 121, 1000} {
		if _, err := e.StartSession(testUser, nil, minutes); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("StartSession(%d) error = %v, want ErrInvalidDuration", minutes, err)
		}
	}

	for _, minutes := range []int{1, 25, 120} {
		if _, err := e.StartSession(testUser, nil, minutes); err != nil {
			t.Fatalf("StartSession(%d): %v", minutes, err)
		}
		if err := e.Abort(testUser); err != nil {
			t.Fatalf("abort: %v", err)
		}
	}
}

func TestStartWhileActiveFails(t *testing.T) {
	e, _, _ := newTestEngine(t)

	snap, err := e.StartSession(testUser, nil, 25)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	e.Tick(testUser)
	e.Tick(testUser)

	if _, err := e.StartSession(testUser, nil, 10); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second start error = %v, want ErrSessionActive", err)
	}

	// The existing session is untouched.
	after := e.Snapshot(testUser)
	if !after.Active || after.SessionID != snap.SessionID {
		t.Fatalf("active session changed: %+v", after)
	}
	if after.Remaining != 25*60-2 {
		t.Fatalf("remaining = %d, want %d", after.Remaining, 25*60-2)
	}
}

func TestElapsedNeverExceedsPlanned(t *testing.T) {
	e, _, _ := newTestEngine(t)

	if _, err := e.StartSession(testUser, nil, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Tick past the planned duration; the session auto-finalizes at zero
	// and later ticks are no-ops.
	for i := 0; i < 90; i++ {
		e.Tick(testUser)
	}

	snap := e.Snapshot(testUser)
	if snap.Active {
		t.Fatalf("session still active after expiry")
	}
	if snap.LastResult == nil {
		t.Fatalf("no result after natural expiry")
	}
	if snap.LastResult.Elapsed != 60 {
		t.Fatalf("elapsed = %d, want 60", snap.LastResult.Elapsed)
	}
	if !snap.LastResult.Natural {
		t.Fatalf("expected natural expiry")
	}
}

func TestPauseStopsCountdown(t *testing.T) {
	e, _, _ := newTestEngine(t)

	if _, err := e.StartSession(testUser, nil, 10); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 30; i++ {
		e.Tick(testUser)
	}
	if err := e.Pause(testUser); err != nil {
		t.Fatalf("pause: %v", err)
	}

	// Ticks arriving after pause apply nothing.
	for i := 0; i < 20; i++ {
		e.Tick(testUser)
	}
	if got := e.TimeRemaining(testUser); got != 10*60-30 {
		t.Fatalf("remaining after paused ticks = %d, want %d", got, 10*60-30)
	}

	// Pausing again is a no-op, not an error.
	if err := e.Pause(testUser); err != nil {
		t.Fatalf("second pause: %v", err)
	}

	if err := e.Resume(testUser); err != nil {
		t.Fatalf("resume: %v", err)
	}
	e.Tick(testUser)
	if got := e.TimeRemaining(testUser); got != 10*60-31 {
		t.Fatalf("remaining after resume = %d, want %d", got, 10*60-31)
	}
}

func TestOpsWithoutSession(t *testing.T) {
	e, _, _ := newTestEngine(t)

	if err := e.Pause(testUser); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("pause error = %v, want ErrNoActiveSession", err)
	}
	if err := e.Resume(testUser); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("resume error = %v, want ErrNoActiveSession", err)
	}
	if err := e.Abort(testUser); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("abort error = %v, want ErrNoActiveSession", err)
	}
	if _, err := e.Collect(testUser); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("collect error = %v, want ErrNoActiveSession", err)
	}
}

func TestAbortEarnsNothing(t *testing.T) {
	e, _, s := newTestEngine(t)

	if _, err := e.StartSession(testUser, nil, 30); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 300; i++ {
		e.Tick(testUser)
	}
	if err := e.Abort(testUser); err != nil {
		t.Fatalf("abort: %v", err)
	}

	coins, err := s.CoinBalance(testUser)
	if err != nil {
		t.Fatalf("coin balance: %v", err)
	}
	if coins != 0 {
		t.Fatalf("coins after abort = %d, want 0", coins)
	}

	sessions, err := s.ListSessions(testUser, 0)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("session count = %d, want 1", len(sessions))
	}
	if sessions[0].State != store.SessionAborted || sessions[0].Completed {
		t.Fatalf("aborted session row: %+v", sessions[0])
	}
	if sessions[0].Elapsed != 300 {
		t.Fatalf("aborted elapsed = %d, want 300", sessions[0].Elapsed)
	}

	// The slot is free again.
	if _, err := e.StartSession(testUser, nil, 5); err != nil {
		t.Fatalf("start after abort: %v", err)
	}
}

func TestCollectAwardsCoinsPerMinute(t *testing.T) {
	e, _, s := newTestEngine(t)

	res := runSession(t, e, 45*60)
	if res.Minutes != 45 || res.Coins != 45 {
		t.Fatalf("result = %+v, want 45 minutes / 45 coins", res)
	}

	coins, _ := s.CoinBalance(testUser)
	if coins != 45 {
		t.Fatalf("balance = %d, want 45", coins)
	}
}

func TestDailyCapAcrossSessions(t *testing.T) {
	e, clock, s := newTestEngine(t)

	// 60 + 60 minutes on one day: the second grant truncates at the cap.
	first := runSession(t, e, 60*60)
	if first.Coins != 60 {
		t.Fatalf("first grant = %d, want 60", first.Coins)
	}
	second := runSession(t, e, 60*60)
	if second.Coins != 40 {
		t.Fatalf("second grant = %d, want 40", second.Coins)
	}
	third := runSession(t, e, 30*60)
	if third.Coins != 0 {
		t.Fatalf("third grant = %d, want 0", third.Coins)
	}

	coins, _ := s.CoinBalance(testUser)
	if coins != DailyCap {
		t.Fatalf("balance = %d, want %d", coins, DailyCap)
	}

	// A new day starts a fresh allowance.
	clock.advanceDays(1)
	next := runSession(t, e, 10*60)
	if next.Coins != 10 {
		t.Fatalf("next-day grant = %d, want 10", next.Coins)
	}
}

func TestGrantPure(t *testing.T) {
	cases := []struct {
		prior, minutes, want int
	}{
		{0, 30, 30},
		{95, 10, 5},
		{100, 10, 0},
		{120, 10, 0},
		{0, 0, 0},
		{50, 100, 50},
	}
	for _, c := range cases {
		if got := Grant(c.prior, c.minutes); got != c.want {
			t.Errorf("Grant(%d, %d) = %d, want %d", c.prior, c.minutes, got, c.want)
		}
	}
}

func TestDoubleFinalizeAwardsOnce(t *testing.T) {
	e, _, s := newTestEngine(t)

	if _, err := e.StartSession(testUser, nil, 10); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 10*60; i++ {
		e.Tick(testUser)
	}
	// Natural expiry already finalized; a user collect racing in behind it
	// finds no active session and must not award again.
	if _, err := e.Collect(testUser); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("collect after expiry error = %v, want ErrNoActiveSession", err)
	}

	coins, _ := s.CoinBalance(testUser)
	if coins != 10 {
		t.Fatalf("balance = %d, want 10", coins)
	}
}

func TestFinalizeStoreRetryIsNoop(t *testing.T) {
	_, clock, s := newTestEngine(t)

	row, err := s.CreateSession(testUser, nil, 600)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	date := clock.Now().UTC().Format("2006-01-02")

	grant, already, err := s.FinalizeSession(row.ID, testUser, 600, 10, date, DailyCap)
	if err != nil || already || grant != 10 {
		t.Fatalf("first finalize = (%d, %v, %v), want (10, false, nil)", grant, already, err)
	}

	// Simulated retry after a crash: the row is already terminal.
	grant, already, err = s.FinalizeSession(row.ID, testUser, 600, 10, date, DailyCap)
	if err != nil || !already || grant != 0 {
		t.Fatalf("second finalize = (%d, %v, %v), want (0, true, nil)", grant, already, err)
	}

	coins, _ := s.CoinBalance(testUser)
	if coins != 10 {
		t.Fatalf("balance = %d, want 10", coins)
	}
}

func TestFailedFinalizeSurfacesError(t *testing.T) {
	e, _, s := newTestEngine(t)

	if _, err := e.StartSession(testUser, nil, 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Closing the store makes the finalize transaction fail when the timer
	// runs out. The session must stay in finalizing with the failure visible
	// through the snapshot so the user can retry with a collect.
	s.Close()
	for i := 0; i < 60; i++ {
		e.Tick(testUser)
	}

	snap := e.Snapshot(testUser)
	if !snap.Active {
		t.Fatal("session dropped after failed finalize, want it kept for retry")
	}
	if snap.State != store.SessionFinalizing {
		t.Fatalf("state = %q, want %q", snap.State, store.SessionFinalizing)
	}
	if snap.LastError == nil {
		t.Fatal("snapshot LastError = nil, want the finalize failure")
	}

	if _, err := e.Collect(testUser); err == nil {
		t.Fatal("collect on closed store succeeded, want error")
	}
}

func TestFocusTimeAchievementProgress(t *testing.T) {
	e, _, s := newTestEngine(t)

	runSession(t, e, 45*60)
	deep := findAchievement(t, s, "Deep Worker") // focus_time, requirement 120
	if deep.CurrentValue != 45 || deep.Completed {
		t.Fatalf("after 45m: value=%d completed=%v, want 45/false", deep.CurrentValue, deep.Completed)
	}

	runSession(t, e, 80*60)
	deep = findAchievement(t, s, "Deep Worker")
	if deep.CurrentValue != 125 || !deep.Completed {
		t.Fatalf("after 125m: value=%d completed=%v, want 125/true", deep.CurrentValue, deep.Completed)
	}

	sessions := findAchievement(t, s, "First Focus")
	if sessions.CurrentValue != 2 || !sessions.Completed {
		t.Fatalf("sessions achievement: %+v", sessions)
	}
}

func TestCoinsAchievementTracksGrants(t *testing.T) {
	e, _, s := newTestEngine(t)

	runSession(t, e, 60*60)
	runSession(t, e, 60*60) // second grant capped at 40

	collector := findAchievement(t, s, "Coin Collector") // coins, requirement 100
	if collector.CurrentValue != 100 || !collector.Completed {
		t.Fatalf("coin achievement: value=%d completed=%v, want 100/true", collector.CurrentValue, collector.Completed)
	}
}

func TestStreakProgression(t *testing.T) {
	e, clock, s := newTestEngine(t)

	runSession(t, e, 60)
	st, _ := s.GetStreak(testUser)
	if st.CurrentStreak != 1 || st.LongestStreak != 1 {
		t.Fatalf("day 1 streak: %+v", st)
	}

	// Second session the same day does not double-increment.
	runSession(t, e, 60)
	st, _ = s.GetStreak(testUser)
	if st.CurrentStreak != 1 {
		t.Fatalf("same-day streak = %d, want 1", st.CurrentStreak)
	}

	clock.advanceDays(1)
	runSession(t, e, 60)
	st, _ = s.GetStreak(testUser)
	if st.CurrentStreak != 2 || st.LongestStreak != 2 {
		t.Fatalf("day 2 streak: %+v", st)
	}

	// A gap of two days resets the streak; the longest never decreases.
	clock.advanceDays(3)
	runSession(t, e, 60)
	st, _ = s.GetStreak(testUser)
	if st.CurrentStreak != 1 {
		t.Fatalf("streak after gap = %d, want 1", st.CurrentStreak)
	}
	if st.LongestStreak != 2 {
		t.Fatalf("longest after gap = %d, want 2", st.LongestStreak)
	}

	streakAch := findAchievement(t, s, "Consistency King") // streak, requirement 5
	if streakAch.CurrentValue != 2 {
		t.Fatalf("streak achievement value = %d, want 2", streakAch.CurrentValue)
	}
}

func TestClaimRewardOnce(t *testing.T) {
	e, _, s := newTestEngine(t)

	runSession(t, e, 60) // completes "First Focus" (1 session, reward 10)
	first := findAchievement(t, s, "First Focus")
	if !first.Completed {
		t.Fatalf("First Focus not completed")
	}

	before, _ := s.CoinBalance(testUser)
	ach, err := e.ClaimAchievementReward(first.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !ach.RewardClaimed {
		t.Fatalf("reward_claimed not set")
	}

	after, _ := s.CoinBalance(testUser)
	if after-before != int64(first.Reward) {
		t.Fatalf("claim credited %d, want %d", after-before, first.Reward)
	}

	// The second claim credits nothing.
	if _, err := e.ClaimAchievementReward(first.ID); !errors.Is(err, ErrClaimAlreadyDone) {
		t.Fatalf("second claim error = %v, want ErrClaimAlreadyDone", err)
	}
	final, _ := s.CoinBalance(testUser)
	if final != after {
		t.Fatalf("balance changed on repeat claim: %d -> %d", after, final)
	}
}

func TestClaimIncompleteFails(t *testing.T) {
	e, _, s := newTestEngine(t)

	master := findAchievement(t, s, "Focus Master") // requirement 10 sessions
	if _, err := e.ClaimAchievementReward(master.ID); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("claim error = %v, want ErrNotCompleted", err)
	}
}

func TestAchievementRewardBypassesDailyCap(t *testing.T) {
	e, _, s := newTestEngine(t)

	// Exhaust the daily cap, then claim: the claim still credits in full.
	runSession(t, e, 100*60)
	first := findAchievement(t, s, "First Focus")
	if _, err := e.ClaimAchievementReward(first.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	coins, _ := s.CoinBalance(testUser)
	if coins != DailyCap+int64(first.Reward) {
		t.Fatalf("balance = %d, want %d", coins, DailyCap+first.Reward)
	}
}

func TestCompleteTaskFeedsAchievements(t *testing.T) {
	e, _, s := newTestEngine(t)

	task, err := s.CreateTask(testUser, "Write report", "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := e.CompleteTask(testUser, task.ID); err != nil {
		t.Fatalf("complete task: %v", err)
	}
	// Completing the same task again advances nothing.
	if err := e.CompleteTask(testUser, task.ID); err != nil {
		t.Fatalf("repeat complete: %v", err)
	}

	champ := findAchievement(t, s, "Task Champion")
	if champ.CurrentValue != 1 {
		t.Fatalf("task achievement value = %d, want 1", champ.CurrentValue)
	}
}

func TestRecoverAbortsStaleSession(t *testing.T) {
	e, _, s := newTestEngine(t)

	// Simulate a crash: a running row in the store, no in-memory session.
	row, err := s.CreateSession(testUser, nil, 1500)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := s.SetSessionState(row.ID, store.SessionRunning, 120); err != nil {
		t.Fatalf("set state: %v", err)
	}

	if err := e.Recover(testUser); err != nil {
		t.Fatalf("recover: %v", err)
	}

	got, _ := s.GetSession(row.ID)
	if got.State != store.SessionAborted || got.Completed {
		t.Fatalf("recovered session: %+v", got)
	}
	if got.Elapsed != 120 {
		t.Fatalf("recovered elapsed = %d, want 120", got.Elapsed)
	}
	coins, _ := s.CoinBalance(testUser)
	if coins != 0 {
		t.Fatalf("recovery granted coins: %d", coins)
	}

	// And the slot is usable.
	if _, err := e.StartSession(testUser, nil, 25); err != nil {
		t.Fatalf("start after recover: %v", err)
	}
}

func TestLedgerAwardDirect(t *testing.T) {
	e, clock, s := newTestEngine(t)
	date := clock.Now().UTC().Format("2006-01-02")

	grant, err := e.Ledger().Award(testUser, date, 130)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if grant != DailyCap {
		t.Fatalf("grant = %d, want %d", grant, DailyCap)
	}

	earned, err := e.Ledger().EarnedToday(testUser, date)
	if err != nil {
		t.Fatalf("earned today: %v", err)
	}
	if earned != DailyCap {
		t.Fatalf("earned = %d, want %d", earned, DailyCap)
	}

	coins, _ := s.CoinBalance(testUser)
	if coins != DailyCap {
		t.Fatalf("balance = %d, want %d", coins, DailyCap)
	}
}
