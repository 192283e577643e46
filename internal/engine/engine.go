package engine

import (
	"sync"

	"github.com/harshithreddy-dev/rewardo/internal/store"
)

// Engine coordinates the focus-session state machine, the reward ledger and
// the achievement engine. All state for one user funnels through one slot
// with one lock, so session transitions, reward grants and achievement
// updates for that user are serialized without any global locking.
type Engine struct {
	store    *store.Store
	clock    Clock
	autoTick bool

	ledger       *RewardLedger
	achievements *AchievementEngine

	mu    sync.Mutex
	slots map[string]*userSlot
}

type userSlot struct {
	mu         sync.Mutex
	session    *activeSession
	lastResult *SessionResult
}

type Option func(*Engine)

// WithClock injects a test clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithManualTicks disables the internal one-second scheduler; callers drive
// the countdown through Tick. Used by tests.
func WithManualTicks() Option {
	return func(e *Engine) { e.autoTick = false }
}

func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		clock:    systemClock{},
		autoTick: true,
		slots:    make(map[string]*userSlot),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ledger = NewRewardLedger(s)
	e.achievements = NewAchievementEngine(s, e.clock)
	return e
}

func (e *Engine) Ledger() *RewardLedger            { return e.ledger }
func (e *Engine) Achievements() *AchievementEngine { return e.achievements }

func (e *Engine) slot(userKey string) *userSlot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slots[userKey]
	if !ok {
		s = &userSlot{}
		e.slots[userKey] = s
	}
	return s
}

// Recover closes out any session row left non-terminal by a crash. The
// crashed session keeps its recorded elapsed time but is aborted and earns
// nothing: a finalize that committed is already terminal and is never seen
// here, so recovery can't double-award.
func (e *Engine) Recover(userKey string) error {
	row, err := e.store.GetActiveSession(userKey)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}
	return e.store.AbortSession(row.ID, row.Elapsed)
}

// CompleteTask marks a task done and feeds task-typed achievements. A task
// that was already done advances nothing.
func (e *Engine) CompleteTask(userKey string, taskID int64) error {
	flipped, err := e.store.MarkTaskDone(taskID)
	if err != nil {
		return err
	}
	if !flipped {
		return nil
	}
	return e.achievements.OnTaskCompleted(userKey, 1)
}

// ClaimAchievementReward credits a completed achievement's reward once.
func (e *Engine) ClaimAchievementReward(id int64) (*store.Achievement, error) {
	return e.achievements.ClaimReward(id)
}
