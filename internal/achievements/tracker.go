package achievements

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergegrid/internal/games/t2048"
)

// Store persists unlocks. *storage.Profile satisfies it.
type Store interface {
	UnlockAchievement(id string) (bool, error)
	UnlockedAchievements() (map[string]time.Time, error)
	DailyCompletedCount() (int, error)
}

// Tracker listens to game events and unlocks achievements.
// It must be subscribed after any listener that records daily completions,
// so the completed count already includes the current day.
type Tracker struct {
	mu       sync.Mutex
	store    Store
	logger   *log.Logger
	unlocked map[ID]time.Time
	pending  []Achievement
	daily    map[string]bool // completions seen when store is nil
	now      func() time.Time
}

// NewTracker loads the existing unlocks from store. A nil store keeps
// everything in memory.
func NewTracker(store Store) *Tracker {
	t := &Tracker{
		store:    store,
		logger:   log.Default(),
		unlocked: make(map[ID]time.Time),
		daily:    make(map[string]bool),
		now:      time.Now,
	}
	if store != nil {
		got, err := store.UnlockedAchievements()
		if err != nil {
			t.logger.Warn("cannot load achievements", "err", err)
		}
		for id, at := range got {
			t.unlocked[ID(id)] = at
		}
	}
	return t
}

// SetLogger replaces the logger used for storage failures.
func (t *Tracker) SetLogger(l *log.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l != nil {
		t.logger = l
	}
}

// OnGameEvent implements t2048.Listener.
func (t *Tracker) OnGameEvent(e t2048.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev := e.(type) {
	case t2048.TurnEvent:
		for _, m := range scoreMilestones {
			if ev.Score >= m.score {
				t.unlock(m.id)
			}
		}
		for _, m := range tileMilestones {
			if ev.MaxTile >= m.tile {
				t.unlock(m.id)
			}
		}
	case t2048.WinEvent:
		t.unlock(FirstWin)
		if id, ok := sizeWins[ev.Size]; ok {
			t.unlock(id)
		}
		if t.has(FirstWin, Win3x3, Win5x5, Win6x6, Win8x8) {
			t.unlock(AllGrids)
		}
		if ev.UndoAllowed && !ev.UndoUsed {
			t.unlock(NoUndo)
		}
	case t2048.GameOverEvent:
		if ev.Family == t2048.FamilyTimeAttack && ev.Score >= speedDemonScore {
			t.unlock(SpeedDemon)
		}
	case t2048.DailyCompleteEvent:
		t.unlock(DailyFirst)
		t.daily[ev.Daily.Date] = true
		if t.dailyCount() >= weeklyWarriorDays {
			t.unlock(DailyStreak7)
		}
	}
}

func (t *Tracker) dailyCount() int {
	if t.store == nil {
		return len(t.daily)
	}
	n, err := t.store.DailyCompletedCount()
	if err != nil {
		t.logger.Warn("cannot count daily completions", "err", err)
		return len(t.daily)
	}
	return n
}

func (t *Tracker) has(ids ...ID) bool {
	for _, id := range ids {
		if _, ok := t.unlocked[id]; !ok {
			return false
		}
	}
	return true
}

func (t *Tracker) unlock(id ID) {
	if _, ok := t.unlocked[id]; ok {
		return
	}
	if t.store != nil {
		if _, err := t.store.UnlockAchievement(string(id)); err != nil {
			t.logger.Warn("cannot save achievement", "id", id, "err", err)
		}
	}
	t.unlocked[id] = t.now()
	if a, ok := Lookup(id); ok {
		t.pending = append(t.pending, a)
	}
}

// Drain returns achievements unlocked since the last call.
func (t *Tracker) Drain() []Achievement {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.pending
	t.pending = nil
	return out
}

// Unlocked reports whether id has been unlocked.
func (t *Tracker) Unlocked(id ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.unlocked[id]
	return ok
}

// UnlockedAt returns when id was unlocked.
func (t *Tracker) UnlockedAt(id ID) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.unlocked[id]
	return at, ok
}

// Progress returns the number of unlocked achievements and the catalogue size.
func (t *Tracker) Progress() (unlocked, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, a := range Catalogue {
		if _, ok := t.unlocked[a.ID]; ok {
			unlocked++
		}
	}
	return unlocked, len(Catalogue)
}

var _ t2048.Listener = (*Tracker)(nil)
