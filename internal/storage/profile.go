package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Profile scopes saved games, achievements and daily completions to one
// player. Local play defaults to "local"; SSH sessions use the login name.
type Profile struct {
	store  *Store
	player string
}

// Profile returns the records of player.
func (s *Store) Profile(player string) *Profile {
	return &Profile{store: s, player: player}
}

// Player returns the profile's player name.
func (p *Profile) Player() string {
	return p.player
}

// SaveScore records a finished game for this player.
func (p *Profile) SaveScore(key string, score, maxTile int) (int64, error) {
	return p.store.saveScore(key, p.player, score, maxTile)
}

// BestScore returns this player's best score under key, or 0.
func (p *Profile) BestScore(key string) (int, error) {
	return p.store.maxScore("SELECT MAX(score) FROM scores WHERE score_key = ? AND player = ?", key, p.player)
}

// SaveResume stores state as JSON in slot, replacing what was there.
func (p *Profile) SaveResume(slot string, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage: cannot encode resume state: %w", err)
	}
	_, err = p.store.db.Exec(
		`INSERT INTO resume_states (player, slot, state, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(player, slot) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		p.player, slot, string(data),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save resume state: %w", err)
	}
	return nil
}

// LoadResume decodes the state stored in slot into dst. It reports false
// when the slot is empty.
func (p *Profile) LoadResume(slot string, dst any) (bool, error) {
	var data string
	err := p.store.db.QueryRow(
		"SELECT state FROM resume_states WHERE player = ? AND slot = ?",
		p.player, slot,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: cannot load resume state: %w", err)
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return false, fmt.Errorf("storage: cannot decode resume state: %w", err)
	}
	return true, nil
}

// ClearResume empties slot.
func (p *Profile) ClearResume(slot string) error {
	_, err := p.store.db.Exec("DELETE FROM resume_states WHERE player = ? AND slot = ?", p.player, slot)
	if err != nil {
		return fmt.Errorf("storage: cannot clear resume state: %w", err)
	}
	return nil
}

// UnlockAchievement records id and reports whether it was newly unlocked.
func (p *Profile) UnlockAchievement(id string) (bool, error) {
	res, err := p.store.db.Exec(
		"INSERT OR IGNORE INTO achievements (player, achievement_id) VALUES (?, ?)",
		p.player, id,
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot unlock achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot read affected rows: %w", err)
	}
	return n == 1, nil
}

// UnlockedAchievements returns every unlocked achievement id with its
// unlock time.
func (p *Profile) UnlockedAchievements() (map[string]time.Time, error) {
	rows, err := p.store.db.Query(
		"SELECT achievement_id, unlocked_at FROM achievements WHERE player = ?",
		p.player,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query achievements: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at any
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("storage: cannot scan achievement: %w", err)
		}
		unlocked[id] = parseTime(at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return unlocked, nil
}

// DailyResult is a recorded daily challenge.
type DailyResult struct {
	Date        string
	GridSize    int
	Score       int
	CompletedAt time.Time
}

// CompleteDaily records the daily challenge for date. Completing the same
// date again keeps the better score.
func (p *Profile) CompleteDaily(date string, gridSize, score int) error {
	_, err := p.store.db.Exec(
		`INSERT INTO daily_completions (player, date, grid_size, score)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(player, date) DO UPDATE SET score = MAX(score, excluded.score)`,
		p.player, date, gridSize, score,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record daily challenge: %w", err)
	}
	return nil
}

// DailyCompleted returns the result for date, or nil if it was not played.
func (p *Profile) DailyCompleted(date string) (*DailyResult, error) {
	r := DailyResult{Date: date}
	var at any
	err := p.store.db.QueryRow(
		"SELECT grid_size, score, completed_at FROM daily_completions WHERE player = ? AND date = ?",
		p.player, date,
	).Scan(&r.GridSize, &r.Score, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query daily challenge: %w", err)
	}
	r.CompletedAt = parseTime(at)
	return &r, nil
}

// DailyCompletedCount returns how many daily challenges were completed.
func (p *Profile) DailyCompletedCount() (int, error) {
	var n int
	if err := p.store.db.QueryRow(
		"SELECT COUNT(*) FROM daily_completions WHERE player = ?", p.player,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: cannot count daily challenges: %w", err)
	}
	return n, nil
}
