// Package storage provides SQLite-based persistence for scores, saved games,
// achievements, daily challenges and versus results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultDBPath is where the CLI keeps its database unless told otherwise.
const DefaultDBPath = "~/.mergegrid/scores.db"

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry represents a single high score record.
// Key is a mode family and grid size such as "classic_4x4".
type ScoreEntry struct {
	ID        int64
	Key       string
	Player    string
	Score     int
	MaxTile   int
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer keeps SSH sessions from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			score_key TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			max_tile INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_key ON scores(score_key);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score_key, score DESC);
		CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player, score_key);

		CREATE TABLE IF NOT EXISTS resume_states (
			player TEXT NOT NULL,
			slot TEXT NOT NULL,
			state TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (player, slot)
		);

		CREATE TABLE IF NOT EXISTS achievements (
			player TEXT NOT NULL,
			achievement_id TEXT NOT NULL,
			unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (player, achievement_id)
		);

		CREATE TABLE IF NOT EXISTS daily_completions (
			player TEXT NOT NULL,
			date TEXT NOT NULL,
			grid_size INTEGER NOT NULL,
			score INTEGER NOT NULL,
			completed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (player, date)
		);

		CREATE TABLE IF NOT EXISTS online_matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			game_id TEXT NOT NULL,
			grid_size INTEGER NOT NULL DEFAULT 4,
			player1_session TEXT NOT NULL,
			player2_session TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner_session TEXT,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_online_matches_game_id ON online_matches(game_id);
		CREATE INDEX IF NOT EXISTS idx_online_matches_player1 ON online_matches(player1_session);
		CREATE INDEX IF NOT EXISTS idx_online_matches_player2 ON online_matches(player2_session);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// parseTime reads a DATETIME column, which the driver returns either as
// time.Time or as text.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

// SaveScore records an anonymous score under key.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(key string, score int) (int64, error) {
	return s.saveScore(key, "", score, 0)
}

func (s *Store) saveScore(key, player string, score, maxTile int) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (score_key, player, score, max_tile) VALUES (?, ?, ?, ?)",
		key, player, score, maxTile,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N scores for key.
// Results are ordered by score descending.
func (s *Store) TopScores(key string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryScores(
		`SELECT id, score_key, player, score, max_tile, created_at
		 FROM scores
		 WHERE score_key = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		key, limit,
	)
}

// AllScores retrieves all scores for key (no limit).
func (s *Store) AllScores(key string) ([]ScoreEntry, error) {
	return s.queryScores(
		`SELECT id, score_key, player, score, max_tile, created_at
		 FROM scores
		 WHERE score_key = ?
		 ORDER BY score DESC, id ASC`,
		key,
	)
}

func (s *Store) queryScores(query string, args ...any) ([]ScoreEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Key, &e.Player, &e.Score, &e.MaxTile, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score recorded under key by anyone.
// Returns 0 if no scores exist.
func (s *Store) HighScore(key string) (int, error) {
	return s.maxScore("SELECT MAX(score) FROM scores WHERE score_key = ?", key)
}

func (s *Store) maxScore(query string, args ...any) (int, error) {
	var score sql.NullInt64
	if err := s.db.QueryRow(query, args...).Scan(&score); err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearScores deletes all scores for key.
func (s *Store) ClearScores(key string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE score_key = ?", key)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// GameStats contains aggregated statistics for one score key.
type GameStats struct {
	Key        string
	GamesCount int
	HighScore  int
	BestTile   int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// GetGameStats retrieves aggregated statistics for key.
func (s *Store) GetGameStats(key string) (*GameStats, error) {
	stats := &GameStats{Key: key}
	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(MAX(max_tile), 0),
		        COALESCE(AVG(score), 0), COALESCE(SUM(score), 0), MAX(created_at)
		 FROM scores WHERE score_key = ?`,
		key,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.BestTile, &stats.AvgScore, &stats.TotalScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}

// GetAllGamesStats retrieves statistics for every key that has scores.
func (s *Store) GetAllGamesStats() (map[string]*GameStats, error) {
	rows, err := s.db.Query(
		`SELECT score_key, COUNT(*), MAX(score), MAX(max_tile), AVG(score), SUM(score), MAX(created_at)
		 FROM scores
		 GROUP BY score_key`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all games stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameStats)
	for rows.Next() {
		var gs GameStats
		var lastPlayed any
		if err := rows.Scan(&gs.Key, &gs.GamesCount, &gs.HighScore, &gs.BestTile, &gs.AvgScore, &gs.TotalScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		gs.LastPlayed = parseTime(lastPlayed)
		stats[gs.Key] = &gs
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
