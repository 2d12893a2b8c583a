package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/mergegrid/internal/multiplayer"
)

// OnlineMatchResult represents the outcome of a head-to-head match.
type OnlineMatchResult struct {
	ID             int64
	MatchID        string
	GameID         string
	GridSize       int
	Player1Session string
	Player2Session string
	Score1         int
	Score2         int
	WinnerSession  string // Empty if draw
	EndReason      string
	Duration       int // Duration in seconds
	CreatedAt      time.Time
}

const matchColumns = `id, match_id, game_id, grid_size, player1_session, player2_session,
		        score1, score2, winner_session, end_reason, duration_secs, created_at`

// SaveOnlineMatch records the result of a head-to-head match.
// Returns the ID of the inserted record.
func (s *Store) SaveOnlineMatch(result OnlineMatchResult) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO online_matches
		 (match_id, game_id, grid_size, player1_session, player2_session, score1, score2, winner_session, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.MatchID,
		result.GameID,
		result.GridSize,
		result.Player1Session,
		result.Player2Session,
		result.Score1,
		result.Score2,
		result.WinnerSession,
		result.EndReason,
		result.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save online match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (OnlineMatchResult, error) {
	var result OnlineMatchResult
	var createdAt any
	var winnerSession sql.NullString

	err := row.Scan(
		&result.ID,
		&result.MatchID,
		&result.GameID,
		&result.GridSize,
		&result.Player1Session,
		&result.Player2Session,
		&result.Score1,
		&result.Score2,
		&winnerSession,
		&result.EndReason,
		&result.Duration,
		&createdAt,
	)
	if err != nil {
		return result, err
	}
	if winnerSession.Valid {
		result.WinnerSession = winnerSession.String
	}
	result.CreatedAt = parseTime(createdAt)
	return result, nil
}

// OnlineMatchByID retrieves a match by its match ID, or nil if unknown.
func (s *Store) OnlineMatchByID(matchID string) (*OnlineMatchResult, error) {
	result, err := scanMatch(s.db.QueryRow(
		`SELECT `+matchColumns+`
		 FROM online_matches
		 WHERE match_id = ?`,
		matchID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query online match: %w", err)
	}
	return &result, nil
}

// RecentOnlineMatches retrieves the most recent matches.
func (s *Store) RecentOnlineMatches(limit int) ([]OnlineMatchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		`SELECT `+matchColumns+`
		 FROM online_matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

// PlayerMatchHistory retrieves match history for a specific session/player.
func (s *Store) PlayerMatchHistory(sessionID string, limit int) ([]OnlineMatchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		`SELECT `+matchColumns+`
		 FROM online_matches
		 WHERE player1_session = ? OR player2_session = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		sessionID, sessionID, limit,
	)
}

func (s *Store) queryMatches(query string, args ...any) ([]OnlineMatchResult, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query online matches: %w", err)
	}
	defer rows.Close()

	var results []OnlineMatchResult
	for rows.Next() {
		result, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	_, err := s.SaveOnlineMatch(OnlineMatchResult{
		MatchID:        data.MatchID,
		GameID:         data.GameID,
		GridSize:       data.GridSize,
		Player1Session: data.Player1Session,
		Player2Session: data.Player2Session,
		Score1:         data.Score1,
		Score2:         data.Score2,
		WinnerSession:  data.WinnerSession,
		EndReason:      data.EndReason,
		Duration:       data.DurationSecs,
	})
	return err
}

var _ multiplayer.MatchResultSaver = (*Store)(nil)
