// Package leaderboard publishes finished games to a shared remote board.
package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/vovakirdan/mergegrid/internal/config"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
)

// Entry is one leaderboard row.
type Entry struct {
	Rank   int
	Player string
	Score  int
}

// Submitter records scores on named boards.
type Submitter interface {
	// Submit keeps the player's best score on board.
	Submit(ctx context.Context, board, player string, score int) error
	// Top returns the n best entries on board, highest first.
	Top(ctx context.Context, board string, n int) ([]Entry, error)
	Close() error
}

// Board names the board for a mode family and grid size.
func Board(family t2048.Family, size int) string {
	return t2048.ScoreKey(family, size)
}

// DailyBoard names the board for one daily challenge date.
func DailyBoard(date string) string {
	return "daily_" + date
}

// New returns a Redis submitter, or Nop when the leaderboard is disabled.
func New(cfg config.LeaderboardConfig) Submitter {
	if !cfg.Enabled {
		return Nop{}
	}
	return NewRedis(cfg)
}

// Redis stores each board as a sorted set keyed by prefix and board name.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects lazily; no traffic is sent until the first call.
func NewRedis(cfg config.LeaderboardConfig) *Redis {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.Timeout > 0 {
		opts.DialTimeout = cfg.Timeout
		opts.ReadTimeout = cfg.Timeout
		opts.WriteTimeout = cfg.Timeout
	}
	return &Redis{client: redis.NewClient(opts), prefix: cfg.KeyPrefix}
}

// Key returns the Redis key holding board.
func (r *Redis) Key(board string) string {
	if r.prefix == "" {
		return "leaderboard:" + board
	}
	return strings.TrimSuffix(r.prefix, ":") + ":leaderboard:" + board
}

// Submit uses ZADD GT so a lower score never replaces a better one.
func (r *Redis) Submit(ctx context.Context, board, player string, score int) error {
	err := r.client.ZAddGT(ctx, r.Key(board), redis.Z{
		Score:  float64(score),
		Member: player,
	}).Err()
	if err != nil {
		return fmt.Errorf("leaderboard: submit to %s: %w", board, err)
	}
	return nil
}

// Top implements Submitter.
func (r *Redis) Top(ctx context.Context, board string, n int) ([]Entry, error) {
	if n <= 0 {
		n = 10
	}
	zs, err := r.client.ZRevRangeWithScores(ctx, r.Key(board), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: read %s: %w", board, err)
	}
	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, Entry{Rank: i + 1, Player: member, Score: int(z.Score)})
	}
	return entries, nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Nop discards submissions.
type Nop struct{}

func (Nop) Submit(context.Context, string, string, int) error { return nil }
func (Nop) Top(context.Context, string, int) ([]Entry, error) { return nil, nil }
func (Nop) Close() error                                      { return nil }

var (
	_ Submitter = (*Redis)(nil)
	_ Submitter = Nop{}
)
