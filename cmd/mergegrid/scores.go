package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mergegrid/internal/config"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/leaderboard"
	"github.com/vovakirdan/mergegrid/internal/platform/tui"
	"github.com/vovakirdan/mergegrid/internal/storage"
)

var (
	flagScoresMode   string
	flagScoresSize   int
	flagScoresGlobal bool
	flagScoresLimit  int
	flagScoresTUI    bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the top scores for a mode family and grid size.
Daily challenge games count toward the classic board of their grid.

Examples:
  mergegrid scores
  mergegrid scores --mode timeattack --size 5
  mergegrid scores --global
  mergegrid scores --tui`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresMode, "mode", string(t2048.FamilyClassic), "Board: classic or timeattack")
	scoresCmd.Flags().IntVar(&flagScoresSize, "size", 4, "Grid size: 3, 4, 5, 6 or 8")
	scoresCmd.Flags().BoolVar(&flagScoresGlobal, "global", false, "Read the shared Redis leaderboard")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse every board in the full screen view")
}

func runScores(_ *cobra.Command, _ []string) error {
	family := t2048.Family(flagScoresMode)
	if family != t2048.FamilyClassic && family != t2048.FamilyTimeAttack {
		return fmt.Errorf("unknown board %q: use classic or timeattack", flagScoresMode)
	}
	if !t2048.IsSupportedSize(flagScoresSize) {
		return fmt.Errorf("%w: %d", t2048.ErrUnsupportedSize, flagScoresSize)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	key := leaderboard.Board(family, flagScoresSize)
	title := fmt.Sprintf("%s %dx%d", t2048.MustMode(t2048.ModeID(family)).Title, flagScoresSize, flagScoresSize)

	if flagScoresTUI {
		env, closeEnv := openEnv(cfg, newLogger())
		defer closeEnv()
		rc := runtimeConfig(cfg)
		_, err := tui.RunScoreboard(env, key, rc.ScreenW, rc.ScreenH)
		return err
	}

	if flagScoresGlobal {
		return printGlobal(leaderboard.New(cfg.Leaderboard), key, title, cfg.Leaderboard)
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	scores, err := store.TopScores(key, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'mergegrid play --mode %s --size %d' to set the first high score!\n", family, flagScoresSize)
		return nil
	}

	fmt.Printf("  %-4s  %-12s  %-8s  %-6s  %s\n", "Rank", "Player", "Score", "Tile", "Date")
	fmt.Printf("  %-4s  %-12s  %-8s  %-6s  %s\n", "----", "------", "-----", "----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-12s  %-8d  %-6d  %s\n", i+1, entry.Player, entry.Score, entry.MaxTile, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if stats, err := store.GetGameStats(key); err == nil && stats.GamesCount > 0 {
		fmt.Printf("Best: %d  |  Games: %d  |  Average: %.0f  |  Best tile: %d\n",
			stats.HighScore, stats.GamesCount, stats.AvgScore, stats.BestTile)
	}
	return nil
}

func printGlobal(board leaderboard.Submitter, key, title string, lc config.LeaderboardConfig) error {
	defer board.Close()
	if !lc.Enabled {
		fmt.Fprintln(os.Stderr, "The shared leaderboard is disabled; set leaderboard.enabled in the config.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), lc.Timeout)
	defer cancel()
	entries, err := board.Top(ctx, key, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("reading leaderboard: %w", err)
	}

	fmt.Printf("Global High Scores - %s\n", title)
	fmt.Println()
	if len(entries) == 0 {
		fmt.Println("No scores submitted yet.")
		return nil
	}

	fmt.Printf("  %-4s  %-12s  %s\n", "Rank", "Player", "Score")
	fmt.Printf("  %-4s  %-12s  %s\n", "----", "------", "-----")
	for _, e := range entries {
		fmt.Printf("  %-4d  %-12s  %d\n", e.Rank, e.Player, e.Score)
	}
	return nil
}
