// mergegrid is a terminal 2048 with classic, time attack, daily and
// head-to-head modes.
//
// Usage:
//
//	mergegrid                 - Start the interactive menu
//	mergegrid play            - Play a mode directly
//	mergegrid daily           - Show or play today's challenge
//	mergegrid modes           - List available modes
//	mergegrid scores          - Show high scores
//	mergegrid achievements    - Show unlocked achievements
//	mergegrid serve           - Start SSH server for remote and head-to-head play
//
// Global flags:
//
//	--fps <rate>      - Set tick rate (default from config: 60)
//	--seed <value>    - Set RNG seed for reproducible gameplay
//	--db <path>       - Set database path (default: ~/.mergegrid/scores.db)
//	--config <path>   - Read configuration from a specific YAML file
//	--player <name>   - Profile to play as (default: local)
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/mergegrid/internal/config"
	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/leaderboard"
	"github.com/vovakirdan/mergegrid/internal/platform/tui"
	"github.com/vovakirdan/mergegrid/internal/storage"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfigPath string
	flagPlayer     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mergegrid",
	Short: "MergeGrid - slide and merge tiles in your terminal",
	Long: `MergeGrid is a terminal take on 2048. Slide the board, merge equal
tiles and reach 2048 on grids from 3x3 to 8x8.

Available commands:
  play          - Play a mode directly
  daily         - Today's challenge
  modes         - List modes
  scores        - View high scores
  achievements  - View achievements
  serve         - Start SSH server for remote and head-to-head play

Examples:
  mergegrid
  mergegrid play --mode timeattack --size 5 --timer 90
  mergegrid daily --play
  mergegrid scores --mode classic --size 4
  mergegrid serve --ssh :2222`,
	SilenceUsage: true,
	RunE:         runInteractive,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (0 = config value)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Profile name for local play")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the configuration and applies command line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return cfg, err
	}
	if flagFPS > 0 {
		cfg.Game.FPS = flagFPS
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	return cfg, nil
}

// newLogger writes to ~/.mergegrid/mergegrid.log so log lines never land on
// top of the game screen.
func newLogger() *log.Logger {
	var w io.Writer = io.Discard
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".mergegrid")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			if f, err := os.OpenFile(filepath.Join(dir, "mergegrid.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err == nil {
				w = f
			}
		}
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "mergegrid",
	})
}

// runtimeConfig sizes the screen to the current terminal.
func runtimeConfig(cfg config.Config) core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: cfg.Game.FPS,
		Seed:     flagSeed,
	}
}

// openEnv opens the database and leaderboard for local play. The returned
// func releases both.
func openEnv(cfg config.Config, logger *log.Logger) (*tui.Env, func()) {
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		logger.Warn("could not open scores database", "error", err)
	}

	board := leaderboard.New(cfg.Leaderboard)
	env := tui.NewEnv(flagPlayer, store, cfg, board, logger)

	return env, func() {
		if err := board.Close(); err != nil {
			logger.Warn("closing leaderboard", "error", err)
		}
		if store != nil {
			store.Close()
		}
	}
}

func runInteractive(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()
	env, closeEnv := openEnv(cfg, logger)
	defer closeEnv()

	return tui.RunSession(env, runtimeConfig(cfg))
}
