package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/platform/tui"
	"github.com/vovakirdan/mergegrid/internal/registry"
)

var (
	flagMode  string
	flagSize  int
	flagTimer int
	flagNew   bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a mode",
	Long: `Start a solo game. Without --size the options screen lets you pick
the grid, timer and whether to continue a saved classic game.

Controls:
  Arrows/WASD/HJKL  - Slide tiles
  U                 - Undo last move (classic, time attack)
  P                 - Pause
  R                 - New game
  Ctrl+S            - Save screenshot
  B/Esc             - Back
  Q/Ctrl+C          - Quit

Examples:
  mergegrid play
  mergegrid play --mode classic --size 5
  mergegrid play --mode timeattack --size 4 --timer 30
  mergegrid play --mode classic --size 4 --new`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", string(t2048.ModeClassic), "Mode: classic, timeattack or daily")
	playCmd.Flags().IntVar(&flagSize, "size", 0, "Grid size: 3, 4, 5, 6 or 8 (0 = choose interactively)")
	playCmd.Flags().IntVar(&flagTimer, "timer", 0, "Time attack countdown in seconds (0 = config value)")
	playCmd.Flags().BoolVar(&flagNew, "new", false, "Start a new game instead of continuing a saved one")
}

func runPlay(_ *cobra.Command, _ []string) error {
	id := t2048.ModeID(flagMode)
	if !registry.Exists(flagMode) {
		if id == t2048.ModeVersus {
			return fmt.Errorf("%s is played over SSH: run 'mergegrid serve' and connect with ssh", t2048.MustMode(id).Title)
		}
		return fmt.Errorf("unknown mode %q: run 'mergegrid modes' to see available modes", flagMode)
	}
	if flagSize != 0 && !t2048.IsSupportedSize(flagSize) {
		return fmt.Errorf("%w: %d", t2048.ErrUnsupportedSize, flagSize)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()
	env, closeEnv := openEnv(cfg, logger)
	defer closeEnv()

	rc := runtimeConfig(cfg)
	opts := &tui.GameOptions{Mode: id, GridSize: flagSize, TimerSeconds: flagTimer, Fresh: flagNew}

	// Daily challenges fix their own grid.
	if flagSize == 0 && id != t2048.ModeDaily {
		var quit bool
		opts, quit, err = tui.RunOptions(env, id, rc)
		if err != nil || quit || opts == nil {
			return err
		}
		if flagTimer > 0 {
			opts.TimerSeconds = flagTimer
		}
	}

	return tui.Run(env, *opts, rc)
}
