package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/platform/tui"
)

var flagDailyPlay bool

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show today's challenge",
	Long: `Show today's daily challenge: every player gets the same grid size,
target score and starting board for the calendar day.

Examples:
  mergegrid daily
  mergegrid daily --play`,
	Args: cobra.NoArgs,
	RunE: runDaily,
}

func init() {
	dailyCmd.Flags().BoolVar(&flagDailyPlay, "play", false, "Play the challenge now")
}

func runDaily(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()
	env, closeEnv := openEnv(cfg, logger)
	defer closeEnv()

	if flagDailyPlay {
		err := tui.Run(env, tui.GameOptions{Mode: t2048.ModeDaily, Fresh: true}, runtimeConfig(cfg))
		if errors.Is(err, tui.ErrDailyCompleted) {
			fmt.Println("Today's challenge is already completed. Come back tomorrow!")
			return nil
		}
		return err
	}

	d := t2048.DailyFor(time.Now())
	fmt.Printf("Daily Challenge - %s\n", d.Date)
	fmt.Println()
	fmt.Printf("  Grid:    %dx%d\n", d.GridSize, d.GridSize)
	fmt.Printf("  Target:  %d\n", d.TargetScore)

	if env.Profile != nil {
		r, err := env.Profile.DailyCompleted(d.Date)
		if err != nil {
			return err
		}
		if r != nil {
			fmt.Printf("  Status:  completed with %d\n", r.Score)
		} else {
			fmt.Println("  Status:  not played yet")
		}
		if n, err := env.Profile.DailyCompletedCount(); err == nil {
			fmt.Printf("  Played:  %d day(s)\n", n)
		}
	}

	fmt.Println()
	fmt.Println("Run 'mergegrid daily --play' to take it on.")
	return nil
}
