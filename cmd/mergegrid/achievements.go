package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mergegrid/internal/achievements"
	"github.com/vovakirdan/mergegrid/internal/platform/tui"
)

var flagAchievementsTUI bool

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievements",
	Long: `List every achievement and mark the ones this profile has unlocked.

Examples:
  mergegrid achievements
  mergegrid achievements --player alice
  mergegrid achievements --tui`,
	Args: cobra.NoArgs,
	RunE: runAchievements,
}

func init() {
	achievementsCmd.Flags().BoolVar(&flagAchievementsTUI, "tui", false, "Browse in the full screen view")
}

func runAchievements(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	env, closeEnv := openEnv(cfg, newLogger())
	defer closeEnv()

	if flagAchievementsTUI {
		rc := runtimeConfig(cfg)
		_, err := tui.RunAchievements(env, rc.ScreenW, rc.ScreenH)
		return err
	}

	got, total := env.Tracker.Progress()
	fmt.Printf("Achievements - %s (%d/%d)\n", env.Player, got, total)
	fmt.Println()

	for _, a := range achievements.Catalogue {
		mark := "[ ]"
		when := ""
		if at, ok := env.Tracker.UnlockedAt(a.ID); ok {
			mark = "[x]"
			if !at.IsZero() {
				when = at.Format("2006-01-02")
			}
		}
		fmt.Printf("  %s %-18s %-44s %s\n", mark, a.Title, a.Description, when)
	}
	return nil
}
