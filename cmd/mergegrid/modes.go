package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/registry"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List all available modes",
	Long:  `Shows the game modes and the grid sizes they can be played on.`,
	Args:  cobra.NoArgs,
	Run:   runModes,
}

func runModes(_ *cobra.Command, _ []string) {
	fmt.Println("Available modes:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, id := range t2048.ModeIDs {
		maxIDLen = max(maxIDLen, len(id))
	}

	fmt.Printf("  %-*s  %-16s  %s\n", maxIDLen, "ID", "Title", "Notes")
	fmt.Printf("  %-*s  %-16s  %s\n", maxIDLen, "--", "-----", "-----")

	for _, info := range registry.List() {
		mode := t2048.MustMode(t2048.ModeID(info.ID))
		fmt.Printf("  %-*s  %-16s  %s\n", maxIDLen, info.ID, info.Title, modeNotes(mode))
	}
	versus := t2048.MustMode(t2048.ModeVersus)
	fmt.Printf("  %-*s  %-16s  %s\n", maxIDLen, versus.ID, versus.Title, modeNotes(versus))

	sizes := make([]string, len(t2048.SupportedSizes))
	for i, s := range t2048.SupportedSizes {
		sizes[i] = fmt.Sprintf("%dx%d", s, s)
	}

	fmt.Println()
	fmt.Printf("Grid sizes: %s\n", strings.Join(sizes, ", "))
	fmt.Println("Run 'mergegrid play --mode <id>' to play a mode.")
}

func modeNotes(m t2048.Mode) string {
	var notes []string
	if m.Timed() {
		notes = append(notes, fmt.Sprintf("timed (%ds default)", m.TimerSeconds))
	}
	if m.AllowUndo {
		notes = append(notes, "undo")
	}
	if m.Persist {
		notes = append(notes, "resumable")
	}
	switch m.ID {
	case t2048.ModeDaily:
		notes = append(notes, "same board for everyone each day")
	case t2048.ModeVersus:
		notes = append(notes, "over SSH")
	}
	return strings.Join(notes, ", ")
}
