package t2048

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vovakirdan/mergegrid/internal/core"
)

const (
	cellWidth  = 6 // Width of each cell (including left border)
	cellHeight = 2 // Height of each cell (including top border)
	hudHeight  = 3
)

// boardDims returns the drawn board size in characters.
func boardDims(size int) (w, h int) {
	return size*cellWidth + 1, size*cellHeight + 1
}

// TileColor returns the color a tile value is drawn in.
func TileColor(v int) core.Color {
	switch v {
	case 2:
		return core.ColorWhite
	case 4:
		return core.ColorBrightWhite
	case 8:
		return core.ColorYellow
	case 16:
		return core.ColorOrange
	case 32:
		return core.ColorRed
	case 64:
		return core.ColorBrightRed
	case 128:
		return core.ColorBrightYellow
	case 256:
		return core.ColorGreen
	case 512:
		return core.ColorBrightGreen
	case 1024:
		return core.ColorCyan
	case 2048:
		return core.ColorBrightMagenta
	default:
		return core.ColorMagenta
	}
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	boardW, boardH := boardDims(g.session.Size())
	boardX := (g.screenW - boardW) / 2
	boardY := hudHeight + 1

	g.renderHUD(dst, boardX, boardW)
	drawBoard(dst, g.session.grid, boardX, boardY, g.tileOverrides())
	g.renderOverlays(dst, boardX, boardY, boardW, boardH)
}

func (g *Game) renderTooSmall(dst *core.Screen) {
	msg := "Window too small"
	y := g.screenH / 2
	dst.DrawText((g.screenW-len(msg))/2, y, msg)

	hint := "Please resize terminal"
	dst.DrawText((g.screenW-len(hint))/2, y+1, hint)
}

// renderHUD draws the score line and mode info.
func (g *Game) renderHUD(dst *core.Screen, boardX, boardW int) {
	n := g.session.Size()
	title := fmt.Sprintf("MergeGrid %dx%d  %s", n, n, g.mode.Title)
	dst.DrawTextColored(boardX+(boardW-len(title))/2, 0, title, core.ColorBrightCyan)

	dst.DrawText(boardX, 1, fmt.Sprintf("Score: %d", g.session.Score()))
	best := fmt.Sprintf("Best: %d", g.best)
	dst.DrawText(boardX+boardW-len(best), 1, best)

	var info string
	color := core.ColorGray
	switch {
	case g.mode.Timed():
		left := g.TimeLeft()
		info = fmt.Sprintf("Time: %ds", left)
		if left <= 10 {
			color = core.ColorBrightRed
		}
	case g.daily != nil:
		info = fmt.Sprintf("%s  Target: %d", g.daily.Date, g.daily.TargetScore)
		if g.daily.Reached(g.session.Score()) {
			color = core.ColorBrightGreen
		}
	case g.mode.AllowUndo && g.session.CanUndo():
		info = "Undo ready"
	default:
		info = fmt.Sprintf("Max: %d", g.session.MaxTile())
	}
	dst.DrawTextColored(boardX+(boardW-len(info))/2, 2, info, color)
}

// tileOverrides returns what to draw in place of grid values while an
// animation is running. A nil map means draw the grid as is.
func (g *Game) tileOverrides() map[Pos]drawnTile {
	if !g.animating {
		return nil
	}
	out := make(map[Pos]drawnTile)
	switch g.animationPhase {
	case PhaseSlide:
		// Destination cells show nothing (or the resting merge partner)
		// until the sliding tile arrives.
		for _, a := range g.animations {
			if a.Merged {
				out[a.To] = drawnTile{value: a.Value}
			} else {
				out[a.To] = drawnTile{}
			}
		}
		if g.pendingNewTile != nil {
			out[g.pendingNewTile.At] = drawnTile{}
		}
		for _, a := range g.animations {
			r, c := a.position()
			p := Pos{int(math.Round(r)), int(math.Round(c))}
			out[p] = drawnTile{value: a.Value}
		}
	case PhasePop:
		for _, a := range g.animations {
			out[a.To] = drawnTile{value: a.Value, color: core.ColorBrightCyan, set: true}
		}
	}
	for _, m := range g.lastMerges {
		if _, taken := out[m.At]; !taken && g.animationPhase == PhasePop {
			out[m.At] = drawnTile{value: m.Value, color: core.ColorBrightWhite, set: true}
		}
	}
	return out
}

type drawnTile struct {
	value int
	color core.Color
	set   bool // color overrides TileColor
}

// drawBoard draws grid with its top-left corner at (x, y). overrides
// replaces individual cells.
func drawBoard(dst *core.Screen, grid Grid, x, y int, overrides map[Pos]drawnTile) {
	rows, cols := grid.Rows(), grid.Cols()
	for r := range rows + 1 {
		for c := range cols + 1 {
			px := x + c*cellWidth
			py := y + r*cellHeight

			var corner rune
			switch {
			case r == 0 && c == 0:
				corner = '┌'
			case r == 0 && c == cols:
				corner = '┐'
			case r == rows && c == 0:
				corner = '└'
			case r == rows && c == cols:
				corner = '┘'
			case r == 0:
				corner = '┬'
			case r == rows:
				corner = '┴'
			case c == 0:
				corner = '├'
			case c == cols:
				corner = '┤'
			default:
				corner = '┼'
			}
			dst.SetColored(px, py, corner, core.ColorGray)

			if c < cols {
				for i := 1; i < cellWidth; i++ {
					dst.SetColored(px+i, py, '─', core.ColorGray)
				}
			}
			if r < rows {
				for i := 1; i < cellHeight; i++ {
					dst.SetColored(px, py+i, '│', core.ColorGray)
				}
			}
		}
	}

	for r := range rows {
		for c := range cols {
			p := Pos{r, c}
			t := drawnTile{value: grid.At(p)}
			if o, ok := overrides[p]; ok {
				t = o
			}
			if t.value == 0 {
				continue
			}
			color := TileColor(t.value)
			if t.set {
				color = t.color
			}

			valStr := strconv.Itoa(t.value)
			pad := max((cellWidth-1-len(valStr))/2, 0)
			dst.DrawTextColored(x+c*cellWidth+1+pad, y+r*cellHeight+1, valStr, color)
		}
	}
}

// renderOverlays draws game state overlays.
func (g *Game) renderOverlays(dst *core.Screen, boardX, boardY, boardW, boardH int) {
	centerX := boardX + boardW/2
	centerY := boardY + boardH/2

	switch {
	case g.paused:
		drawOverlay(dst, centerX, centerY, "PAUSED", "Press P to resume")
	case g.awaitingContinue():
		lines := []string{"YOU WIN!", fmt.Sprintf("Score: %d", g.session.Score())}
		if g.daily != nil {
			lines = append(lines, "Daily challenge complete")
		}
		lines = append(lines, "Enter: keep going", "R: new game")
		drawOverlay(dst, centerX, centerY, lines...)
	case g.session.Over():
		title := "GAME OVER"
		if g.timeUp {
			title = "TIME'S UP!"
		}
		lines := []string{title, fmt.Sprintf("Score: %d", g.session.Score())}
		if g.daily != nil {
			if g.daily.Reached(g.session.Score()) {
				lines = append(lines, "Target reached!")
			} else {
				lines = append(lines, fmt.Sprintf("Target: %d", g.daily.TargetScore))
			}
		}
		if g.mode.AllowUndo && g.session.CanUndo() && !g.timeUp {
			lines = append(lines, "U: undo")
		}
		if g.daily == nil {
			lines = append(lines, "R: restart")
		}
		drawOverlay(dst, centerX, centerY, lines...)
	}
}

// drawOverlay draws a centered boxed message.
func drawOverlay(dst *core.Screen, centerX, centerY int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		maxLen = max(maxLen, len(line))
	}

	boxW := maxLen + 4
	boxH := len(lines) + 2
	box := core.NewRect(centerX-boxW/2, centerY-boxH/2, boxW, boxH)

	dst.DrawRect(box, ' ')
	dst.DrawBox(box)

	for i, line := range lines {
		color := core.ColorDefault
		if i == 0 {
			color = core.ColorBrightYellow
		}
		dst.DrawTextColored(centerX-len(line)/2, box.Y+1+i, line, color)
	}
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	if g.daily != nil {
		return "Arrows/WASD/HJKL: Move | P: Pause | B: Menu | Q: Quit"
	}
	if g.mode.AllowUndo {
		return "Arrows/WASD/HJKL: Move | U: Undo | P: Pause | R: Restart | B: Menu | Q: Quit"
	}
	return "Arrows/WASD/HJKL: Move | P: Pause | R: Restart | B: Menu | Q: Quit"
}
