package t2048

// Animation lengths in ticks.
const (
	slideAnimationDuration = 8 // ~133ms at 60fps
	popAnimationDuration   = 6 // ~100ms at 60fps
)

// TileAnimation is a tile drawn between cells while a move plays out.
type TileAnimation struct {
	Value    int
	From     Pos
	To       Pos
	Progress float64 // 0.0 → 1.0
	Merged   bool
	IsNew    bool
}

// AnimationPhase represents the current phase of animation.
type AnimationPhase int

const (
	PhaseNone AnimationPhase = iota
	PhaseSlide
	PhasePop
)

// startSlideAnimation queues the slide for moves, then a pop for spawned.
func (g *Game) startSlideAnimation(moves []TileMove, spawned *Tile) {
	g.animations = g.animations[:0]
	for _, m := range moves {
		g.animations = append(g.animations, TileAnimation{
			Value:  m.Value,
			From:   m.From,
			To:     m.To,
			Merged: m.Merged,
		})
	}
	g.pendingNewTile = spawned
	g.animating = true
	g.animationPhase = PhaseSlide
	g.animationTicks = 0
}

func (g *Game) startPopAnimation(t Tile) {
	g.animations = []TileAnimation{{
		Value: t.Value,
		From:  t.At,
		To:    t.At,
		IsNew: true,
	}}
	g.animating = true
	g.animationPhase = PhasePop
	g.animationTicks = 0
}

// updateAnimation advances the animation by one tick.
// Returns true if animation is still in progress.
func (g *Game) updateAnimation() bool {
	if !g.animating {
		return false
	}

	g.animationTicks++

	var duration int
	switch g.animationPhase {
	case PhaseSlide:
		duration = slideAnimationDuration
	case PhasePop:
		duration = popAnimationDuration
	default:
		g.clearAnimation()
		return false
	}

	progress := min(float64(g.animationTicks)/float64(duration), 1.0)
	for i := range g.animations {
		g.animations[i].Progress = progress
	}

	if g.animationTicks >= duration {
		g.finishAnimation()
		return g.animating
	}
	return true
}

func (g *Game) finishAnimation() {
	if g.animationPhase == PhaseSlide && g.pendingNewTile != nil {
		t := *g.pendingNewTile
		g.pendingNewTile = nil
		g.startPopAnimation(t)
		return
	}
	g.clearAnimation()
}

func (g *Game) clearAnimation() {
	g.animating = false
	g.animationPhase = PhaseNone
	g.animations = nil
	g.animationTicks = 0
	g.pendingNewTile = nil
}

// easeOutQuad provides smooth deceleration for animation.
func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

// position returns the fractional cell the tile is drawn at.
func (a *TileAnimation) position() (row, col float64) {
	t := easeOutQuad(a.Progress)
	row = float64(a.From.Row) + float64(a.To.Row-a.From.Row)*t
	col = float64(a.From.Col) + float64(a.To.Col-a.From.Col)*t
	return row, col
}
