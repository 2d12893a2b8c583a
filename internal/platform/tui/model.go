package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mergegrid/internal/achievements"
	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/leaderboard"
)

// toastSeconds is how long an achievement banner stays up.
const toastSeconds = 3

// GameOptions selects what a solo game plays.
type GameOptions struct {
	Mode         t2048.ModeID
	GridSize     int
	TimerSeconds int
	Fresh        bool // start over even if a saved game exists
}

// Model is the Bubble Tea model for one solo game.
type Model struct {
	env        *Env
	game       *t2048.Game
	recorder   *Recorder
	board      *leaderboard.Listener
	screen     *core.Screen
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	keyMapper  *KeyMapper
	gameState  core.GameState
	resumed    bool

	toast      []achievements.Achievement
	toastTicks int

	quitting   bool
	backToMenu bool
}

// NewModel builds the game for opts and resumes a saved classic game
// unless opts.Fresh is set.
func NewModel(env *Env, opts GameOptions, cfg core.RuntimeConfig) (Model, error) {
	mode, err := env.Config.Mode(opts.Mode)
	if err != nil {
		return Model{}, err
	}
	if mode.ID == t2048.ModeVersus {
		return Model{}, fmt.Errorf("tui: %s is played online", mode.Title)
	}
	if mode.ID == t2048.ModeDaily {
		done, err := DailyResult(env.Profile, time.Now())
		if err != nil {
			return Model{}, fmt.Errorf("tui: checking daily challenge: %w", err)
		}
		if done != nil {
			return Model{}, ErrDailyCompleted
		}
	}

	settings := env.Config.Settings()
	if opts.GridSize != 0 {
		if !t2048.IsSupportedSize(opts.GridSize) {
			return Model{}, fmt.Errorf("%w: %d", t2048.ErrUnsupportedSize, opts.GridSize)
		}
		settings.GridSize = opts.GridSize
	}
	if opts.TimerSeconds > 0 {
		settings.TimerSeconds = opts.TimerSeconds
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = env.Config.Game.FPS
	}

	game := t2048.New(mode, settings)
	game.Reset(cfg)

	m := Model{
		env:        env,
		game:       game,
		recorder:   NewRecorder(env.Profile, game, env.Logger),
		board:      leaderboard.NewListener(env.Leaderboard, env.Player, env.Config.Leaderboard.Timeout),
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
	}
	m.board.SetLogger(env.Logger)

	// The recorder stores daily completions before the tracker counts them.
	game.Subscribe(m.recorder)
	game.Subscribe(env.Tracker)
	game.Subscribe(m.board)

	if !opts.Fresh {
		if st, ok := LoadResume(env.Profile, mode, game.Size()); ok {
			if err := game.Restore(st); err != nil {
				env.Logger.Warn("discarding unreadable saved game", "err", err)
			} else {
				m.resumed = true
			}
		}
	}
	m.loadBest()
	m.gameState = game.State()
	return m, nil
}

func (m *Model) loadBest() {
	if m.env.Profile == nil {
		return
	}
	best, err := m.env.Profile.BestScore(m.game.ScoreKey())
	if err != nil {
		m.env.Logger.Warn("cannot read best score", "err", err)
		return
	}
	m.game.SetBest(best)
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		m.game.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	switch {
	case isQuit:
		m.quitting = true
		return m, tea.Quit
	case action == core.ActionBack:
		m.backToMenu = true
		return m, nil
	case action != core.ActionNone:
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	// A daily challenge gets one attempt.
	if m.inputFrame.Has(core.ActionRestart) && m.game.Daily() == nil {
		m.restart()
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()
	if result.Moved {
		m.resumed = false
	}

	if unlocked := m.env.Tracker.Drain(); len(unlocked) > 0 {
		m.toast = append(m.toast, unlocked...)
		m.toastTicks = toastSeconds * m.config.TickRate
	}
	if m.toastTicks > 0 {
		m.toastTicks--
		if m.toastTicks == 0 {
			m.toast = nil
		}
	}

	return m, tickCmd(m.config.TickRate)
}

// restart abandons the current game and deals a new one.
func (m *Model) restart() {
	m.recorder.Abandon()
	m.config.Seed = time.Now().UnixNano()
	m.game.Reset(m.config)
	m.recorder.Rearm()
	m.resumed = false
	m.loadBest()
	m.gameState = m.game.State()
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".mergegrid", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.env.Logger.Warn("cannot create screenshot directory", "err", err)
		return
	}

	name := fmt.Sprintf("%s_%dx%d_%s.txt", m.game.ID(), m.game.Size(), m.game.Size(), time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(dir, name), []byte(m.screen.String()), 0o600); err != nil {
		m.env.Logger.Warn("cannot save screenshot", "err", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	view := RenderScreen(m.screen)

	if len(m.toast) > 0 {
		lines := make([]string, 0, len(m.toast)+1)
		lines = append(lines, "Achievement unlocked!")
		for _, a := range m.toast {
			lines = append(lines, a.String())
		}
		view = overlayBottom(view, toastStyle.Render(strings.Join(lines, "\n")), m.config.ScreenW)
	} else if m.resumed {
		view = overlayBottom(view, hintStyle.Render("Resumed saved game. R starts a new one."), m.config.ScreenW)
	}
	return view
}

// Game returns the running game.
func (m Model) Game() *t2048.Game {
	return m.game
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Close waits for pending leaderboard submissions.
func (m Model) Close() {
	m.board.Wait()
}

// Run starts a Bubble Tea program for a single game.
func Run(env *Env, opts GameOptions, cfg core.RuntimeConfig) error {
	model, err := NewModel(env, opts, cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	}
	return err
}
