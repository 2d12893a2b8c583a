package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/mergegrid/internal/config"
	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/leaderboard"
	"github.com/vovakirdan/mergegrid/internal/multiplayer"
	"github.com/vovakirdan/mergegrid/internal/storage"
)

// sessionEventBuffer is how many coordinator events a slow client may lag.
const sessionEventBuffer = 64

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.mergegrid/host_key.
	HostKeyPath string

	// DBPath is the path to the scores database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// LobbyTimeout is how long an unjoined lobby or rematch offer lives.
	LobbyTimeout time.Duration
}

// SSHServerConfigFrom builds the server config from the loaded configuration.
func SSHServerConfigFrom(cfg config.Config) SSHServerConfig {
	return SSHServerConfig{
		Address:      cfg.Server.Address,
		HostKeyPath:  cfg.Server.HostKeyPath,
		DBPath:       cfg.Storage.DBPath,
		IdleTimeout:  cfg.Server.IdleTimeout,
		LobbyTimeout: cfg.Server.LobbyTimeout,
	}
}

// SSHServer serves MergeGrid over SSH. Every connection plays under its
// login name; all connections share one database, leaderboard and
// head-to-head coordinator.
type SSHServer struct {
	config      SSHServerConfig
	game        config.Config
	server      *ssh.Server
	store       *storage.Store
	board       leaderboard.Submitter
	sessions    *multiplayer.SessionRegistry
	coordinator *multiplayer.Coordinator
	logger      *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, gameCfg config.Config) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "mergegrid-ssh",
	})

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
	}

	board := leaderboard.New(gameCfg.Leaderboard)
	if gameCfg.Leaderboard.Enabled {
		logger.Info("submitting scores to leaderboard", "addr", gameCfg.Leaderboard.Addr)
	}

	srv := &SSHServer{
		config:   cfg,
		game:     gameCfg,
		store:    store,
		board:    board,
		sessions: multiplayer.NewSessionRegistry(),
		logger:   logger,
	}
	srv.coordinator = srv.newCoordinator()

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			srv.closeBackends()
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".mergegrid", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		srv.closeBackends()
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.sessionMiddleware,
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		srv.closeBackends()
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

func (s *SSHServer) newCoordinator() *multiplayer.Coordinator {
	ccfg := multiplayer.DefaultCoordinatorConfig()
	if s.config.LobbyTimeout > 0 {
		ccfg.LobbyTimeout = s.config.LobbyTimeout
	}
	if s.game.Game.FPS > 0 {
		ccfg.TickRate = s.game.Game.FPS
	}

	settings := s.game.Settings()
	factory := func(gameID string, rc core.RuntimeConfig) (multiplayer.OnlineGame, error) {
		if gameID != t2048.VersusGameID {
			return nil, fmt.Errorf("unknown online game %q", gameID)
		}
		g := t2048.NewVersus(settings, rc.TimerSeconds)
		g.Reset(rc)
		return g, nil
	}

	c := multiplayer.NewCoordinator(ccfg, factory, s.sessions)
	c.SetLogger(s.logger.WithPrefix("coordinator"))
	if s.store != nil {
		c.SetResultSaver(s.store)
	}
	return c
}

type sessionKey struct{}

// sessionMiddleware registers a coordinator session for the connection and
// tears it down when the connection ends.
func (s *SSHServer) sessionMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		session := multiplayer.NewChannelSession(multiplayer.NewSessionID(), sshSession.User(), sessionEventBuffer)
		s.sessions.Register(session)
		sshSession.Context().SetValue(sessionKey{}, session)

		next(sshSession)

		s.coordinator.Send(multiplayer.SessionDisconnectedMsg{SessionID: session.ID()})
		s.sessions.Unregister(session.ID())
		session.Close()
	}
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.game.Game.FPS,
	}

	env := NewEnv(sshSession.User(), s.store, s.game, s.board, s.logger.With("user", sshSession.User()))
	env.Coordinator = s.coordinator

	session, _ := sshSession.Context().Value(sessionKey{}).(*multiplayer.ChannelSession)
	if session == nil {
		env.Coordinator = nil
	}

	return NewSessionModel(env, cfg, session), []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)
	s.coordinator.Start()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.coordinator.Stop()
	s.closeBackends()
	return err
}

func (s *SSHServer) closeBackends() {
	if s.store != nil {
		s.store.Close()
	}
	if err := s.board.Close(); err != nil {
		s.logger.Warn("closing leaderboard", "error", err)
	}
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
