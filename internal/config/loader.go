package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/mergegrid/internal/games/t2048"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Load reads the configuration.
// Search order: customPath -> ~/.mergegrid/config.yaml -> ./configs/mergegrid.yaml -> embedded default.
// Keys missing from a file keep their default values.
func Load(customPath string) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		cfg = DefaultConfig() // Fallback to hardcoded if embed fails
	}

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	for _, path := range []string{UserConfigPath(), filepath.Join("configs", "mergegrid.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		next := cfg
		if err := yaml.Unmarshal(data, &next); err != nil {
			continue
		}
		if err := next.Validate(); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		return next, nil
	}

	return cfg, nil
}

// UserConfigPath returns the path to the user config file, or empty if home is unavailable.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mergegrid", "config.yaml")
}

// Validate reports the first setting the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case !t2048.IsSupportedSize(c.Game.GridSize):
		return fmt.Errorf("%w: grid_size %d (want one of %v)", ErrInvalidConfig, c.Game.GridSize, t2048.SupportedSizes)
	case c.Game.WinThreshold < 4 || !t2048.IsPowerOfTwo(c.Game.WinThreshold):
		return fmt.Errorf("%w: win_threshold %d is not a power of two above 2", ErrInvalidConfig, c.Game.WinThreshold)
	case c.Game.Spawn4Probability < 0 || c.Game.Spawn4Probability > 1:
		return fmt.Errorf("%w: spawn4_probability %v outside [0,1]", ErrInvalidConfig, c.Game.Spawn4Probability)
	case c.Game.FPS < 1 || c.Game.FPS > 240:
		return fmt.Errorf("%w: fps %d outside 1..240", ErrInvalidConfig, c.Game.FPS)
	case c.Modes.TimeAttackSeconds <= 0:
		return fmt.Errorf("%w: timeattack_seconds must be positive", ErrInvalidConfig)
	case c.Modes.VersusSeconds <= 0:
		return fmt.Errorf("%w: versus_seconds must be positive", ErrInvalidConfig)
	case c.Leaderboard.Enabled && c.Leaderboard.Addr == "":
		return fmt.Errorf("%w: leaderboard enabled without addr", ErrInvalidConfig)
	}
	return nil
}

// Settings converts the game section into engine settings.
func (c Config) Settings() t2048.Settings {
	return t2048.Settings{
		GridSize:     c.Game.GridSize,
		WinThreshold: c.Game.WinThreshold,
		Spawn4Prob:   c.Game.Spawn4Probability,
		TimerSeconds: c.Modes.TimeAttackSeconds,
	}
}

// Mode returns the descriptor for id with configured timers and undo applied.
func (c Config) Mode(id t2048.ModeID) (t2048.Mode, error) {
	m, err := t2048.LookupMode(id)
	if err != nil {
		return m, err
	}
	switch id {
	case t2048.ModeClassic:
		m.AllowUndo = c.Modes.ClassicUndo
	case t2048.ModeTimeAttack:
		m = m.WithTimer(c.Modes.TimeAttackSeconds)
	case t2048.ModeVersus:
		m = m.WithTimer(c.Modes.VersusSeconds)
	}
	return m, nil
}
