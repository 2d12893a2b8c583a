// Package config provides YAML-based configuration loading for MergeGrid.
package config

import "time"

// Config is the full MergeGrid configuration.
type Config struct {
	Game        GameConfig        `yaml:"game"`
	Modes       ModesConfig       `yaml:"modes"`
	Storage     StorageConfig     `yaml:"storage"`
	Server      ServerConfig      `yaml:"server"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// GameConfig defines board parameters shared by every mode.
type GameConfig struct {
	GridSize          int     `yaml:"grid_size"`
	WinThreshold      int     `yaml:"win_threshold"`
	Spawn4Probability float64 `yaml:"spawn4_probability"`
	FPS               int     `yaml:"fps"`
}

// ModesConfig defines per-mode tweaks.
type ModesConfig struct {
	TimeAttackSeconds int  `yaml:"timeattack_seconds"`
	VersusSeconds     int  `yaml:"versus_seconds"`
	ClassicUndo       bool `yaml:"classic_undo"`
}

// StorageConfig defines where scores and saved games live.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// ServerConfig defines the SSH server.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	HostKeyPath  string        `yaml:"host_key_path"` // Empty: generated under ~/.mergegrid
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	LobbyTimeout time.Duration `yaml:"lobby_timeout"`
}

// LeaderboardConfig defines the optional Redis leaderboard.
type LeaderboardConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	Timeout   time.Duration `yaml:"timeout"`
}
