package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/mergegrid.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Game: GameConfig{
			GridSize:          4,
			WinThreshold:      2048,
			Spawn4Probability: 0.1,
			FPS:               60,
		},
		Modes: ModesConfig{
			TimeAttackSeconds: 60,
			VersusSeconds:     60,
			ClassicUndo:       true,
		},
		Storage: StorageConfig{
			DBPath: "~/.mergegrid/scores.db",
		},
		Server: ServerConfig{
			Address:      ":23234",
			IdleTimeout:  30 * time.Minute,
			LobbyTimeout: 2 * time.Minute,
		},
		Leaderboard: LeaderboardConfig{
			Enabled:   false,
			Addr:      "localhost:6379",
			KeyPrefix: "mergegrid",
			Timeout:   2 * time.Second,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
