package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mergegrid/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MergeGrid SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection plays under its login name, with its own saved games
and achievements. Scores are stored per server, so everyone shares the
high score tables. Connected players can host and join head-to-head
matches with a short join code.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.mergegrid/host_key

Examples:
  mergegrid serve                           # Listen on the configured address
  mergegrid serve --ssh :2222               # Listen on port 2222
  mergegrid serve --host-key ./my_host_key  # Use specific host key
  mergegrid serve --db ./scores.db          # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (0 = config value)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sc := tui.SSHServerConfigFrom(cfg)
	if flagSSHAddr != "" {
		sc.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		sc.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		sc.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}

	server, err := tui.NewSSHServer(sc, cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting MergeGrid SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
