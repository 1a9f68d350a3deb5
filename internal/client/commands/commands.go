package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/withoutx/internal/client"
)

// GlobalFlags holds common configuration for all commands
type GlobalFlags struct {
	Config   string `short:"c" default:"withoutx-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" help:"Server URL to connect to (overrides config)"`
	Player   string `short:"p" help:"Player name (overrides config)"`
	ID       string `help:"Player identity reused across reconnects (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path (overrides config)"`
}

// LoadConfig loads the client configuration and applies flag overrides.
func LoadConfig(flags *GlobalFlags) (*client.ClientConfig, error) {
	cfg, err := client.LoadClientConfig(flags.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	// Apply command line overrides
	if flags.Server != "" {
		cfg.Server.URL = flags.Server
	}
	if flags.Player != "" {
		cfg.Player.Name = flags.Player
	}
	if flags.ID != "" {
		cfg.Player.ID = flags.ID
	}
	if flags.LogLevel != "" {
		cfg.UI.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.UI.LogFile = flags.LogFile
	}
	return cfg, nil
}

// NewLogger builds a logger writing to w at the configured level.
func NewLogger(cfg *client.ClientConfig, w io.Writer) *log.Logger {
	logger := log.New(w)
	level, err := log.ParseLevel(cfg.UI.LogLevel)
	if err != nil {
		level = log.WarnLevel // Default to warn to reduce noise
	}
	logger.SetLevel(level)
	return logger
}

// SetupClientWithFileLogging loads configuration, opens the log file and
// builds an unconnected client. The TUI owns the terminal, so logs go to the
// file.
func SetupClientWithFileLogging(flags *GlobalFlags, in io.Reader, out io.Writer) (*client.Client, *client.ClientConfig, *log.Logger, func(), error) {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	// Get player name if not set
	if cfg.Player.Name == "" {
		_, _ = fmt.Fprint(out, "Enter your player name: ")
		var input string
		_, _ = fmt.Fscanln(in, &input)
		cfg.Player.Name = strings.TrimSpace(input)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Setup logging to file (overwrite each time)
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := NewLogger(cfg, logFile)
	wsClient := client.NewClient(cfg.Server.URL, logger,
		client.WithName(cfg.Player.Name),
		client.WithIdentity(cfg.Player.ID),
	)

	cleanup := func() {
		_ = wsClient.Disconnect()
		_ = logFile.Close()
	}
	return wsClient, cfg, logger, cleanup, nil
}
