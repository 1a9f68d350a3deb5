package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/withoutx/internal/client"
	"github.com/lox/withoutx/internal/tui"
)

// PlayCommand connects and starts the TUI, optionally entering a room.
type PlayCommand struct {
	Room   string `arg:"" optional:"" help:"Room code to enter (overrides config)"`
	Create bool   `help:"Create the room if it does not exist; without a room code the server picks one"`
}

func (cmd *PlayCommand) Run(flags *GlobalFlags) error {
	// Create client with file logging (handles config loading and log file creation)
	wsClient, cfg, logger, cleanup, err := SetupClientWithFileLogging(flags, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer cleanup()

	room := cmd.Room
	if room == "" {
		room = cfg.Player.Room
	}

	logger.Info("Starting withoutx client",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"room", room)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := ConnectWithRetry(ctx, wsClient, cfg); err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}

	model := tui.NewModel(wsClient, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	bridge := tui.NewBridge(wsClient, program)
	defer bridge.Close()

	for _, line := range tui.HelpLines {
		model.AddLogEntry(line)
	}

	switch {
	case cmd.Create:
		err = wsClient.CreateRoom(room)
	case room != "":
		err = wsClient.JoinRoom(room)
	}
	if err != nil {
		return fmt.Errorf("failed to enter room %s: %w", room, err)
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// ConnectWithRetry dials the server, retrying per the config.
func ConnectWithRetry(ctx context.Context, c *client.Client, cfg *client.ClientConfig) error {
	timeout := time.Duration(cfg.Server.ConnectTimeout) * time.Second
	delay := time.Duration(cfg.Server.ReconnectDelay) * time.Second

	var err error
	for attempt := 0; attempt <= cfg.Server.ReconnectAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		err = c.Connect(dialCtx)
		cancel()
		if err == nil {
			return nil
		}
	}
	return err
}
