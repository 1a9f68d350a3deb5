package main

import (
	"fmt"

	"github.com/lox/withoutx/cmd/withoutx/shared"
	"github.com/lox/withoutx/internal/server"
)

// ServerCmd runs the websocket server
type ServerCmd struct {
	Config    string `short:"c" default:"withoutx-server.hcl" help:"Path to HCL configuration file"`
	Addr      string `help:"Listen address (overrides config)"`
	Port      int    `help:"Listen port (overrides config)"`
	StaticDir string `help:"Directory served at / (overrides config)"`
	Seed      *int64 `help:"Deterministic RNG seed for every room (optional)"`
	Debug     bool   `help:"Enable debug logging"`
	JSON      bool   `help:"Log JSON instead of text"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}

	// Apply command line overrides
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.StaticDir != "" {
		cfg.Server.StaticDir = c.StaticDir
	}
	if c.Seed != nil {
		cfg.Rooms.Seed = *c.Seed
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel, c.JSON)
	if cfg.Rooms.Seed != 0 {
		logger.Info("Using deterministic seed", "seed", cfg.Rooms.Seed)
	}

	s := server.NewServer(logger, server.WithConfig(cfg))

	logger.Info("Starting withoutx server",
		"address", cfg.GetServerAddress(),
		"static_dir", cfg.Server.StaticDir,
		"idle_timeout", cfg.Rooms.IdleTimeout,
		"messages_per_second", cfg.Limits.MessagesPerSecond)

	// Setup graceful shutdown
	ctx := shared.SetupSignalHandlerWithLogger(logger)
	return s.Start(ctx)
}
