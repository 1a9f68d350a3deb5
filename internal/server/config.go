package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Limits LimitSettings  `hcl:"limits,block"`
	Rooms  RoomSettings   `hcl:"rooms,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address   string `hcl:"address,optional"`
	Port      int    `hcl:"port,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	StaticDir string `hcl:"static_dir,optional"`
}

// LimitSettings bounds what a single connection may cost the server.
type LimitSettings struct {
	MessagesPerSecond float64 `hcl:"messages_per_second,optional"`
	Burst             int     `hcl:"burst,optional"`
	SendBuffer        int     `hcl:"send_buffer,optional"`
}

// RoomSettings controls room lifecycle.
type RoomSettings struct {
	// IdleTimeout evicts rooms without a live connection, e.g. "30m".
	// Empty or "0" keeps rooms forever.
	IdleTimeout string `hcl:"idle_timeout,optional"`
	// Seed makes every deal reproducible when non-zero.
	Seed int64 `hcl:"seed,optional"`
}

const (
	defaultAddress           = "localhost"
	defaultPort              = 8080
	defaultLogLevel          = "info"
	defaultMessagesPerSecond = 10
	defaultBurst             = 20
	defaultSendBuffer        = 256
)

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  defaultAddress,
			Port:     defaultPort,
			LogLevel: defaultLogLevel,
		},
		Limits: LimitSettings{
			MessagesPerSecond: defaultMessagesPerSecond,
			Burst:             defaultBurst,
			SendBuffer:        defaultSendBuffer,
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseServerConfig(src, filename)
}

// ParseServerConfig decodes HCL source and fills in defaults.
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Limits.MessagesPerSecond == 0 {
		c.Limits.MessagesPerSecond = defaultMessagesPerSecond
	}
	if c.Limits.Burst == 0 {
		c.Limits.Burst = defaultBurst
	}
	if c.Limits.SendBuffer == 0 {
		c.Limits.SendBuffer = defaultSendBuffer
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.Server.StaticDir != "" {
		info, err := os.Stat(c.Server.StaticDir)
		if err != nil {
			return fmt.Errorf("static dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("static dir %s is not a directory", c.Server.StaticDir)
		}
	}

	if c.Limits.MessagesPerSecond < 0 {
		return fmt.Errorf("limits: messages_per_second must not be negative")
	}
	if c.Limits.Burst < 1 {
		return fmt.Errorf("limits: burst must be at least 1")
	}
	if c.Limits.SendBuffer < 1 {
		return fmt.Errorf("limits: send_buffer must be at least 1")
	}

	if _, err := c.IdleTimeout(); err != nil {
		return err
	}
	return nil
}

// IdleTimeout parses rooms.idle_timeout. Zero disables eviction.
func (c *ServerConfig) IdleTimeout() (time.Duration, error) {
	if c.Rooms.IdleTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Rooms.IdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("rooms: invalid idle_timeout %q: %w", c.Rooms.IdleTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("rooms: idle_timeout must not be negative")
	}
	return d, nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
