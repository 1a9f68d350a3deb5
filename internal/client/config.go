package client

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ClientConfig represents the complete client configuration
type ClientConfig struct {
	Server ServerConnection `hcl:"server,block"`
	Player PlayerSettings   `hcl:"player,block"`
	UI     UISettings       `hcl:"ui,block"`
}

// ServerConnection contains server connection settings
type ServerConnection struct {
	URL               string `hcl:"url,optional"`
	ConnectTimeout    int    `hcl:"connect_timeout,optional"`
	ReconnectAttempts int    `hcl:"reconnect_attempts,optional"`
	ReconnectDelay    int    `hcl:"reconnect_delay,optional"`
}

// PlayerSettings contains player-specific settings
type PlayerSettings struct {
	Name string `hcl:"name,optional"`
	// ID is the identity reused across reconnects. Empty means a fresh one
	// per run.
	ID   string `hcl:"id,optional"`
	Room string `hcl:"room,optional"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// DefaultClientConfig returns a client configuration with sensible defaults
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Server: ServerConnection{
			URL:               "http://localhost:8080",
			ConnectTimeout:    10,
			ReconnectAttempts: 3,
			ReconnectDelay:    2,
		},
		UI: UISettings{
			LogLevel: "warn",
			LogFile:  "withoutx-client.log",
		},
	}
}

// LoadClientConfig loads client configuration from HCL file
func LoadClientConfig(filename string) (*ClientConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultClientConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ClientConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ClientConfig) applyDefaults() {
	defaults := DefaultClientConfig()

	if c.Server.URL == "" {
		c.Server.URL = defaults.Server.URL
	}
	if c.Server.ConnectTimeout == 0 {
		c.Server.ConnectTimeout = defaults.Server.ConnectTimeout
	}
	if c.Server.ReconnectAttempts == 0 {
		c.Server.ReconnectAttempts = defaults.Server.ReconnectAttempts
	}
	if c.Server.ReconnectDelay == 0 {
		c.Server.ReconnectDelay = defaults.Server.ReconnectDelay
	}
	if c.UI.LogLevel == "" {
		c.UI.LogLevel = defaults.UI.LogLevel
	}
	if c.UI.LogFile == "" {
		c.UI.LogFile = defaults.UI.LogFile
	}
}

// Validate validates the client configuration
func (c *ClientConfig) Validate() error {
	if _, err := WebSocketURL(c.Server.URL); err != nil {
		return err
	}

	if c.Player.Name == "" {
		return fmt.Errorf("player name is required")
	}

	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}

	if c.Server.ReconnectAttempts < 0 {
		return fmt.Errorf("reconnect attempts cannot be negative")
	}

	if c.Server.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	return nil
}
