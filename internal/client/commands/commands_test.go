package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/withoutx/internal/client"
	"github.com/lox/withoutx/internal/game"
	"github.com/lox/withoutx/internal/server"
)

func startServer(t *testing.T) (*server.Server, *httptest.Server) {
	t.Helper()
	s := server.NewServer(log.New(&bytes.Buffer{}), server.WithClock(quartz.NewMock(t)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		ts.Close()
	})
	return s, ts
}

func TestLoadConfigOverrides(t *testing.T) {
	flags := &GlobalFlags{
		Config:   filepath.Join(t.TempDir(), "missing.hcl"),
		Server:   "http://cards.example.com",
		Player:   "Georgi",
		ID:       "g-1",
		LogLevel: "debug",
		LogFile:  "other.log",
	}
	cfg, err := LoadConfig(flags)
	require.NoError(t, err)

	assert.Equal(t, "http://cards.example.com", cfg.Server.URL)
	assert.Equal(t, "Georgi", cfg.Player.Name)
	assert.Equal(t, "g-1", cfg.Player.ID)
	assert.Equal(t, "debug", cfg.UI.LogLevel)
	assert.Equal(t, "other.log", cfg.UI.LogFile)
}

func TestNewLoggerLevels(t *testing.T) {
	cfg := client.DefaultClientConfig()
	cfg.UI.LogLevel = "error"
	assert.Equal(t, log.ErrorLevel, NewLogger(cfg, &bytes.Buffer{}).GetLevel())

	cfg.UI.LogLevel = "nonsense"
	assert.Equal(t, log.WarnLevel, NewLogger(cfg, &bytes.Buffer{}).GetLevel())
}

func TestSetupClientPromptsForName(t *testing.T) {
	dir := t.TempDir()
	flags := &GlobalFlags{
		Config:  filepath.Join(dir, "missing.hcl"),
		LogFile: filepath.Join(dir, "client.log"),
		ID:      "vera-1",
	}

	var out bytes.Buffer
	c, cfg, logger, cleanup, err := SetupClientWithFileLogging(flags, strings.NewReader("Vera\n"), &out)
	require.NoError(t, err)
	defer cleanup()

	assert.Contains(t, out.String(), "player name")
	assert.Equal(t, "Vera", cfg.Player.Name)
	assert.Equal(t, "Vera", c.Name())
	assert.Equal(t, game.PlayerID("vera-1"), c.Identity())
	assert.NotNil(t, logger)
	_, err = os.Stat(flags.LogFile)
	assert.NoError(t, err, "log file created")
}

func TestSetupClientRequiresName(t *testing.T) {
	dir := t.TempDir()
	flags := &GlobalFlags{
		Config:  filepath.Join(dir, "missing.hcl"),
		LogFile: filepath.Join(dir, "client.log"),
	}
	_, _, _, _, err := SetupClientWithFileLogging(flags, strings.NewReader("\n"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "player name is required")
}

func TestConnectWithRetry(t *testing.T) {
	_, ts := startServer(t)
	cfg := client.DefaultClientConfig()
	cfg.Server.URL = ts.URL

	c := client.NewClient(ts.URL, log.New(&bytes.Buffer{}))
	require.NoError(t, ConnectWithRetry(context.Background(), c, cfg))
	assert.True(t, c.IsConnected())
	_ = c.Disconnect()
}

func TestConnectWithRetryGivesUp(t *testing.T) {
	_, ts := startServer(t)
	url := ts.URL
	ts.Close()

	cfg := client.DefaultClientConfig()
	cfg.Server.ReconnectAttempts = 0
	c := client.NewClient(url, log.New(&bytes.Buffer{}))
	assert.Error(t, ConnectWithRetry(context.Background(), c, cfg))

	cfg.Server.ReconnectAttempts = 5
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ConnectWithRetry(ctx, c, cfg), context.Canceled)
}

func TestPrintRooms(t *testing.T) {
	s, ts := startServer(t)

	var out bytes.Buffer
	require.NoError(t, PrintRooms(context.Background(), &out, ts.URL))
	assert.Equal(t, "No rooms\n", out.String())

	_, _, err := s.Registry().GetOrCreate("ABCD")
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, PrintRooms(context.Background(), &out, "ws"+strings.TrimPrefix(ts.URL, "http")))
	assert.Contains(t, out.String(), "ABCD: 0/4 seated, 0 watching, 0 online, waiting")
}
