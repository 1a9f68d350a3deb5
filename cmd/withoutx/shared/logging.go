package shared

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a stderr logger at the named level, as text or
// JSON.
func SetupLogger(level string, json bool) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	opts := log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}
	if json {
		opts.Formatter = log.JSONFormatter
		opts.TimeFormat = time.RFC3339Nano
	}
	return log.NewWithOptions(os.Stderr, opts)
}
