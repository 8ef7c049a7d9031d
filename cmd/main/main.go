package main

import (
	"log/slog"
	"os"
	"strings"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	a := newApp(os.Stdout, os.Stderr)
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		a.logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// parseLogLevel maps a config level name to a slog level. Unknown names fall back to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
