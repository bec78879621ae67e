package internal

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the application logger.
// # Ticker mode
// - logs go to stderr, console output owns stdout
// # TUI mode
// - logs go to a rotating file under the user config dir, since bubbletea
//   owns the whole terminal
// .
func NewLogger(appName, level string, toFile bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	var writer io.Writer
	if toFile {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		writer = &lumberjack.Logger{
			Filename:   filepath.Join(dir, appName, appName+".slog"),
			MaxSize:    16, // MB
			MaxBackups: 1,
		}
	} else {
		writer = os.Stderr
	}

	return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: logLevel}))
}
