package gkv

import (
	"io"
	"log/slog"
	"os"
)

var logLevel = new(slog.LevelVar)

// ConfigureLogging sets up the global default logger with a TextHandler
// writing to w (os.Stdout when nil) and configures the log level based on
// the GKV_LOG_LEVEL environment variable. It defaults to Info level if not
// specified.
//
// This function should be called by the application at startup if it wants
// to use the default gkv logging configuration. The badger subpackage routes
// the embedded engine's own chatter through the logger configured here, so
// one call covers both layers.
func ConfigureLogging(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	// Default to Info
	logLevel.Set(slog.LevelInfo)

	// Check environment variable for log level
	switch os.Getenv("GKV_LOG_LEVEL") {
	case "DEBUG":
		logLevel.Set(slog.LevelDebug)
	case "WARN":
		logLevel.Set(slog.LevelWarn)
	case "ERROR":
		logLevel.Set(slog.LevelError)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// SetLogLevel sets the logging level for the logger configured by ConfigureLogging.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}
