package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the shared application logger. Packages log through it directly;
// components that want scoped fields derive a child via Log.With().
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the global logger. level is one of debug/info/warn/error;
// format is "json" (default) or "console" for local development.
func Init(level, format string) {
	zerolog.SetGlobalLevel(parseLevel(level))

	if format == "console" {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		Log = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	Log = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
