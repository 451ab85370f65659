package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	APP        = "APP"
	CHAT       = "CHAT"
	CONFIG     = "CONFIG"
	HANDLER    = "HANDLER"
	MIDDLEWARE = "MIDDLEWARE"
	REDIS      = "REDIS"
	SESSION    = "SESSION"
	STORE      = "STORE"
	WIDGET     = "WIDGET"
)

// ParseLevel maps a LOG_LEVEL value onto a zerolog level. Unknown values fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup points the global logger at w, using LOG_LEVEL and LOG_FORMAT from the environment.
func Setup(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zerolog.SetGlobalLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// For returns a child of the global logger tagged with the given component.
func For(namespace string) zerolog.Logger {
	return log.With().Str("component", namespace).Logger()
}
