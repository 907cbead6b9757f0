// Package logging builds the structured logger shared by the CLI, the API server and the
// planning engines.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level  string    // debug, info, warn, error
	Pretty bool      // Enable pretty console output
	Out    io.Writer // Defaults to stderr so command output on stdout stays clean
}

// New creates a new structured logger
func New(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetGlobalLogger sets the package-level logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}

// Adapter exposes a zerolog logger through the printf-style Logger used by the engines
type Adapter struct {
	Logger zerolog.Logger
}

// NewAdapter tags every record with the emitting component
func NewAdapter(l zerolog.Logger, component string) *Adapter {
	return &Adapter{Logger: l.With().Str("component", component).Logger()}
}

func (a *Adapter) Debugf(format string, args ...interface{}) {
	a.Logger.Debug().Msgf(format, args...)
}

func (a *Adapter) Infof(format string, args ...interface{}) {
	a.Logger.Info().Msgf(format, args...)
}

func (a *Adapter) Warnf(format string, args ...interface{}) {
	a.Logger.Warn().Msgf(format, args...)
}

func (a *Adapter) Errorf(format string, args ...interface{}) {
	a.Logger.Error().Msgf(format, args...)
}
