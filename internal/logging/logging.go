// Package logging builds the daemon's slog logger. The level is held in a
// shared slog.LevelVar so it can be changed while the daemon runs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jmylchreest/ledstripd/internal/config"
	"github.com/jmylchreest/ledstripd/internal/errors"
)

// GetLogLevel converts a string log level to slog.Level
func GetLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn, "warning":
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelName returns the config name of a slog level
func LevelName(level slog.Level) string {
	switch {
	case level <= slog.LevelDebug:
		return config.LogLevelDebug
	case level <= slog.LevelInfo:
		return config.LogLevelInfo
	case level <= slog.LevelWarn:
		return config.LogLevelWarn
	default:
		return config.LogLevelError
	}
}

// ValidateLogLevel ensures the provided level is valid, returning a default if not
func ValidateLogLevel(level string) string {
	switch level {
	case config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, config.LogLevelError:
		return level
	default:
		return config.LogLevelInfo
	}
}

// ValidateLogFormat ensures the provided format is valid, returning a default if not
func ValidateLogFormat(format string) string {
	switch format {
	case config.LogFormatText, config.LogFormatJSON:
		return format
	default:
		return config.LogFormatText
	}
}

// ParseLevel strictly parses a level name supplied by a remote caller.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, "warning", config.LogLevelError:
		return GetLogLevel(level), nil
	default:
		return 0, errors.InvalidInputf("invalid log level %q; must be debug, info, warn, or error", level)
	}
}

// Logger couples a slog.Logger with the level variable that controls it.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
}

// New creates a logger writing to w in the given format.
func New(w io.Writer, level, format string) *Logger {
	lv := &slog.LevelVar{}
	lv.Set(GetLogLevel(ValidateLogLevel(level)))

	opts := &slog.HandlerOptions{Level: lv, AddSource: lv.Level() <= slog.LevelDebug}
	var h slog.Handler
	if ValidateLogFormat(format) == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(h), level: lv}
}

// Setup creates the daemon logger on stderr.
func Setup(level, format string) *Logger {
	return New(os.Stderr, level, format)
}

// SetupErrorLogger creates a simple text logger for reporting errors during startup.
func SetupErrorLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Level returns the current level name.
func (l *Logger) Level() string {
	return LevelName(l.level.Level())
}

// SetLevel changes the level of every logger derived from l.
func (l *Logger) SetLevel(level string) error {
	lv, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if lv != l.level.Level() {
		l.Info("Log level changed", "from", l.Level(), "to", LevelName(lv))
		l.level.Set(lv)
	}
	return nil
}

// SetAsDefaultLogger sets a logger as the default logger
func SetAsDefaultLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
}
