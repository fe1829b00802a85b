// Package logging provides the structured logger shared by every editor component.
//
// The Logger keeps the small field-oriented API the rest of the tree is written
// against (WithField, WithComponent, levelled methods) and delegates encoding
// and level filtering to zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Level is the minimum severity a Logger emits.
type Level = zerolog.Level

// Log levels.
const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
	LevelOff   = zerolog.Disabled
)

// ParseLevel parses a level name. Unknown names fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warning":
		return LevelWarn
	case "off", "none", "disabled":
		return LevelOff
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return LevelInfo
	}
	return lvl
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum level to output.
	Level Level
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Console switches from JSON lines to zerolog's human readable console writer.
	Console bool
	// Component is attached to every entry when non-empty.
	Component string
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Logger is a structured, levelled logger.
// A nil *Logger is valid and discards everything.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true}
	}
	zl := zerolog.New(out).Level(cfg.Level).With().Timestamp().Logger()
	if cfg.Component != "" {
		zl = zl.With().Str("component", cfg.Component).Logger()
	}
	return &Logger{zl: zl}
}

// Nop returns a logger that discards all output.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithField returns a child logger with key=value attached.
func (l *Logger) WithField(key string, value any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// WithFields returns a child logger with all fields attached.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

// WithComponent returns a child logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// Debug logs at debug level. keyvals are alternating keys and values.
func (l *Logger) Debug(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	write(l.zl.Debug(), msg, keyvals)
}

// Info logs at info level.
func (l *Logger) Info(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	write(l.zl.Info(), msg, keyvals)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	write(l.zl.Warn(), msg, keyvals)
}

// Error logs err at error level.
func (l *Logger) Error(msg string, err error, keyvals ...any) {
	if l == nil {
		return
	}
	write(l.zl.Error().Err(err), msg, keyvals)
}

// Enabled reports whether entries at lvl would be written.
func (l *Logger) Enabled(lvl Level) bool {
	if l == nil {
		return false
	}
	return l.zl.GetLevel() <= lvl && lvl != LevelOff
}

func write(ev *zerolog.Event, msg string, keyvals []any) {
	if ev == nil {
		return
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "BAD_VALUE")
	}
	if len(keyvals) > 0 {
		ev = ev.Fields(keyvals)
	}
	ev.Msg(msg)
}
