// Package log wraps slog with component tagging and context carry so that
// ledger calls triggered by a Telegram update log under the same
// interaction id as the update itself.
package log

import (
	"log/slog"
	"os"
)

// Component names used across the bot.
const (
	ComponentApp      = "app"
	ComponentTelegram = "telegram"
	ComponentFlow     = "flow"
	ComponentSheets   = "sheets"
	ComponentSQLite   = "sqlite"
)

// Logger tags every record with the component it was created for.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration.
type Config struct {
	Level   slog.Level
	Handler slog.Handler
}

// New creates a logger. A nil Handler gets a text handler on stdout.
func New(cfg Config) *Logger {
	handler := cfg.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level})
	}
	return &Logger{Logger: slog.New(handler), component: ComponentApp}
}

// With returns a logger with the given attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component), component: component}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs l as the process-wide slog default.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

// Default returns the process-wide default wrapped as a Logger.
func Default() *Logger {
	return &Logger{Logger: slog.Default(), component: ComponentApp}
}
