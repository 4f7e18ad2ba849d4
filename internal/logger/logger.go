package logger

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

var (
	defaultHandler slog.Handler
	handlerOnce    sync.Once
)

func handler() slog.Handler {
	handlerOnce.Do(func() {
		if defaultHandler == nil {
			defaultHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})
		}
	})
	return defaultHandler
}

// SetHandler replaces the process-wide log handler. Call before any Logger is
// used; tests use this to capture output.
func SetHandler(h slog.Handler) {
	defaultHandler = h
	handlerOnce = sync.Once{}
}

type Logger struct {
	scope    string
	file     string
	function string
}

func New(scope string) Logger {
	return Logger{scope: scope}
}

func (l Logger) File(file string) Logger {
	l.file = file
	return l
}

func (l Logger) Function(function string) Logger {
	l.function = function
	return l
}

func (l Logger) slog() *slog.Logger {
	log := slog.New(handler()).With("scope", l.scope)
	if l.file != "" {
		log = log.With("file", l.file)
	}
	if l.function != "" {
		log = log.With("function", l.function)
	}
	return log
}

func (l Logger) Debug(msg string, args ...any) {
	l.slog().Debug(msg, args...)
}

func (l Logger) Info(msg string, args ...any) {
	l.slog().Info(msg, args...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.slog().Warn(msg, args...)
}

// Err logs the message with the underlying error and returns a wrapped error
// suitable for bubbling up to the caller.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.slog().Error(msg, append(args, "error", err)...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Er is the statement form of Err for call sites that only log.
func (l Logger) Er(msg string, err error, args ...any) {
	l.slog().Error(msg, append(args, "error", err)...)
}

// Error logs and returns an error built from the message alone.
func (l Logger) Error(msg string, args ...any) error {
	l.slog().Error(msg, args...)
	return fmt.Errorf("%s", msg)
}

// ErMsg is the statement form of Error.
func (l Logger) ErMsg(msg string, args ...any) {
	l.slog().Error(msg, args...)
}

// ErrMsg is an alias kept for older call sites.
func (l Logger) ErrMsg(msg string, args ...any) error {
	return l.Error(msg, args...)
}
