package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu  sync.RWMutex
	log *slog.Logger
)

// Init configures the process logger. "development" gets a readable text
// handler at debug level, every other environment gets JSON at info level.
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(env string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)

	mu.Lock()
	log = l
	mu.Unlock()

	slog.SetDefault(l)
}

// Get returns the process logger, initializing a development logger if Init
// was never called.
func Get() *slog.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init("development")
	return Get()
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

// Fatal logs at error level and exits.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

// With returns a logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}
