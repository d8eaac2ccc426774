// Package obslog wraps log/slog with a package-level default logger,
// string-parsed level, and an optional file sink alongside stdout. Used by
// pkg/driver to trace candidate/counterexample events and by cmd/modalsynth
// to report run progress.
package obslog

import (
	"io"
	"log/slog"
	"os"
)

// Log is the package-level default logger. Init replaces it; until Init is
// called it defaults to an info-level stdout logger so library code that
// logs before CLI setup still produces output.
var Log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init configures the default logger's level and, if logFile is non-empty,
// adds it as a second sink alongside stdout.
func Init(level string, logFile string) error {
	var writers []io.Writer
	writers = append(writers, os.Stdout)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	Log = slog.New(handler)
	slog.SetDefault(Log)
	return nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs at debug level on the default logger.
func Debug(msg string, args ...any) { Log.Debug(msg, args...) }

// Info logs at info level on the default logger.
func Info(msg string, args ...any) { Log.Info(msg, args...) }

// Warn logs at warn level on the default logger.
func Warn(msg string, args ...any) { Log.Warn(msg, args...) }

// Error logs at error level on the default logger.
func Error(msg string, args ...any) { Log.Error(msg, args...) }
