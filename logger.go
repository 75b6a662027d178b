package kdego

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with kdego-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithMode adds a traversal mode field to the logger.
func (l *Logger) WithMode(mode Mode) *Logger {
	return &Logger{
		Logger: l.Logger.With("mode", mode.String()),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogBuild logs a reference tree build.
func (l *Logger) LogBuild(ctx context.Context, tree TreeType, points, leafSize int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "tree build failed",
			"tree", tree.String(),
			"points", points,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "tree built",
			"tree", tree.String(),
			"points", points,
			"leaf_size", leafSize,
			"duration", duration,
		)
	}
}

// LogEvaluate logs an evaluation.
func (l *Logger) LogEvaluate(ctx context.Context, queries int, stats EvaluateStats, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluate failed",
			"queries", queries,
			"error", err,
		)
		return
	}
	if stats.Approximated > 0 {
		l.DebugContext(ctx, "evaluate completed",
			"queries", queries,
			"base_cases", stats.BaseCases,
			"prunes", stats.Prunes,
			"monte_carlo", stats.MonteCarloEstimates,
			"approximated", stats.Approximated,
			"duration", duration,
		)
	} else {
		l.DebugContext(ctx, "evaluate completed exactly",
			"queries", queries,
			"base_cases", stats.BaseCases,
			"duration", duration,
		)
	}
}

// LogPersist logs a save or load of a result or dataset.
func (l *Logger) LogPersist(ctx context.Context, op, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "persist failed",
			"op", op,
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "persist completed",
			"op", op,
			"name", name,
			"bytes", bytes,
		)
	}
}
