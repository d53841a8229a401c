// Package logx configures structured logging and carries the logger in a context.
package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls the process logger.
type Config struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty" long:"level" description:"log level" env:"TASKS_LOG_LEVEL"`
	Format string `yaml:"format,omitempty" json:"format,omitempty" long:"format" description:"log format" choice:"text" choice:"json" env:"TASKS_LOG_FORMAT"`
	// Source adds the source position to every record.
	Source bool `yaml:"source,omitempty" json:"source,omitempty"`
}

// New returns a logger writing to stderr.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter returns a logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Source,
		Level:     ParseLevel(cfg.Level),
	}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the context logger, or fallback when none is set. A nil
// fallback means slog.Default.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}

// WithRequestID attaches a request id to the context logger.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return WithContext(ctx, FromContext(ctx, nil).With("req_id", reqID))
}

type requestKey struct{}

// WithRequest attaches the request method and URL to the context logger.
func WithRequest(ctx context.Context, fallback *slog.Logger, method, URL string) context.Context {
	ctx = WithContext(ctx, FromContext(ctx, fallback).With("method", method, "url", URL))
	return context.WithValue(ctx, requestKey{}, true)
}

// RequestLogger returns the context logger carrying the request method and URL;
// they are added only when WithRequest has not attached them already.
func RequestLogger(ctx context.Context, fallback *slog.Logger, method, URL string) *slog.Logger {
	logger := FromContext(ctx, fallback)
	if attached, _ := ctx.Value(requestKey{}).(bool); attached {
		return logger
	}
	return logger.With("method", method, "url", URL)
}
