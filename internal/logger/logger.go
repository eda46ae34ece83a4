package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Service string
	Env     string
	Level   string
}

// New builds the process logger and installs it as the slog default.
// The local environment gets a human readable text handler, the others JSON.
func New(opts Options) *slog.Logger {
	return newWithWriter(os.Stdout, opts)
}

func newWithWriter(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var h slog.Handler
	switch opts.Env {
	case "local":
		h = slog.NewTextHandler(w, handlerOpts)
	default:
		h = slog.NewJSONHandler(w, handlerOpts)
	}

	base := slog.New(h).With(
		slog.String("service", opts.Service),
		slog.String("env", opts.Env),
	)

	slog.SetDefault(base)
	return base
}

func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}

func parseLevel(lvl string) slog.Level {
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
