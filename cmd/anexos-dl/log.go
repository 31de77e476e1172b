package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/perini/anexos-downloader/internal/model"
)

// newLogger returns a text logger. Debug records are kept only when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// progressLogger turns pipeline events into log records.
func progressLogger(logger *slog.Logger) model.ProgressFunc {
	return func(e model.ProgressEvent) {
		var attrs []slog.Attr
		if e.URL != "" {
			attrs = append(attrs, slog.String("url", e.URL))
		}
		if e.Attempt > 0 {
			attrs = append(attrs, slog.Int("attempt", e.Attempt))
		}
		if e.File != "" {
			attrs = append(attrs, slog.String("file", e.File))
		}
		if e.Level == model.LevelSuccess {
			attrs = append(attrs, slog.String("outcome", "success"))
		}
		logger.LogAttrs(context.Background(), slogLevel(e.Level), e.Message, attrs...)
	}
}

func slogLevel(l model.ProgressLevel) slog.Level {
	switch l {
	case model.LevelVerbose:
		return slog.LevelDebug
	case model.LevelWarning:
		return slog.LevelWarn
	case model.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
