// Package logging constructs slog loggers for the file client.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a logger writing to w. In dev mode it emits colorized,
// human-readable lines; otherwise structured JSON.
func New(w io.Writer, dev bool) *slog.Logger {
	if dev {
		return slog.New(tint.NewHandler(w, &tint.Options{
			TimeFormat: time.TimeOnly,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}

// Discard returns a logger that drops every record. The client defaults to
// this so library consumers opt in to logging explicitly.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
