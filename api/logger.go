package api

import (
	"io"
	"log/slog"

	"github.com/go-chi/httplog/v3"
)

// NewLogger returns a JSON slog logger whose attributes follow the ECS schema
// used by the request logger.
func NewLogger(w io.Writer, level slog.Level, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "settlement-engine"),
		slog.String("env", env),
	)
}
