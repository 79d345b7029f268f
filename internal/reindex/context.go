package reindex

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/reindexer/pkg/logger"
)

type runIDKey struct{}

// WithRunID stores the run id in ctx.
func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the id of the run ctx belongs to.
func RunIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(runIDKey{}).(uuid.UUID)
	return id, ok
}

// RunIDExtractor adds run_id to every record logged within a run.
func RunIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := RunIDFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return logger.RunID(id), true
}
