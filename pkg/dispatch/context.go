package dispatch

import (
	"context"
	"log/slog"
)

type batchIDKey struct{}

// ContextWithBatchID tags ctx with a batch identifier. SendAll does this
// automatically; every log record emitted during the batch carries the ID
// when the logger is built with BatchIDExtractor.
func ContextWithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDKey{}, id)
}

// BatchIDFromContext returns the batch identifier, if any.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(batchIDKey{}).(string)
	return id, ok && id != ""
}

// BatchIDExtractor is a logger.ContextExtractor that surfaces the batch ID
// on log records.
func BatchIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := BatchIDFromContext(ctx); ok {
		return slog.String("batch_id", id), true
	}
	return slog.Attr{}, false
}
