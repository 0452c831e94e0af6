package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingBackend implements harvest.Backend.
var _ harvest.Backend = (*LoggingBackend)(nil)

// LoggingBackend wraps a Backend with logging of every extraction call.
type LoggingBackend struct {
	next   harvest.Backend
	logger *slog.Logger
}

// NewLoggingBackend creates a new LoggingBackend.
func NewLoggingBackend(next harvest.Backend, logger *slog.Logger) *LoggingBackend {
	return &LoggingBackend{next: next, logger: logger}
}

// Extract delegates to the wrapped backend and logs the outcome.
func (b *LoggingBackend) Extract(ctx context.Context, text string, schema *harvest.Schema, instruction string) (records []harvest.Record, err error) {
	defer func(begin time.Time) {
		schemaName := "(none)"
		if schema != nil {
			schemaName = schema.Name
		}
		b.logger.Info("extract",
			"schema", schemaName,
			"chars", len(text),
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.Extract(ctx, text, schema, instruction)
}

// Ensure LoggingResultWriter implements harvest.ResultWriter.
var _ harvest.ResultWriter = (*LoggingResultWriter)(nil)

// LoggingResultWriter wraps a ResultWriter with logging.
type LoggingResultWriter struct {
	next   harvest.ResultWriter
	logger *slog.Logger
}

// NewLoggingResultWriter creates a new LoggingResultWriter.
func NewLoggingResultWriter(next harvest.ResultWriter, logger *slog.Logger) *LoggingResultWriter {
	return &LoggingResultWriter{next: next, logger: logger}
}

// WriteResult delegates to the wrapped writer and logs the result summary.
func (w *LoggingResultWriter) WriteResult(ctx context.Context, result *harvest.Result) (err error) {
	defer func(begin time.Time) {
		w.logger.Info("write result",
			"url", result.URL,
			"success", result.Success,
			"links", len(result.Links.Internal)+len(result.Links.External),
			"tables", len(result.Tables),
			"records", len(result.ExtractedContent),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteResult(ctx, result)
}
