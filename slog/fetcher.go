// Package slog provides decorators that log calls to harvest services
// using the standard structured logger.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingFetcher implements harvest.Fetcher.
var _ harvest.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   harvest.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next harvest.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingHeadFetcher implements harvest.HeadFetcher.
var _ harvest.HeadFetcher = (*LoggingHeadFetcher)(nil)

// LoggingHeadFetcher wraps a HeadFetcher with debug logging.
// Head fetches are frequent, so they are logged at debug level.
type LoggingHeadFetcher struct {
	next   harvest.HeadFetcher
	logger *slog.Logger
}

// NewLoggingHeadFetcher creates a new LoggingHeadFetcher.
func NewLoggingHeadFetcher(next harvest.HeadFetcher, logger *slog.Logger) *LoggingHeadFetcher {
	return &LoggingHeadFetcher{next: next, logger: logger}
}

// FetchHead delegates to the wrapped head fetcher and logs the outcome.
func (f *LoggingHeadFetcher) FetchHead(ctx context.Context, url string) (head *harvest.HeadData, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch head",
			"url", url,
			"title", head.Document() != "",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchHead(ctx, url)
}
