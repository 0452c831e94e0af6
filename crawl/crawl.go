// Package crawl fetches pages and runs the pipeline over them, either for
// a list of URLs or by walking a site from a start page.
package crawl

import (
	"context"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fwojciec/harvest"
	"golang.org/x/sync/errgroup"
)

// Ensure Crawler implements harvest.Harvester at compile time.
var _ harvest.Harvester = (*Crawler)(nil)

// DefaultConcurrency is the number of pages processed at once when
// Crawler.Concurrency is not set.
const DefaultConcurrency = 4

// Crawler fetches, parses and processes pages.
type Crawler struct {
	Fetcher harvest.Fetcher
	Parser  harvest.Parser
	Runner  harvest.Runner

	// Limiter, if set, is waited on before every page fetch.
	Limiter harvest.DomainLimiter

	// Writer, if set, receives every result as soon as it is collected.
	Writer harvest.ResultWriter

	Concurrency int
	RetryDelays []time.Duration

	// MaxPages bounds Walk. Zero means DefaultMaxPages.
	MaxPages int

	// MaxDepth bounds how many links Walk follows from the start page.
	// Zero means no bound.
	MaxDepth int
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Result    *harvest.Result
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Harvest fetches rawURL and runs the pipeline on it. Fetch and parse
// failures are returned as errors.
func (c *Crawler) Harvest(ctx context.Context, rawURL string, cfg harvest.Config) (*harvest.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "invalid URL %q", rawURL)
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetryDelays(ctx, rawURL, c.Fetcher.Fetch, delays)
	if err != nil {
		return nil, err
	}

	page, err := c.Parser.Parse(html, rawURL)
	if err != nil {
		return nil, err
	}

	return c.Runner.Run(ctx, &harvest.PageContext{Page: page, URL: rawURL, Query: cfg.Query}, cfg)
}

// process is Harvest with failures folded into an unsuccessful result.
func (c *Crawler) process(ctx context.Context, rawURL string, cfg harvest.Config) (*harvest.Result, error) {
	result, err := c.Harvest(ctx, rawURL, cfg)
	if err != nil {
		failed := harvest.NewResult(rawURL)
		failed.ErrorMessage = harvest.ErrorMessage(err)
		return failed, err
	}
	return result, nil
}

// pageResult holds the outcome of processing a single URL.
type pageResult struct {
	position int
	result   *harvest.Result
	err      error
}

// Run processes urls concurrently and returns their results in input
// order. A URL that fails yields an unsuccessful result in its slot and
// never affects the others. Only an invalid cfg is returned as an error.
func (c *Crawler) Run(ctx context.Context, urls []string, cfg harvest.Config, progress ProgressFunc) ([]*harvest.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	resultCh := make(chan pageResult, len(urls))

	var completed atomic.Int64
	total := len(urls)

	if progress != nil {
		progress(ProgressEvent{
			Type:  ProgressStarted,
			Total: total,
		})
	}

	var g errgroup.Group
	g.SetLimit(c.concurrency())

	go func() {
		for i, u := range urls {
			g.Go(func() error {
				result, err := c.process(ctx, u, cfg)
				resultCh <- pageResult{position: i, result: result, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Collect results in order
	results := make([]*harvest.Result, len(urls))
	for r := range resultCh {
		completed.Add(1)
		results[r.position] = r.result
		c.report(ctx, r.result, r.err, int(completed.Load()), total, progress)
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: total,
			Total:     total,
		})
	}

	return results, nil
}

// report writes a collected result and emits its progress event.
func (c *Crawler) report(ctx context.Context, result *harvest.Result, err error, completed, total int, progress ProgressFunc) {
	if c.Writer != nil && err == nil {
		err = c.Writer.WriteResult(ctx, result)
	}
	if progress == nil {
		return
	}
	event := ProgressEvent{
		Type:      ProgressCompleted,
		Completed: completed,
		Total:     total,
		URL:       result.URL,
		Result:    result,
	}
	if err != nil || !result.Success {
		event.Type = ProgressFailed
		event.Error = err
		if event.Error == nil {
			event.Error = harvest.Errorf(harvest.EINVALID, "%s", result.ErrorMessage)
		}
	}
	progress(event)
}

func (c *Crawler) concurrency() int {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.Concurrency
}
