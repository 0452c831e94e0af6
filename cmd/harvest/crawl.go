package main

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
	"github.com/fwojciec/harvest/fs"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	if deps.Writer == nil {
		deps.Writer = newWriter(c.Out)
	}

	crawler := *deps.Crawler
	crawler.Writer = deps.resultWriter(deps.Writer)
	crawler.MaxPages = c.MaxPages
	crawler.MaxDepth = c.MaxDepth
	crawler.Concurrency = c.Concurrency

	var failed int
	progress := func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressFailed:
			failed++
			fmt.Fprintf(deps.Stderr, "skip %s: %s\n", e.URL, harvest.ErrorMessage(e.Error))
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "\r[%d] %s", e.Completed, truncateURL(e.URL, 60))
		}
	}

	results, err := crawler.Walk(deps.Ctx, c.URL, deps.Config, progress)
	// Clear progress line
	fmt.Fprintf(deps.Stdout, "\r%80s\r", "")
	if err != nil {
		_ = deps.Writer.Abort()
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if len(results) == failed {
		_ = deps.Writer.Abort()
		fmt.Fprintln(deps.Stdout, "No pages saved")
		return nil
	}
	if err := deps.Writer.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error committing: %v\n", err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Saved %d pages (%d failed) to %s\n", len(results)-failed, failed, deps.Writer.Dir())
	return nil
}

// newWriter returns a writer whose output directory is out.
func newWriter(out string) *fs.Writer {
	dir, name := filepath.Split(filepath.Clean(out))
	if dir == "" {
		dir = "."
	}
	return fs.NewWriter(dir, name)
}

// truncateURL shortens a URL for display by showing only the path.
// This makes progress more useful when many URLs share the same host prefix.
func truncateURL(rawURL string, maxLen int) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		// Fallback to simple right-truncation
		if len(rawURL) <= maxLen {
			return rawURL
		}
		return rawURL[:maxLen-3] + "..."
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	if len(path) <= maxLen {
		return path
	}

	// Truncate from the left to show the unique suffix
	return "..." + path[len(path)-maxLen+3:]
}
