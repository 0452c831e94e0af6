package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/harvest"
)

// Frontier configuration for walks.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
)

// DefaultMaxPages bounds a walk when Crawler.MaxPages is not set.
const DefaultMaxPages = 100

// walkResult holds the outcome of visiting one target.
type walkResult struct {
	target Target
	result *harvest.Result
	err    error
}

// scope limits a walk to one host and the directory of the start page.
type scope struct {
	host   string
	prefix string
}

func newScope(start *url.URL) scope {
	prefix := start.Path
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix[:strings.LastIndex(prefix, "/")+1]
	}
	return scope{host: harvest.NormalizeHost(start.Hostname()), prefix: prefix}
}

func (s scope) contains(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return harvest.NormalizeHost(u.Hostname()) == s.host && strings.HasPrefix(u.Path, s.prefix)
}

// Walk processes startURL and then follows its internal links, staying on
// the same host under the start page's directory. The best-scored links
// are visited first and no URL is visited twice. Results are returned in
// the order pages completed. Only an invalid cfg or start URL is returned
// as an error, besides cancellation of ctx.
func (c *Crawler) Walk(ctx context.Context, startURL string, cfg harvest.Config, progress ProgressFunc) ([]*harvest.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "invalid start URL %q", startURL)
	}
	sc := newScope(start)

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(Target{URL: startURL})

	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	concurrency := c.concurrency()

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: maxPages})
	}

	// Channels for worker coordination
	workCh := make(chan Target, concurrency)
	resultCh := make(chan walkResult)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range workCh {
				result, err := c.process(ctx, t.URL, cfg)
				select {
				case resultCh <- walkResult{target: t, result: result, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Close result channel when all workers are done
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var results []*harvest.Result
	handle := func(r walkResult, follow bool) {
		results = append(results, r.result)
		c.report(ctx, r.result, r.err, len(results), maxPages, progress)
		if !follow || (c.MaxDepth > 0 && r.target.Depth >= c.MaxDepth) {
			return
		}
		for _, l := range r.result.Links.Internal {
			if sc.contains(l.Href) {
				frontier.Push(Target{URL: l.Href, Score: l.TotalScore, Depth: r.target.Depth + 1})
			}
		}
	}

	// Coordinator loop
	dispatched := 0
	pending := 0
	var next *Target
	pop := func() {
		if next == nil && dispatched < maxPages {
			if t, ok := frontier.Pop(); ok {
				next = &t
			}
		}
	}
	pop()

loop:
	for next != nil || pending > 0 {
		if next != nil {
			select {
			case <-ctx.Done():
				break loop
			case workCh <- *next:
				dispatched++
				pending++
				next = nil
			case r := <-resultCh:
				pending--
				handle(r, true)
			}
		} else {
			select {
			case <-ctx.Done():
				break loop
			case r := <-resultCh:
				pending--
				handle(r, true)
			}
		}
		pop()
	}

	// Signal workers to stop and collect what is still in flight
	close(workCh)
	for r := range resultCh {
		handle(r, false)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: len(results), Total: len(results)})
	}
	return results, ctx.Err()
}
