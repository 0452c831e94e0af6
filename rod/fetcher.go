// Package rod fetches JavaScript-rendered pages with a headless Chrome
// browser driven by go-rod.
package rod

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 30 * time.Second

// serializeJS returns the document HTML with the content of open shadow
// roots copied into their hosts, so links inside web components reach the
// parser.
const serializeJS = `() => {
	const inline = (root) => {
		for (const el of root.querySelectorAll('*')) {
			if (!el.shadowRoot) continue;
			inline(el.shadowRoot);
			const copy = document.createElement('div');
			copy.setAttribute('data-shadow-root', '');
			copy.innerHTML = el.shadowRoot.innerHTML;
			el.appendChild(copy);
		}
	};
	inline(document);
	return document.documentElement.outerHTML;
}`

// Ensure Fetcher implements harvest.Fetcher at compile time.
var _ harvest.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	closed  atomic.Bool
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

type fetcherConfig struct {
	timeout time.Duration
	manager []ManagerOption
}

// WithFetchTimeout sets how long a single page may take to render.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithRecycleAfter sets how many pages the browser renders before it is
// replaced by a fresh one.
func WithRecycleAfter(n int64) Option {
	return func(c *fetcherConfig) {
		c.manager = append(c.manager, WithMaxPages(n))
	}
}

// WithBrowser passes options to the browser manager.
func WithBrowser(opts ...ManagerOption) Option {
	return func(c *fetcherConfig) {
		c.manager = append(c.manager, opts...)
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	manager, err := NewBrowserManager(cfg.manager...)
	if err != nil {
		return nil, err
	}
	return &Fetcher{manager: manager, timeout: cfg.timeout}, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", harvest.Errorf(harvest.EINVALID, "fetcher is closed")
	}
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser, release, err := f.manager.Acquire()
	if err != nil {
		return "", err
	}
	defer release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", harvest.Errorf(harvest.EUNAVAILABLE, "open page: %v", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait for %s: %w", url, err)
	}

	res, err := page.Eval(serializeJS)
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", url, err)
	}
	return res.Value.Str(), nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}
