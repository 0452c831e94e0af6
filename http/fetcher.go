// Package http implements page and head retrieval over plain HTTP and
// serves the pipeline as an HTTP API.
package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
	"golang.org/x/net/html/charset"
)

// Fetch defaults.
const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultMaxHeadBytes = 64 << 10
	DefaultUserAgent    = "harvest/1.0 (+https://github.com/fwojciec/harvest)"
)

// Ensure Fetcher implements harvest.Fetcher at compile time.
var _ harvest.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// It does not execute JavaScript; use rod.Fetcher for rendered pages.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxBytes  int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBytes caps how much of a response body is read.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL, decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.get(ctx, url, f.maxBytes)
}

// Close releases resources. The underlying http.Client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}

func (f *Fetcher) get(ctx context.Context, url string, limit int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", harvest.Errorf(harvest.EINVALID, "invalid request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", harvest.Errorf(harvest.EUNAVAILABLE, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode, url); err != nil {
		return "", err
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, limit), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", harvest.Errorf(harvest.EINVALID, "decode %s: %v", url, err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", harvest.Errorf(harvest.EUNAVAILABLE, "read %s: %v", url, err)
	}
	return string(data), nil
}

// statusError maps a non-200 status to an error code.
func statusError(status int, url string) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return harvest.Errorf(harvest.ENOTFOUND, "HTTP %d for %s", status, url)
	case status == http.StatusTooManyRequests || status >= 500:
		return harvest.Errorf(harvest.EUNAVAILABLE, "HTTP %d for %s", status, url)
	default:
		return harvest.Errorf(harvest.EINVALID, "HTTP %d for %s", status, url)
	}
}

// Ensure HeadFetcher implements harvest.HeadFetcher at compile time.
var _ harvest.HeadFetcher = (*HeadFetcher)(nil)

// HeadFetcher retrieves the title and description of a page. Only the
// start of the body is read since head metadata precedes the content.
type HeadFetcher struct {
	fetcher *Fetcher
}

// NewHeadFetcher creates a HeadFetcher. Options apply to the underlying
// Fetcher; the body limit defaults to DefaultMaxHeadBytes.
func NewHeadFetcher(opts ...Option) *HeadFetcher {
	opts = append([]Option{WithMaxBytes(DefaultMaxHeadBytes)}, opts...)
	return &HeadFetcher{fetcher: NewFetcher(opts...)}
}

// FetchHead retrieves head metadata for url. Open Graph values are used
// when the standard title or description is missing.
func (h *HeadFetcher) FetchHead(ctx context.Context, url string) (*harvest.HeadData, error) {
	html, err := h.fetcher.get(ctx, url, h.fetcher.maxBytes)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "failed to parse head of %s: %v", url, err)
	}

	head := &harvest.HeadData{
		Title:       cleanText(doc.Find("head title").First().Text()),
		Description: metaContent(doc, `meta[name="description"]`),
	}
	if head.Title == "" {
		head.Title = metaContent(doc, `meta[property="og:title"]`)
	}
	if head.Description == "" {
		head.Description = metaContent(doc, `meta[property="og:description"]`)
	}
	return head, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return cleanText(content)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
