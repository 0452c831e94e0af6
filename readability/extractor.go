package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements harvest.Extractor at compile time.
var _ harvest.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. pageURL is used
// to resolve relative links inside the content and may be empty.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*harvest.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "empty HTML input")
	}

	var base *url.URL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		base = u
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "no readable content: %v", err)
	}

	return &harvest.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
