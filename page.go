package harvest

import (
	"net/url"
	"strings"
)

// Region identifies the structural area of a page an anchor was found in.
type Region string

// Page regions, from least to most content-like.
const (
	RegionFooter  Region = "footer"
	RegionNav     Region = "nav"
	RegionHeader  Region = "header"
	RegionAside   Region = "aside"
	RegionContent Region = "content"
)

// Anchor is a raw <a href> element as found in a parsed page.
type Anchor struct {
	Href   string
	Text   string
	Title  string
	Depth  int // element depth in the DOM tree
	Region Region
}

// TableBlock is a raw table-like block as found in a parsed page.
// Rows hold data rows only; a header row, when detected, lives in Headers.
type TableBlock struct {
	Headers []string
	Rows    [][]string
	Caption string
	Summary string

	// Nested is true when the block contains another table.
	Nested bool

	// Presentational is true for layout tables (role="presentation" or "none").
	Presentational bool
}

// Page is a parsed page. Implementations must be safe for concurrent reads.
type Page interface {
	// Anchors returns all anchors in document order.
	Anchors() []Anchor

	// TableBlocks returns all table-like blocks in document order.
	TableBlocks() []TableBlock

	// Text returns the cleaned textual content of the page.
	Text() (string, error)

	// Without returns a copy of the page with the named elements removed.
	// The receiver is left untouched.
	Without(tags ...string) Page
}

// Parser turns raw HTML into a Page.
type Parser interface {
	Parse(html string, baseURL string) (Page, error)
}

// PageContext is the input of one pipeline run.
// It is immutable for the duration of the run.
type PageContext struct {
	Page  Page
	URL   string
	Query string
}

// Validate returns an error if the page context is malformed.
func (pc *PageContext) Validate() error {
	if pc == nil || pc.Page == nil {
		return Errorf(EINVALID, "page required")
	}
	u, err := url.Parse(pc.URL)
	if err != nil {
		return Errorf(EINVALID, "invalid page URL %q: %v", pc.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Errorf(EINVALID, "page URL %q must be http or https", pc.URL)
	}
	if u.Host == "" {
		return Errorf(EINVALID, "page URL %q has no host", pc.URL)
	}
	return nil
}

// BaseDomain returns the page host without a leading "www.".
// Returns an empty string if the URL cannot be parsed.
func (pc *PageContext) BaseDomain() string {
	u, err := url.Parse(pc.URL)
	if err != nil {
		return ""
	}
	return NormalizeHost(u.Hostname())
}

// NormalizeHost lowercases a host name and strips a leading "www.".
func NormalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
