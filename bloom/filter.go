// Package bloom tracks visited URLs with a Bloom filter.
package bloom

import (
	"net/url"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter remembers URLs in canonical form. False positives are possible,
// so a URL may occasionally be reported as seen when it was not.
// Filter is not safe for concurrent use.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected URLs
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Visit marks url as seen and reports whether it was new.
func (f *Filter) Visit(url string) bool {
	return !f.f.TestAndAddString(Canonical(url))
}

// Seen reports whether url might have been visited.
func (f *Filter) Seen(url string) bool {
	return f.f.TestString(Canonical(url))
}

// EstimatedCount returns the approximate number of URLs in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Canonical returns the form under which url is remembered: fragment
// removed, scheme and host lowercased, "www." dropped and a trailing slash
// trimmed from the path. Unparseable input is returned unchanged.
func Canonical(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}
