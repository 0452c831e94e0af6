package harvest

import "context"

// LinkCandidate is an anchor resolved against the page URL.
type LinkCandidate struct {
	Href       string `json:"href"`
	Text       string `json:"text"`
	Title      string `json:"title"`
	BaseDomain string `json:"baseDomain"`
	Region     Region `json:"region,omitempty"`
	Position   int    `json:"-"` // document order among candidates
	Depth      int    `json:"-"`
	Internal   bool   `json:"-"`
}

// HeadData is the head metadata of a link target.
type HeadData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Document returns the text used for relevance scoring.
func (h *HeadData) Document() string {
	if h == nil {
		return ""
	}
	if h.Description == "" {
		return h.Title
	}
	return h.Title + " " + h.Description
}

// ScoredLink is a link candidate with its scores.
// TotalScore is always finite; ContextualScore is 0 when Head is nil.
type ScoredLink struct {
	LinkCandidate
	IntrinsicScore  float64   `json:"intrinsicScore"`
	ContextualScore float64   `json:"contextualScore"`
	TotalScore      float64   `json:"totalScore"`
	Head            *HeadData `json:"headData,omitempty"`
}

// Links holds the ranked links of a page.
type Links struct {
	Internal []ScoredLink `json:"internal"`
	External []ScoredLink `json:"external"`
}

// HeadFetcher retrieves the head metadata of a URL without rendering the page.
type HeadFetcher interface {
	// FetchHead returns the title and meta description of the URL.
	// The context carries the per-fetch timeout.
	FetchHead(ctx context.Context, url string) (*HeadData, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
