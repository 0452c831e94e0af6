package pipeline

import (
	"cmp"
	"context"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/score"
	"golang.org/x/sync/errgroup"
)

// CollectLinks resolves the anchors of page against pageURL and returns
// link candidates in document order. Non-HTTP links, self references and
// duplicate targets are dropped. The int result counts anchors whose href
// could not be parsed.
func CollectLinks(page harvest.Page, pageURL string) ([]harvest.LinkCandidate, int, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil, 0, harvest.Errorf(harvest.EINVALID, "invalid base URL %q", pageURL)
	}
	baseDomain := harvest.NormalizeHost(base.Hostname())

	var (
		cands   []harvest.LinkCandidate
		skipped int
		seen    = make(map[string]bool)
	)
	for _, a := range page.Anchors() {
		href := strings.TrimSpace(a.Href)
		if href == "" || isNonHTTPLink(href) {
			continue
		}

		u, err := resolveURL(base, href)
		if err != nil {
			skipped++
			continue
		}
		if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}

		resolved := u.String()
		if seen[resolved] {
			continue
		}
		seen[resolved] = true

		cands = append(cands, harvest.LinkCandidate{
			Href:       resolved,
			Text:       strings.Join(strings.Fields(a.Text), " "),
			Title:      strings.TrimSpace(a.Title),
			BaseDomain: baseDomain,
			Region:     a.Region,
			Position:   len(cands),
			Depth:      a.Depth,
			Internal:   harvest.NormalizeHost(u.Hostname()) == baseDomain,
		})
	}
	return cands, skipped, nil
}

// resolveURL resolves href against base with the fragment stripped.
// Returns a nil URL for self references.
func resolveURL(base *url.URL, href string) (*url.URL, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	self := *base
	self.Fragment = ""
	if resolved.String() == self.String() {
		return nil, nil
	}
	return resolved, nil
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#")
}

// ExcludeDomains drops candidates whose host is one of domains or a subdomain of one.
func ExcludeDomains(cands []harvest.LinkCandidate, domains []string) []harvest.LinkCandidate {
	if len(domains) == 0 {
		return cands
	}
	blocked := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = harvest.NormalizeHost(strings.TrimSpace(d)); d != "" {
			blocked = append(blocked, d)
		}
	}

	out := make([]harvest.LinkCandidate, 0, len(cands))
	for _, c := range cands {
		if !hostBlocked(c.Href, blocked) {
			out = append(out, c)
		}
	}
	return out
}

func hostBlocked(rawURL string, blocked []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := harvest.NormalizeHost(u.Hostname())
	for _, d := range blocked {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// LinkScorer scores and ranks link candidates.
type LinkScorer struct {
	// Heads retrieves head metadata for contextual scoring. When nil, or
	// when no query is configured, links are ranked on intrinsic score only.
	Heads harvest.HeadFetcher

	// Limiter, if set, is waited on before each head fetch. The wait is not
	// part of the per-fetch timeout but is bounded by ctx, and so by the
	// pipeline deadline.
	Limiter harvest.DomainLimiter
}

// headResult holds the outcome of retrieving one candidate's head.
type headResult struct {
	index int
	head  *harvest.HeadData
	err   error
}

// Score ranks cands for cfg and returns them split into internal and
// external lists. The int result counts failed head fetches.
func (s *LinkScorer) Score(ctx context.Context, cands []harvest.LinkCandidate, cfg harvest.Config) (harvest.Links, int) {
	links := harvest.Links{
		Internal: []harvest.ScoredLink{},
		External: []harvest.ScoredLink{},
	}

	kept := make([]harvest.LinkCandidate, 0, len(cands))
	for _, c := range cands {
		if (c.Internal && cfg.IncludeInternal) || (!c.Internal && cfg.IncludeExternal) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return links, 0
	}

	scored := make([]harvest.ScoredLink, len(kept))
	for i, c := range kept {
		scored[i] = harvest.ScoredLink{LinkCandidate: c, IntrinsicScore: score.Intrinsic(c)}
	}

	var failures int
	if cfg.Query != "" && s.Heads != nil {
		var heads []*harvest.HeadData
		heads, failures = s.fetchHeads(ctx, kept, cfg.Concurrency, cfg.Timeout)

		// The corpus is the set of retrieved heads, so IDF reflects this page's links.
		var docs []string
		docIndex := make([]int, len(heads))
		for i, h := range heads {
			docIndex[i] = -1
			if h != nil {
				docIndex[i] = len(docs)
				docs = append(docs, h.Document())
			}
		}
		corpus := score.NewCorpus(docs)
		for i := range scored {
			scored[i].Head = heads[i]
			if docIndex[i] >= 0 {
				scored[i].ContextualScore = corpus.Contextual(cfg.Query, docIndex[i])
			}
		}
	}

	ranked := make([]harvest.ScoredLink, 0, len(scored))
	for _, l := range scored {
		l.TotalScore = l.IntrinsicScore + l.ContextualScore
		if l.TotalScore >= cfg.ScoreThreshold {
			ranked = append(ranked, l)
		}
	}
	slices.SortStableFunc(ranked, func(a, b harvest.ScoredLink) int {
		if c := cmp.Compare(b.TotalScore, a.TotalScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})

	for _, l := range ranked {
		if l.Internal {
			links.Internal = append(links.Internal, l)
		} else {
			links.External = append(links.External, l)
		}
	}
	if cfg.MaxLinks > 0 {
		links.Internal = links.Internal[:min(len(links.Internal), cfg.MaxLinks)]
		links.External = links.External[:min(len(links.External), cfg.MaxLinks)]
	}
	return links, failures
}

// fetchHeads retrieves heads for all candidates with at most concurrency
// fetches in flight. A failed fetch leaves a nil entry and never cancels
// its siblings.
func (s *LinkScorer) fetchHeads(ctx context.Context, cands []harvest.LinkCandidate, concurrency int, timeout time.Duration) ([]*harvest.HeadData, int) {
	resultCh := make(chan headResult, len(cands))

	var g errgroup.Group
	g.SetLimit(max(concurrency, 1))

	go func() {
		for i, c := range cands {
			g.Go(func() error {
				resultCh <- s.fetchHead(ctx, i, c.Href, timeout)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	heads := make([]*harvest.HeadData, len(cands))
	var failures int
	for r := range resultCh {
		if r.err != nil {
			failures++
			continue
		}
		heads[r.index] = r.head
	}
	return heads, failures
}

// fetchHead retrieves one head under its own timeout.
func (s *LinkScorer) fetchHead(ctx context.Context, index int, href string, timeout time.Duration) headResult {
	result := headResult{index: index}

	if s.Limiter != nil {
		if u, err := url.Parse(href); err == nil {
			if err := s.Limiter.Wait(ctx, u.Host); err != nil {
				result.err = err
				return result
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	head, err := s.Heads.FetchHead(ctx, href)
	if err != nil {
		result.err = err
		return result
	}
	if head == nil {
		result.err = harvest.Errorf(harvest.ENOTFOUND, "no head data for %s", href)
		return result
	}
	result.head = head
	return result
}
