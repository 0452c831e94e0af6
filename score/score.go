// Package score holds the scoring functions and their weights. All functions
// are pure and deterministic so rankings are reproducible for identical input.
package score

import (
	"net/url"
	"strings"

	"github.com/fwojciec/harvest"
)

// Intrinsic link score weights.
const (
	AnchorWordWeight   = 0.5
	MaxAnchorWords     = 8
	AnchorLengthWeight = 1.0
	MaxAnchorChars     = 60
	GenericTextPenalty = 1.0
	TitleBonus         = 1.0
	CleanPathBonus     = 0.5
	MaxCleanPathDepth  = 4
)

// regionBonus scores the structural position of a link.
// Navigation and footer links are boilerplate more often than content links.
var regionBonus = map[harvest.Region]float64{
	harvest.RegionContent: 2.0,
	harvest.RegionAside:   1.0,
	harvest.RegionHeader:  0.5,
	harvest.RegionNav:     0.5,
	harvest.RegionFooter:  0,
}

var genericAnchorTexts = map[string]bool{
	"click here": true,
	"read more":  true,
	"here":       true,
	"more":       true,
	"link":       true,
	"this":       true,
}

// Intrinsic scores a link from its own attributes and position.
// The result is never negative.
func Intrinsic(c harvest.LinkCandidate) float64 {
	var s float64

	text := strings.TrimSpace(c.Text)
	words := len(strings.Fields(text))
	s += float64(min(words, MaxAnchorWords)) * AnchorWordWeight
	s += float64(min(len([]rune(text)), MaxAnchorChars)) / MaxAnchorChars * AnchorLengthWeight
	if genericAnchorTexts[strings.ToLower(text)] {
		s -= GenericTextPenalty
	}

	title := strings.TrimSpace(c.Title)
	if title != "" && !strings.EqualFold(title, text) {
		s += TitleBonus
	}

	region := c.Region
	if region == "" {
		region = harvest.RegionContent
	}
	s += regionBonus[region]

	if isCleanPath(c.Href) {
		s += CleanPathBonus
	}

	return max(s, 0)
}

// isCleanPath reports whether the URL has no query and a short, non-root path.
func isCleanPath(href string) bool {
	u, err := url.Parse(href)
	if err != nil || u.RawQuery != "" {
		return false
	}
	segments := 0
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments++
		}
	}
	return segments >= 1 && segments <= MaxCleanPathDepth
}
