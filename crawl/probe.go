package crawl

import (
	"context"

	"github.com/fwojciec/harvest"
)

// renderedGrowth is how much longer the rendered main content must be
// before a site is treated as needing JavaScript.
const renderedGrowth = 1.5

// ContentDiffers compares the main content of a statically fetched page
// with the same page rendered in a browser. It returns true if the rendered
// content is more than 50% longer, and also when extraction fails.
func ContentDiffers(staticHTML, renderedHTML, pageURL string, extractor harvest.Extractor) bool {
	staticResult, err := extractor.Extract(staticHTML, pageURL)
	if err != nil {
		return true
	}
	renderedResult, err := extractor.Extract(renderedHTML, pageURL)
	if err != nil {
		return true
	}

	staticLen := len(staticResult.ContentHTML)
	renderedLen := len(renderedResult.ContentHTML)
	if staticLen == 0 && renderedLen > 0 {
		return true
	}
	return float64(renderedLen) > float64(staticLen)*renderedGrowth
}

// ChooseFetcher fetches probeURL with both fetchers and returns the one to
// use for the rest of the site. A static fetch failure picks the renderer;
// a renderer failure picks the static fetcher.
func ChooseFetcher(ctx context.Context, probeURL string, static, rendered harvest.Fetcher, extractor harvest.Extractor) harvest.Fetcher {
	staticHTML, err := static.Fetch(ctx, probeURL)
	if err != nil {
		return rendered
	}
	renderedHTML, err := rendered.Fetch(ctx, probeURL)
	if err != nil {
		return static
	}
	if ContentDiffers(staticHTML, renderedHTML, probeURL, extractor) {
		return rendered
	}
	return static
}
