// Package pipeline runs the scored-link, table and extraction stages
// against one parsed page and assembles the result.
package pipeline

import (
	"context"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/chunk"
	"golang.org/x/sync/errgroup"
)

// Ensure Pipeline implements harvest.Runner at compile time.
var _ harvest.Runner = (*Pipeline)(nil)

// Pipeline orchestrates one page run. All dependencies are optional:
// without Heads links rank on intrinsic score, without Backend no
// extraction happens, and without Language the result has no language.
type Pipeline struct {
	Heads        harvest.HeadFetcher
	Limiter      harvest.DomainLimiter
	Backend      harvest.Backend
	TokenCounter harvest.TokenCounter
	Language     harvest.LanguageDetector

	// RetryDelays overrides DefaultRetryDelays for extraction retries.
	RetryDelays []time.Duration
}

// Run processes pc under cfg.
//
// An invalid cfg is the only error returned. A page context that cannot
// be processed yields a result with Success false. Every other failure is
// counted in the result's Stats and the run continues.
func (p *Pipeline) Run(ctx context.Context, pc *harvest.PageContext, cfg harvest.Config) (*harvest.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var pageURL string
	if pc != nil {
		pageURL = pc.URL
	}
	result := harvest.NewResult(pageURL)
	if err := pc.Validate(); err != nil {
		result.ErrorMessage = harvest.ErrorMessage(err)
		return result, nil
	}

	if cfg.Query == "" {
		cfg.Query = pc.Query
	}
	if cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Deadline)
		defer cancel()
	}

	page := pc.Page
	if tags := cfg.RemovedTags(); len(tags) > 0 {
		page = page.Without(tags...)
	}

	// The link and table stages share nothing with the text stage, so the
	// two run side by side and write disjoint parts of the result.
	var g errgroup.Group
	g.Go(func() error {
		p.runLinks(ctx, page, pc.URL, cfg, result)
		return nil
	})
	g.Go(func() error {
		p.runText(ctx, page, cfg, result)
		return nil
	})
	_ = g.Wait()

	result.Success = true
	return result, nil
}

// runLinks fills Links, Tables and their counters.
func (p *Pipeline) runLinks(ctx context.Context, page harvest.Page, pageURL string, cfg harvest.Config, result *harvest.Result) {
	cands, skipped, err := CollectLinks(page, pageURL)
	if err != nil {
		result.Stats.SkippedBlocks++
	}
	result.Stats.SkippedBlocks += skipped

	cands = ExcludeDomains(cands, cfg.ExcludedDomains)
	result.Stats.Candidates = len(cands)

	scorer := &LinkScorer{Heads: p.Heads, Limiter: p.Limiter}
	result.Links, result.Stats.FetchFailures = scorer.Score(ctx, cands, cfg)

	var skippedTables int
	result.Tables, skippedTables = RecognizeTables(page.TableBlocks(), cfg.TableScoreThreshold)
	result.Stats.SkippedBlocks += skippedTables
}

// runText fills Content, Language, ExtractedContent and their counters.
func (p *Pipeline) runText(ctx context.Context, page harvest.Page, cfg harvest.Config, result *harvest.Result) {
	text, err := page.Text()
	if err != nil {
		result.Stats.ExtractionFailures++
		return
	}
	result.Content = text
	if p.Language != nil && text != "" {
		result.Language = p.Language.DetectLanguage(text)
	}

	chunks := chunk.NewPlanner(cfg).Plan(text)
	result.Stats.Chunks = len(chunks)
	if p.Backend == nil || len(chunks) == 0 {
		return
	}

	d := NewDispatcher(p.Backend, cfg)
	if p.RetryDelays != nil {
		d.RetryDelays = p.RetryDelays
	}
	units := d.Dispatch(ctx, chunks, cfg.Schema, cfg.Instruction)
	result.ExtractedContent, result.Stats.ExtractionFailures = Merge(units, cfg.Schema)
	result.Stats.Tokens = p.countTokens(ctx, units)
}

// countTokens sums the tokens of every chunk that reached the backend.
// Counting errors are ignored.
func (p *Pipeline) countTokens(ctx context.Context, units []harvest.ExtractionUnit) int {
	if p.TokenCounter == nil {
		return 0
	}
	var total int
	for _, u := range units {
		if u.Attempts == 0 {
			continue
		}
		n, err := p.TokenCounter.CountTokens(ctx, u.Chunk.Text)
		if err != nil {
			continue
		}
		total += n * u.Attempts
	}
	return total
}
