package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of harvest.Extractor.
type Extractor struct {
	ExtractFn func(html string, pageURL string) (*harvest.ExtractResult, error)
}

func (e *Extractor) Extract(html string, pageURL string) (*harvest.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}

var _ harvest.Converter = (*Converter)(nil)

// Converter is a mock implementation of harvest.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ harvest.ResultWriter = (*ResultWriter)(nil)

// ResultWriter is a mock implementation of harvest.ResultWriter.
type ResultWriter struct {
	WriteResultFn func(ctx context.Context, result *harvest.Result) error
}

func (w *ResultWriter) WriteResult(ctx context.Context, result *harvest.Result) error {
	return w.WriteResultFn(ctx, result)
}

var _ harvest.Harvester = (*Harvester)(nil)

// Harvester is a mock implementation of harvest.Harvester.
type Harvester struct {
	HarvestFn func(ctx context.Context, url string, cfg harvest.Config) (*harvest.Result, error)
}

func (h *Harvester) Harvest(ctx context.Context, url string, cfg harvest.Config) (*harvest.Result, error) {
	return h.HarvestFn(ctx, url, cfg)
}

var _ harvest.Runner = (*Runner)(nil)

// Runner is a mock implementation of harvest.Runner.
type Runner struct {
	RunFn func(ctx context.Context, pc *harvest.PageContext, cfg harvest.Config) (*harvest.Result, error)
}

func (r *Runner) Run(ctx context.Context, pc *harvest.PageContext, cfg harvest.Config) (*harvest.Result, error) {
	return r.RunFn(ctx, pc, cfg)
}
