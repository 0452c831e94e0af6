// Package prometheus exposes pipeline counters and call latencies as
// Prometheus metrics.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "harvest"

// Metrics holds the collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	pages              *prometheus.CounterVec
	candidates         prometheus.Counter
	fetchFailures      prometheus.Counter
	skippedBlocks      prometheus.Counter
	chunks             prometheus.Counter
	extractionFailures prometheus.Counter
	tokens             prometheus.Counter
	records            prometheus.Counter

	headDuration    *prometheus.HistogramVec
	extractDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors, along with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages processed, by outcome.",
		}, []string{"outcome"}),
		candidates:         counter("link_candidates_total", "Link candidates considered for scoring."),
		fetchFailures:      counter("fetch_failures_total", "Link head fetches that failed or timed out."),
		skippedBlocks:      counter("skipped_blocks_total", "Malformed link or table blocks skipped."),
		chunks:             counter("chunks_total", "Text chunks planned."),
		extractionFailures: counter("extraction_failures_total", "Chunks whose extraction failed."),
		tokens:             counter("tokens_total", "Tokens sent to the extraction backend."),
		records:            counter("records_total", "Records extracted after merge."),
		headDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "head_fetch_duration_seconds",
			Help:      "Duration of link head fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		extractDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_duration_seconds",
			Help:      "Duration of extraction backend calls.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.pages, m.candidates, m.fetchFailures, m.skippedBlocks, m.chunks,
		m.extractionFailures, m.tokens, m.records, m.headDuration, m.extractDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResult adds a result's counters to the totals.
func (m *Metrics) ObserveResult(result *harvest.Result) {
	m.pages.WithLabelValues(outcome(result.Success)).Inc()
	m.candidates.Add(float64(result.Stats.Candidates))
	m.fetchFailures.Add(float64(result.Stats.FetchFailures))
	m.skippedBlocks.Add(float64(result.Stats.SkippedBlocks))
	m.chunks.Add(float64(result.Stats.Chunks))
	m.extractionFailures.Add(float64(result.Stats.ExtractionFailures))
	m.tokens.Add(float64(result.Stats.Tokens))
	m.records.Add(float64(len(result.ExtractedContent)))
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

// Ensure HeadFetcher implements harvest.HeadFetcher.
var _ harvest.HeadFetcher = (*HeadFetcher)(nil)

// HeadFetcher records the latency of every head fetch.
type HeadFetcher struct {
	next    harvest.HeadFetcher
	metrics *Metrics
}

// NewHeadFetcher wraps next.
func NewHeadFetcher(next harvest.HeadFetcher, m *Metrics) *HeadFetcher {
	return &HeadFetcher{next: next, metrics: m}
}

func (f *HeadFetcher) FetchHead(ctx context.Context, url string) (head *harvest.HeadData, err error) {
	defer func(begin time.Time) {
		f.metrics.headDuration.WithLabelValues(outcome(err == nil)).Observe(time.Since(begin).Seconds())
	}(time.Now())
	return f.next.FetchHead(ctx, url)
}

// Ensure Backend implements harvest.Backend.
var _ harvest.Backend = (*Backend)(nil)

// Backend records the latency of every extraction call.
type Backend struct {
	next    harvest.Backend
	metrics *Metrics
}

// NewBackend wraps next.
func NewBackend(next harvest.Backend, m *Metrics) *Backend {
	return &Backend{next: next, metrics: m}
}

func (b *Backend) Extract(ctx context.Context, text string, schema *harvest.Schema, instruction string) (records []harvest.Record, err error) {
	defer func(begin time.Time) {
		b.metrics.extractDuration.WithLabelValues(outcome(err == nil)).Observe(time.Since(begin).Seconds())
	}(time.Now())
	return b.next.Extract(ctx, text, schema, instruction)
}

// Ensure Harvester implements harvest.Harvester.
var _ harvest.Harvester = (*Harvester)(nil)

// Harvester observes every result it returns. A failed harvest counts as
// a failed page.
type Harvester struct {
	next    harvest.Harvester
	metrics *Metrics
}

// NewHarvester wraps next.
func NewHarvester(next harvest.Harvester, m *Metrics) *Harvester {
	return &Harvester{next: next, metrics: m}
}

func (h *Harvester) Harvest(ctx context.Context, url string, cfg harvest.Config) (*harvest.Result, error) {
	result, err := h.next.Harvest(ctx, url, cfg)
	if err != nil {
		h.metrics.pages.WithLabelValues(outcome(false)).Inc()
		return nil, err
	}
	h.metrics.ObserveResult(result)
	return result, nil
}

// Ensure ResultWriter implements harvest.ResultWriter.
var _ harvest.ResultWriter = (*ResultWriter)(nil)

// ResultWriter observes every result before passing it on. A nil next
// only observes.
type ResultWriter struct {
	next    harvest.ResultWriter
	metrics *Metrics
}

// NewResultWriter wraps next.
func NewResultWriter(next harvest.ResultWriter, m *Metrics) *ResultWriter {
	return &ResultWriter{next: next, metrics: m}
}

func (w *ResultWriter) WriteResult(ctx context.Context, result *harvest.Result) error {
	w.metrics.ObserveResult(result)
	if w.next == nil {
		return nil
	}
	return w.next.WriteResult(ctx, result)
}
