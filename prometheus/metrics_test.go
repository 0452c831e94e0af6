package prometheus_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/mock"
	harvestprom "github.com/fwojciec/harvest/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrape returns the text exposition of m.
func scrape(t *testing.T, m *harvestprom.Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_ObserveResult(t *testing.T) {
	t.Parallel()

	m := harvestprom.NewMetrics()
	result := harvest.NewResult("https://example.com/")
	result.Success = true
	result.Stats = harvest.Stats{Candidates: 12, FetchFailures: 2, SkippedBlocks: 1, Chunks: 3, ExtractionFailures: 1, Tokens: 900}
	result.ExtractedContent = []harvest.Record{{"a": 1}, {"a": 2}}

	m.ObserveResult(result)
	m.ObserveResult(harvest.NewResult("https://example.com/broken"))

	body := scrape(t, m)
	assert.Contains(t, body, `harvest_pages_total{outcome="success"} 1`)
	assert.Contains(t, body, `harvest_pages_total{outcome="failed"} 1`)
	assert.Contains(t, body, "harvest_link_candidates_total 12")
	assert.Contains(t, body, "harvest_fetch_failures_total 2")
	assert.Contains(t, body, "harvest_skipped_blocks_total 1")
	assert.Contains(t, body, "harvest_chunks_total 3")
	assert.Contains(t, body, "harvest_extraction_failures_total 1")
	assert.Contains(t, body, "harvest_tokens_total 900")
	assert.Contains(t, body, "harvest_records_total 2")
	assert.Contains(t, body, "go_goroutines")
}

func TestHeadFetcher(t *testing.T) {
	t.Parallel()

	m := harvestprom.NewMetrics()
	inner := &mock.HeadFetcher{
		FetchHeadFn: func(ctx context.Context, url string) (*harvest.HeadData, error) {
			if url == "https://example.com/slow" {
				return nil, context.DeadlineExceeded
			}
			return &harvest.HeadData{Title: "ok"}, nil
		},
	}
	f := harvestprom.NewHeadFetcher(inner, m)

	head, err := f.FetchHead(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "ok", head.Title)
	_, err = f.FetchHead(context.Background(), "https://example.com/slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	body := scrape(t, m)
	assert.Contains(t, body, `harvest_head_fetch_duration_seconds_count{outcome="success"} 1`)
	assert.Contains(t, body, `harvest_head_fetch_duration_seconds_count{outcome="failed"} 1`)
}

func TestBackend(t *testing.T) {
	t.Parallel()

	m := harvestprom.NewMetrics()
	inner := &mock.Backend{
		ExtractFn: func(ctx context.Context, text string, schema *harvest.Schema, instruction string) ([]harvest.Record, error) {
			return []harvest.Record{{"content": text}}, nil
		},
	}

	records, err := harvestprom.NewBackend(inner, m).Extract(context.Background(), "hi", nil, "")

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Contains(t, scrape(t, m), `harvest_extract_duration_seconds_count{outcome="success"} 1`)
}

func TestHarvester(t *testing.T) {
	t.Parallel()

	m := harvestprom.NewMetrics()
	inner := &mock.Harvester{
		HarvestFn: func(ctx context.Context, url string, cfg harvest.Config) (*harvest.Result, error) {
			if url == "https://example.com/missing" {
				return nil, harvest.Errorf(harvest.ENOTFOUND, "HTTP 404")
			}
			r := harvest.NewResult(url)
			r.Success = true
			return r, nil
		},
	}
	h := harvestprom.NewHarvester(inner, m)

	_, err := h.Harvest(context.Background(), "https://example.com/", harvest.DefaultConfig())
	require.NoError(t, err)
	_, err = h.Harvest(context.Background(), "https://example.com/missing", harvest.DefaultConfig())
	assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))

	body := scrape(t, m)
	assert.Contains(t, body, `harvest_pages_total{outcome="success"} 1`)
	assert.Contains(t, body, `harvest_pages_total{outcome="failed"} 1`)
}

func TestResultWriter(t *testing.T) {
	t.Parallel()

	t.Run("observes and delegates", func(t *testing.T) {
		t.Parallel()

		m := harvestprom.NewMetrics()
		inner := &mock.ResultWriter{
			WriteResultFn: func(ctx context.Context, r *harvest.Result) error {
				return errors.New("disk full")
			},
		}

		err := harvestprom.NewResultWriter(inner, m).WriteResult(context.Background(), harvest.NewResult("https://example.com/"))

		assert.EqualError(t, err, "disk full")
		assert.Contains(t, scrape(t, m), `harvest_pages_total{outcome="failed"} 1`)
	})

	t.Run("nil next only observes", func(t *testing.T) {
		t.Parallel()

		m := harvestprom.NewMetrics()

		err := harvestprom.NewResultWriter(nil, m).WriteResult(context.Background(), harvest.NewResult("https://example.com/"))

		require.NoError(t, err)
	})
}
