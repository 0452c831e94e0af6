package score_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/score"
	"github.com/stretchr/testify/assert"
)

func TestIntrinsic(t *testing.T) {
	t.Parallel()

	t.Run("ranks richer anchor text higher", func(t *testing.T) {
		t.Parallel()

		home := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/home", Text: "Home"})
		api := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/api", Text: "API documentation for developers"})
		x := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/x", Text: "X"})

		assert.Greater(t, api, home)
		assert.Greater(t, home, x)
	})

	t.Run("content links outrank footer links", func(t *testing.T) {
		t.Parallel()

		content := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/a", Text: "Pricing", Region: harvest.RegionContent})
		footer := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/a", Text: "Pricing", Region: harvest.RegionFooter})

		assert.InDelta(t, 2.0, content-footer, 1e-9)
	})

	t.Run("title attribute adds a bonus unless it repeats the text", func(t *testing.T) {
		t.Parallel()

		plain := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/a", Text: "Guide"})
		titled := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/a", Text: "Guide", Title: "Getting started guide"})
		repeated := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/a", Text: "Guide", Title: "guide"})

		assert.InDelta(t, score.TitleBonus, titled-plain, 1e-9)
		assert.InDelta(t, plain, repeated, 1e-9)
	})

	t.Run("generic text is penalized but never negative", func(t *testing.T) {
		t.Parallel()

		s := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/?id=1", Text: "here", Region: harvest.RegionFooter})

		assert.GreaterOrEqual(t, s, 0.0)
	})

	t.Run("query strings lose the clean path bonus", func(t *testing.T) {
		t.Parallel()

		clean := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/docs", Text: "Docs"})
		query := score.Intrinsic(harvest.LinkCandidate{Href: "https://example.com/docs?page=2", Text: "Docs"})

		assert.InDelta(t, score.CleanPathBonus, clean-query, 1e-9)
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		c := harvest.LinkCandidate{Href: "https://example.com/a/b", Text: "Release notes", Title: "Notes", Region: harvest.RegionAside}

		assert.Equal(t, score.Intrinsic(c), score.Intrinsic(c))
	})
}

func TestCorpus_BM25(t *testing.T) {
	t.Parallel()

	corpus := score.NewCorpus([]string{
		"Go concurrency patterns: pipelines and cancellation",
		"Baking sourdough bread at home",
		"",
	})

	t.Run("matching document scores above zero", func(t *testing.T) {
		t.Parallel()

		assert.Greater(t, corpus.BM25("go pipelines", 0), 0.0)
	})

	t.Run("unrelated document scores zero", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, corpus.BM25("go pipelines", 1))
	})

	t.Run("empty document scores zero", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, corpus.BM25("go", 2))
	})

	t.Run("out of range index scores zero", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, corpus.BM25("go", 7))
	})

	t.Run("repeated query terms count once", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, corpus.BM25("go", 0), corpus.BM25("go go go", 0), 1e-12)
	})

	t.Run("contextual score is bounded", func(t *testing.T) {
		t.Parallel()

		s := corpus.Contextual("go concurrency pipelines cancellation patterns", 0)

		assert.Greater(t, s, 0.0)
		assert.Less(t, s, score.ContextualWeight)
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Zero(t, score.Normalize(0))
	assert.Zero(t, score.Normalize(-1))
	assert.InDelta(t, score.ContextualWeight/2, score.Normalize(score.ContextualSaturation), 1e-12)
}

func TestTerms(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"api", "v2", "docs"}, score.Terms("API-v2: Docs!"))
}

func TestTable(t *testing.T) {
	t.Parallel()

	rows := func(n, width int) [][]string {
		out := make([][]string, n)
		for i := range out {
			out[i] = make([]string, width)
		}
		return out
	}

	t.Run("header with five consistent rows clears the default threshold", func(t *testing.T) {
		t.Parallel()

		b := harvest.TableBlock{Headers: []string{"a", "b", "c"}, Rows: rows(5, 3)}

		assert.GreaterOrEqual(t, score.Table(b), 7)
	})

	t.Run("header with a single row does not", func(t *testing.T) {
		t.Parallel()

		b := harvest.TableBlock{Headers: []string{"a", "b", "c"}, Rows: rows(1, 3)}

		assert.Less(t, score.Table(b), 7)
	})

	t.Run("irregular rows are penalized", func(t *testing.T) {
		t.Parallel()

		regular := harvest.TableBlock{Headers: []string{"a", "b"}, Rows: rows(4, 2)}
		irregular := harvest.TableBlock{Headers: []string{"a", "b"}, Rows: append(rows(3, 2), []string{"x"})}

		assert.Equal(t, score.ConsistentColumnsBonus+score.IrregularRowPenalty, score.Table(regular)-score.Table(irregular))
	})

	t.Run("caption adds a bonus", func(t *testing.T) {
		t.Parallel()

		plain := harvest.TableBlock{Rows: rows(3, 2)}
		captioned := harvest.TableBlock{Rows: rows(3, 2), Caption: "Prices"}

		assert.Equal(t, score.CaptionBonus, score.Table(captioned)-score.Table(plain))
	})

	t.Run("layout tables are penalized", func(t *testing.T) {
		t.Parallel()

		data := harvest.TableBlock{Rows: rows(3, 2)}
		layout := harvest.TableBlock{Rows: rows(3, 2), Presentational: true, Nested: true}

		assert.Equal(t, score.NestedTablePenalty+score.PresentationPenalty, score.Table(data)-score.Table(layout))
	})
}

func TestExpectedColumns(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, score.ExpectedColumns(harvest.TableBlock{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2", "3"}}}))
	assert.Equal(t, 3, score.ExpectedColumns(harvest.TableBlock{Rows: [][]string{{"1", "2", "3"}, {"1"}, {"1", "2", "3"}}}))
	assert.Equal(t, 0, score.ExpectedColumns(harvest.TableBlock{}))
}
