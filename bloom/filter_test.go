package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/harvest/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Visit(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.Seen("https://example.com/guide"))
	assert.True(t, f.Visit("https://example.com/guide"))
	assert.True(t, f.Seen("https://example.com/guide"))
	assert.False(t, f.Visit("https://example.com/guide"), "second visit is not new")
	assert.False(t, f.Seen("https://example.com/pricing"))
}

func TestFilter_VisitTreatsVariantsAsSame(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	f.Visit("https://example.com/guide")

	for _, variant := range []string{
		"https://example.com/guide#install",
		"https://example.com/guide/",
		"HTTPS://WWW.Example.com/guide",
	} {
		assert.False(t, f.Visit(variant), variant)
	}
	assert.True(t, f.Visit("https://example.com/guide?page=2"), "query strings stay significant")
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	for i := range 100 {
		f.Visit(fmt.Sprintf("https://example.com/page%d", i))
	}

	count := f.EstimatedCount()
	assert.InDelta(t, 100, count, 10)
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/", "https://example.com"},
		{"https://example.com", "https://example.com"},
		{"https://www.example.com/a/b/#top", "https://example.com/a/b"},
		{"HTTP://Example.COM/Path", "http://example.com/Path"},
		{"https://example.com/a?x=1#f", "https://example.com/a?x=1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bloom.Canonical(tt.in), tt.in)
	}
}
