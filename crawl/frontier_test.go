package crawl_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/harvest/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("pops highest score first", func(t *testing.T) {
		t.Parallel()

		f := crawl.NewFrontier(100, 0.01)
		f.Push(crawl.Target{URL: "https://example.com/low", Score: 1})
		f.Push(crawl.Target{URL: "https://example.com/high", Score: 5})
		f.Push(crawl.Target{URL: "https://example.com/mid", Score: 3})

		var got []string
		for {
			tg, ok := f.Pop()
			if !ok {
				break
			}
			got = append(got, tg.URL)
		}

		assert.Equal(t, []string{
			"https://example.com/high",
			"https://example.com/mid",
			"https://example.com/low",
		}, got)
	})

	t.Run("breaks ties by depth then push order", func(t *testing.T) {
		t.Parallel()

		f := crawl.NewFrontier(100, 0.01)
		f.Push(crawl.Target{URL: "https://example.com/deep", Score: 2, Depth: 3})
		f.Push(crawl.Target{URL: "https://example.com/first", Score: 2, Depth: 1})
		f.Push(crawl.Target{URL: "https://example.com/second", Score: 2, Depth: 1})

		first, _ := f.Pop()
		second, _ := f.Pop()
		third, _ := f.Pop()

		assert.Equal(t, "https://example.com/first", first.URL)
		assert.Equal(t, "https://example.com/second", second.URL)
		assert.Equal(t, "https://example.com/deep", third.URL)
	})

	t.Run("rejects seen URLs", func(t *testing.T) {
		t.Parallel()

		f := crawl.NewFrontier(100, 0.01)

		assert.True(t, f.Push(crawl.Target{URL: "https://example.com/guide"}))
		assert.False(t, f.Push(crawl.Target{URL: "https://example.com/guide#setup"}))
		assert.False(t, f.Push(crawl.Target{URL: "https://example.com/guide/"}))
		assert.Equal(t, 1, f.Len())

		_, ok := f.Pop()
		require.True(t, ok)
		assert.True(t, f.Seen("https://example.com/guide"), "popped URLs stay seen")
		assert.False(t, f.Push(crawl.Target{URL: "https://example.com/guide"}))
	})

	t.Run("pop on empty frontier", func(t *testing.T) {
		t.Parallel()

		_, ok := crawl.NewFrontier(10, 0.01).Pop()

		assert.False(t, ok)
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		f := crawl.NewFrontier(1000, 0.01)
		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range 10 {
					f.Push(crawl.Target{URL: fmt.Sprintf("https://example.com/%d/%d", i, j)})
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, f.Len())
	})
}
