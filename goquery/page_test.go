package goquery_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/goquery"
	"github.com/fwojciec/harvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storePage = `<!DOCTYPE html>
<html>
<head><title>Store</title><script>var tracking = 1;</script></head>
<body>
<header><a href="/">Logo</a></header>
<nav><ul><li><a href="/products">Products</a></li></ul></nav>
<main>
  <h1>Winter sale</h1>
  <p>Up to   half off on
  <a href="/coats" title="Coat collection">coats</a>.</p>
  <p>Offer ends <b>Sunday</b>.</p>
  <img src="/banner.png" alt="banner">
  <iframe src="https://video.example.org/embed"></iframe>
</main>
<aside class="sidebar"><a href="/help"><img src="/q.png" alt="Help center"></a></aside>
<div class="footer"><a href="https://social.example.org/store">Follow us</a></div>
<footer><a href="/privacy">Privacy</a></footer>
</body>
</html>`

func parse(t *testing.T, html string) harvest.Page {
	t.Helper()
	page, err := goquery.NewParser().Parse(html, "https://store.example.com/")
	require.NoError(t, err)
	return page
}

func TestPage_Anchors(t *testing.T) {
	t.Parallel()

	anchors := parse(t, storePage).Anchors()

	require.Len(t, anchors, 6)

	regions := make(map[string]harvest.Region)
	for _, a := range anchors {
		regions[a.Href] = a.Region
	}
	assert.Equal(t, harvest.RegionHeader, regions["/"])
	assert.Equal(t, harvest.RegionNav, regions["/products"])
	assert.Equal(t, harvest.RegionContent, regions["/coats"])
	assert.Equal(t, harvest.RegionAside, regions["/help"])
	assert.Equal(t, harvest.RegionFooter, regions["https://social.example.org/store"])
	assert.Equal(t, harvest.RegionFooter, regions["/privacy"])

	coats := anchors[2]
	assert.Equal(t, "coats", coats.Text)
	assert.Equal(t, "Coat collection", coats.Title)
	assert.Greater(t, coats.Depth, anchors[0].Depth)

	assert.Equal(t, "Help center", anchors[3].Text, "image alt stands in for empty text")
}

func TestPage_Anchors_DefaultsToContent(t *testing.T) {
	t.Parallel()

	anchors := parse(t, `<p><a href="/a">A</a></p>`).Anchors()

	require.Len(t, anchors, 1)
	assert.Equal(t, harvest.RegionContent, anchors[0].Region)
}

func TestPage_TableBlocks(t *testing.T) {
	t.Parallel()

	t.Run("reads headers rows and caption", func(t *testing.T) {
		t.Parallel()

		html := `<table summary="Shipping rates">
<caption> Rates  by zone </caption>
<thead><tr><th>Zone</th><th>Price</th></tr></thead>
<tbody>
<tr><td>EU</td><td>5 EUR</td></tr>
<tr><td>US</td><td>9 USD</td></tr>
<tr></tr>
</tbody>
</table>`

		blocks := parse(t, html).TableBlocks()

		require.Len(t, blocks, 1)
		b := blocks[0]
		assert.Equal(t, "Rates by zone", b.Caption)
		assert.Equal(t, "Shipping rates", b.Summary)
		assert.Equal(t, []string{"Zone", "Price"}, b.Headers)
		assert.Equal(t, [][]string{{"EU", "5 EUR"}, {"US", "9 USD"}}, b.Rows)
		assert.False(t, b.Nested)
		assert.False(t, b.Presentational)
	})

	t.Run("detects th-only first row as header", func(t *testing.T) {
		t.Parallel()

		blocks := parse(t, `<table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td>2</td></tr></table>`).TableBlocks()

		require.Len(t, blocks, 1)
		assert.Equal(t, []string{"a", "b"}, blocks[0].Headers)
		assert.Equal(t, [][]string{{"1", "2"}}, blocks[0].Rows)
	})

	t.Run("flags nested and layout tables", func(t *testing.T) {
		t.Parallel()

		html := `<table role="presentation"><tr><td>
<table><tr><td>inner</td></tr></table>
</td><td>side</td></tr></table>`

		blocks := parse(t, html).TableBlocks()

		require.Len(t, blocks, 2)
		assert.True(t, blocks[0].Nested)
		assert.True(t, blocks[0].Presentational)
		require.Len(t, blocks[0].Rows, 1, "inner rows belong to the inner table")
		assert.Len(t, blocks[0].Rows[0], 2)
		assert.True(t, blocks[1].Nested)
		assert.Equal(t, [][]string{{"inner"}}, blocks[1].Rows)
	})
}

func TestPage_Without(t *testing.T) {
	t.Parallel()

	page := parse(t, storePage)
	stripped := page.Without("img", "iframe", "nav")

	assert.Len(t, page.Anchors(), 6, "original page is unchanged")
	assert.Len(t, stripped.Anchors(), 5)

	again := stripped.Without("footer")
	assert.Len(t, again.Anchors(), 4)
}

func TestPage_Text(t *testing.T) {
	t.Parallel()

	t.Run("joins block text", func(t *testing.T) {
		t.Parallel()

		text, err := parse(t, `<body><h1>Winter sale</h1><p>Up to   half off on
<a href="/coats">coats</a>.</p><script>x()</script><table><tr><td>EU</td><td>5</td></tr></table></body>`).Text()

		require.NoError(t, err)
		assert.Equal(t, "Winter sale\n\nUp to half off on coats.\n\nEU 5", text)
	})

	t.Run("prefers extracted main content", func(t *testing.T) {
		t.Parallel()

		var gotURL string
		parser := &goquery.Parser{
			Extractor: &mock.Extractor{
				ExtractFn: func(html string, pageURL string) (*harvest.ExtractResult, error) {
					gotURL = pageURL
					return &harvest.ExtractResult{ContentHTML: "<p>Main only.</p>"}, nil
				},
			},
		}
		page, err := parser.Parse(storePage, "https://store.example.com/sale")
		require.NoError(t, err)

		text, err := page.Text()

		require.NoError(t, err)
		assert.Equal(t, "Main only.", text)
		assert.Equal(t, "https://store.example.com/sale", gotURL)
	})

	t.Run("falls back when extraction fails", func(t *testing.T) {
		t.Parallel()

		parser := &goquery.Parser{
			Extractor: &mock.Extractor{
				ExtractFn: func(html string, pageURL string) (*harvest.ExtractResult, error) {
					return nil, errors.New("no content")
				},
			},
		}
		page, err := parser.Parse(`<p>Body text.</p>`, "https://store.example.com/")
		require.NoError(t, err)

		text, err := page.Text()

		require.NoError(t, err)
		assert.Equal(t, "Body text.", text)
	})

	t.Run("uses converter output", func(t *testing.T) {
		t.Parallel()

		parser := &goquery.Parser{
			Converter: &mock.Converter{
				ConvertFn: func(html string) (string, error) {
					return "# Converted", nil
				},
			},
		}
		page, err := parser.Parse(`<h1>Converted</h1>`, "https://store.example.com/")
		require.NoError(t, err)

		text, err := page.Text()

		require.NoError(t, err)
		assert.Equal(t, "# Converted", text)
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		page := parse(t, storePage)
		var wg sync.WaitGroup
		texts := make([]string, 8)
		for i := range texts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				texts[i], _ = page.Text()
				page.Anchors()
				page.TableBlocks()
			}()
		}
		wg.Wait()

		for _, text := range texts {
			assert.Equal(t, texts[0], text)
		}
		assert.Contains(t, texts[0], "Offer ends Sunday.")
		assert.NotContains(t, texts[0], "tracking")
	})
}
