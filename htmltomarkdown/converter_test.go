package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("keeps paragraphs apart", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<p>First paragraph.</p><p>Second paragraph.</p>`)

		require.NoError(t, err)
		assert.Equal(t, "First paragraph.\n\nSecond paragraph.", md)
	})

	t.Run("renders headings and emphasis", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<h2>Pricing</h2><p><strong>Pro</strong> plan is <em>new</em>.</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "## Pricing")
		assert.Contains(t, md, "**Pro**")
		assert.Contains(t, md, "*new*")
	})

	t.Run("renders tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<thead><tr><th>Plan</th><th>Price</th></tr></thead>
<tbody><tr><td>Basic</td><td>$5</td></tr><tr><td>Pro</td><td>$20</td></tr></tbody>
</table>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "| Plan")
		assert.Contains(t, md, "| Basic")
		assert.Contains(t, md, "$20")
	})

	t.Run("renders strikethrough", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<p>Was <del>$30</del> now $20</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "~~$30~~")
	})

	t.Run("resolves relative links with domain", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		conv.Domain = "https://shop.example.com"

		md, err := conv.Convert(`<p>See <a href="/returns">returns</a>.</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "[returns](https://shop.example.com/returns)")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := htmltomarkdown.NewConverter().Convert("  \n ")

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}
