package readability_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Quarterly Results</title></head>
<body>
<nav><a href="/home">Home Nav Link</a><a href="/about">About Nav Link</a></nav>
<article>
<h1>Quarterly Results</h1>
<p>Revenue grew by twelve percent compared to the same quarter last year, driven by strong demand in the enterprise segment.</p>
<p>Operating margin improved as the company completed its migration to the new <a href="/reports/q3">reporting platform</a> and reduced hosting costs.</p>
<table><tr><th>Segment</th><th>Growth</th></tr><tr><td>Enterprise</td><td>18%</td></tr></table>
</article>
<footer>Copyright Footer Text</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and article", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(articleHTML, "https://news.example.com/q3")

		require.NoError(t, err)
		assert.Equal(t, "Quarterly Results", result.Title)
		assert.Contains(t, result.ContentHTML, "Revenue grew by twelve percent")
	})

	t.Run("drops navigation and footer", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(articleHTML, "https://news.example.com/q3")

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "Home Nav Link")
		assert.NotContains(t, result.ContentHTML, "Copyright Footer Text")
	})

	t.Run("resolves links against page URL", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(articleHTML, "https://news.example.com/q3")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "https://news.example.com/reports/q3")
	})

	t.Run("accepts missing page URL", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(articleHTML, "")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Operating margin improved")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewExtractor().Extract("", "https://news.example.com/")

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}
