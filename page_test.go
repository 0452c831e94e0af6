package harvest_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageContext_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts absolute http URL with page", func(t *testing.T) {
		t.Parallel()

		pc := &harvest.PageContext{Page: &mock.Page{}, URL: "https://www.example.com/docs"}

		require.NoError(t, pc.Validate())
		assert.Equal(t, "example.com", pc.BaseDomain())
	})

	t.Run("rejects missing page", func(t *testing.T) {
		t.Parallel()

		pc := &harvest.PageContext{URL: "https://example.com"}

		err := pc.Validate()
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("rejects relative URL", func(t *testing.T) {
		t.Parallel()

		pc := &harvest.PageContext{Page: &mock.Page{}, URL: "/docs"}

		err := pc.Validate()
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("rejects non-http scheme", func(t *testing.T) {
		t.Parallel()

		pc := &harvest.PageContext{Page: &mock.Page{}, URL: "ftp://example.com/file"}

		err := pc.Validate()
		assert.Contains(t, harvest.ErrorMessage(err), "http")
	})
}

func TestSchema_Validate(t *testing.T) {
	t.Parallel()

	t.Run("nil schema is valid", func(t *testing.T) {
		t.Parallel()

		var s *harvest.Schema
		assert.NoError(t, s.Validate())
	})

	t.Run("rejects key that is not a field", func(t *testing.T) {
		t.Parallel()

		s := &harvest.Schema{
			Name:   "product",
			Fields: []harvest.SchemaField{{Name: "name", Type: "string"}},
			Key:    []string{"sku"},
		}

		err := s.Validate()
		assert.Contains(t, harvest.ErrorMessage(err), `key "sku"`)
	})

	t.Run("rejects duplicate fields", func(t *testing.T) {
		t.Parallel()

		s := &harvest.Schema{
			Name:   "product",
			Fields: []harvest.SchemaField{{Name: "name"}, {Name: "name"}},
		}

		err := s.Validate()
		assert.Contains(t, harvest.ErrorMessage(err), "duplicate")
	})
}

func TestChunk_Fresh(t *testing.T) {
	t.Parallel()

	c := harvest.Chunk{Text: "tail. new text.", Overlap: 6}

	assert.Equal(t, "new text.", c.Fresh())
}

func TestHeadData_Document(t *testing.T) {
	t.Parallel()

	var nilHead *harvest.HeadData
	assert.Empty(t, nilHead.Document())
	assert.Equal(t, "Title", (&harvest.HeadData{Title: "Title"}).Document())
	assert.Equal(t, "Title About", (&harvest.HeadData{Title: "Title", Description: "About"}).Document())
}
