package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/harvest"
)

// Ensure Converter implements harvest.Converter at compile time.
var _ harvest.Converter = (*Converter)(nil)

// Converter renders cleaned page content as Markdown.
type Converter struct {
	conv *converter.Converter

	// Domain, if set, turns relative links and image sources into absolute ones.
	Domain string
}

// NewConverter creates a Converter with table and strikethrough support.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			strikethrough.NewStrikethroughPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", harvest.Errorf(harvest.EINVALID, "empty HTML input")
	}

	var opts []converter.ConvertOptionFunc
	if c.Domain != "" {
		opts = append(opts, converter.WithDomain(c.Domain))
	}

	result, err := c.conv.ConvertString(html, opts...)
	if err != nil {
		return "", harvest.Errorf(harvest.EINTERNAL, "convert to markdown: %v", err)
	}
	return strings.TrimSpace(result), nil
}
