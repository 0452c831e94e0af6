package mock

import "github.com/fwojciec/harvest"

var _ harvest.Page = (*Page)(nil)

// Page is a mock implementation of harvest.Page.
type Page struct {
	AnchorsFn     func() []harvest.Anchor
	TableBlocksFn func() []harvest.TableBlock
	TextFn        func() (string, error)
	WithoutFn     func(tags ...string) harvest.Page
}

func (p *Page) Anchors() []harvest.Anchor {
	return p.AnchorsFn()
}

func (p *Page) TableBlocks() []harvest.TableBlock {
	return p.TableBlocksFn()
}

func (p *Page) Text() (string, error) {
	return p.TextFn()
}

func (p *Page) Without(tags ...string) harvest.Page {
	return p.WithoutFn(tags...)
}

var _ harvest.Parser = (*Parser)(nil)

// Parser is a mock implementation of harvest.Parser.
type Parser struct {
	ParseFn func(html string, baseURL string) (harvest.Page, error)
}

func (p *Parser) Parse(html string, baseURL string) (harvest.Page, error) {
	return p.ParseFn(html, baseURL)
}
