package goquery

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
	"golang.org/x/net/html"
)

// Ensure Parser implements harvest.Parser at compile time.
var _ harvest.Parser = (*Parser)(nil)

// Ensure Page implements harvest.Page at compile time.
var _ harvest.Page = (*Page)(nil)

// Parser parses HTML documents with goquery.
type Parser struct {
	// Extractor, if set, narrows page text to the main content.
	Extractor harvest.Extractor

	// Converter, if set, renders page text as Markdown.
	Converter harvest.Converter
}

// NewParser creates a Parser that produces plain block text.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses html. baseURL is passed to the extractor for link resolution.
func (p *Parser) Parse(html string, baseURL string) (harvest.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Page{
		doc:       doc,
		html:      html,
		url:       baseURL,
		extractor: p.Extractor,
		converter: p.Converter,
	}, nil
}

// Page is a parsed HTML document. It is safe for concurrent reads.
type Page struct {
	doc       *goquery.Document
	html      string
	url       string
	extractor harvest.Extractor
	converter harvest.Converter

	textOnce sync.Once
	text     string
	textErr  error
}

// Anchors returns every a[href] element in document order.
func (p *Page) Anchors() []harvest.Anchor {
	var anchors []harvest.Anchor
	p.doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		title, _ := sel.Attr("title")

		text := sel.Text()
		if strings.TrimSpace(text) == "" {
			text, _ = sel.Find("img[alt]").First().Attr("alt")
		}

		anchors = append(anchors, harvest.Anchor{
			Href:   href,
			Text:   text,
			Title:  title,
			Depth:  sel.Parents().Length(),
			Region: regionOf(sel),
		})
	})
	return anchors
}

// regionOf classifies a node by its nearest ancestor that marks a page region.
func regionOf(sel *goquery.Selection) harvest.Region {
	for n := sel.Parent(); n.Length() > 0; n = n.Parent() {
		if r, ok := landmark(n); ok {
			return r
		}
	}
	return harvest.RegionContent
}

// landmark reports the region an element marks, if any. Tags and ARIA
// roles are checked before the class names common page templates use.
func landmark(sel *goquery.Selection) (harvest.Region, bool) {
	role, _ := sel.Attr("role")
	switch {
	case sel.Is("footer") || role == "contentinfo":
		return harvest.RegionFooter, true
	case sel.Is("nav") || role == "navigation":
		return harvest.RegionNav, true
	case sel.Is("header") || role == "banner":
		return harvest.RegionHeader, true
	case sel.Is("aside") || role == "complementary":
		return harvest.RegionAside, true
	case sel.Is("main, article") || role == "main":
		return harvest.RegionContent, true
	case sel.HasClass("footer"):
		return harvest.RegionFooter, true
	case sel.HasClass("nav") || sel.HasClass("navbar") || sel.HasClass("menu"):
		return harvest.RegionNav, true
	case sel.HasClass("sidebar") || sel.HasClass("toc") || sel.HasClass("table-of-contents"):
		return harvest.RegionAside, true
	case sel.HasClass("content") || sel.HasClass("doc-content"):
		return harvest.RegionContent, true
	}
	return "", false
}

// Without returns a copy of the page with every element matching one of
// tags removed. The receiver is not modified.
func (p *Page) Without(tags ...string) harvest.Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.html))
	if err != nil {
		return p
	}
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			doc.Find(tag).Remove()
		}
	}
	rendered, err := doc.Html()
	if err != nil {
		return p
	}
	return &Page{
		doc:       doc,
		html:      rendered,
		url:       p.url,
		extractor: p.extractor,
		converter: p.converter,
	}
}

// Text returns the cleaned page text. The main content chosen by the
// extractor is used when it finds any, and Markdown when a converter is
// set. Otherwise the text of block elements is joined with blank lines.
func (p *Page) Text() (string, error) {
	p.textOnce.Do(func() {
		p.text, p.textErr = p.renderText()
	})
	return p.text, p.textErr
}

func (p *Page) renderText() (string, error) {
	content := ""
	if p.extractor != nil {
		if res, err := p.extractor.Extract(p.html, p.url); err == nil && strings.TrimSpace(res.ContentHTML) != "" {
			content = res.ContentHTML
		}
	}

	if p.converter != nil {
		source := content
		if source == "" {
			source = p.html
		}
		if md, err := p.converter.Convert(source); err == nil && md != "" {
			return md, nil
		}
	}

	if content == "" {
		return blockText(p.doc.Find("body")), nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", harvest.Errorf(harvest.EINVALID, "failed to parse main content: %v", err)
	}
	return blockText(doc.Find("body")), nil
}

// skippedTags never contribute text.
var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"head": true, "svg": true,
}

// blockTags end the current paragraph.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tr": true, "ul": true, "caption": true,
}

// blockText joins the text of sel's block elements with blank lines.
// Whitespace inside a block collapses to single spaces.
func blockText(sel *goquery.Selection) string {
	var (
		paras []string
		cur   strings.Builder
	)
	flush := func() {
		if t := strings.Join(strings.Fields(cur.String()), " "); t != "" {
			paras = append(paras, t)
		}
		cur.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			return
		case html.ElementNode:
			if skippedTags[n.Data] {
				return
			}
			if n.Data == "td" || n.Data == "th" {
				cur.WriteByte(' ')
				defer cur.WriteByte(' ')
			}
			if blockTags[n.Data] {
				flush()
				defer flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	flush()
	return strings.Join(paras, "\n\n")
}
