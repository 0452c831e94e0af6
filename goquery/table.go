package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
)

// TableBlocks returns every table element in document order, including
// tables nested inside other tables.
func (p *Page) TableBlocks() []harvest.TableBlock {
	var blocks []harvest.TableBlock
	p.doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		blocks = append(blocks, tableBlock(table))
	})
	return blocks
}

func tableBlock(table *goquery.Selection) harvest.TableBlock {
	summary, _ := table.Attr("summary")
	role, _ := table.Attr("role")

	b := harvest.TableBlock{
		Caption:        cellText(table.ChildrenFiltered("caption").First()),
		Summary:        strings.TrimSpace(summary),
		Nested:         table.Find("table").Length() > 0 || table.ParentsFiltered("table").Length() > 0,
		Presentational: role == "presentation" || role == "none",
	}

	// Rows of nested tables belong to those tables.
	rows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})

	rows.Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			return
		}
		values := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			values = append(values, cellText(cell))
		})

		if b.Headers == nil && len(b.Rows) == 0 && isHeaderRow(tr, cells) {
			b.Headers = values
			return
		}
		b.Rows = append(b.Rows, values)
	})
	return b
}

// isHeaderRow reports whether tr is inside thead or holds only th cells.
func isHeaderRow(tr, cells *goquery.Selection) bool {
	if tr.ParentFiltered("thead").Length() > 0 {
		return true
	}
	return cells.Length() == cells.Filter("th").Length()
}

func cellText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
