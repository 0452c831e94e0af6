package pipeline

import (
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/score"
)

// RecognizeTables scores blocks and returns, in document order, those
// scoring at least threshold. Blocks with no cells at all are skipped and
// counted. Returned rows are padded to a common width and never share
// storage with blocks.
func RecognizeTables(blocks []harvest.TableBlock, threshold int) ([]harvest.Table, int) {
	tables := []harvest.Table{}
	var skipped int
	for _, b := range blocks {
		width := len(b.Headers)
		for _, row := range b.Rows {
			width = max(width, len(row))
		}
		if width == 0 {
			skipped++
			continue
		}

		s := score.Table(b)
		if s < threshold {
			continue
		}

		t := harvest.Table{
			Caption: strings.TrimSpace(b.Caption),
			Score:   s,
			Rows:    make([][]string, 0, len(b.Rows)),
		}
		if t.Caption == "" {
			t.Caption = strings.TrimSpace(b.Summary)
		}
		if len(b.Headers) > 0 {
			t.Headers = pad(b.Headers, width)
		}
		for _, row := range b.Rows {
			if len(row) == 0 {
				continue
			}
			t.Rows = append(t.Rows, pad(row, width))
		}
		tables = append(tables, t)
	}
	return tables, skipped
}

// pad returns a copy of cells extended with empty cells to width.
func pad(cells []string, width int) []string {
	out := make([]string, width)
	copy(out, cells)
	return out
}
