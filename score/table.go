package score

import "github.com/fwojciec/harvest"

// Table heuristic weights.
const (
	HeaderBonus            = 2
	ConsistentColumnsBonus = 2
	IrregularRowPenalty    = 1
	MinDataRows            = 2
	RowBonusCap            = 5
	MultiColumnBonus       = 1
	CaptionBonus           = 2
	NestedTablePenalty     = 3
	PresentationPenalty    = 3
)

// Table scores a table block. Higher means more likely to hold data.
func Table(b harvest.TableBlock) int {
	var s int

	if len(b.Headers) > 0 {
		s += HeaderBonus
	}

	width := ExpectedColumns(b)
	irregular := 0
	for _, row := range b.Rows {
		if len(row) != width {
			irregular++
		}
	}
	if irregular == 0 && len(b.Rows) > 0 {
		s += ConsistentColumnsBonus
	}
	s -= irregular * IrregularRowPenalty

	if len(b.Rows) >= MinDataRows {
		s += min(len(b.Rows), RowBonusCap)
	}

	if width >= 2 {
		s += MultiColumnBonus
	}

	if b.Caption != "" || b.Summary != "" {
		s += CaptionBonus
	}

	if b.Nested {
		s -= NestedTablePenalty
	}
	if b.Presentational {
		s -= PresentationPenalty
	}

	return s
}

// ExpectedColumns returns the column count rows are measured against: the
// header width when headers exist, otherwise the most common row width
// (on ties, the width that reached the count first).
func ExpectedColumns(b harvest.TableBlock) int {
	if len(b.Headers) > 0 {
		return len(b.Headers)
	}
	counts := make(map[int]int)
	best, bestCount := 0, 0
	for _, row := range b.Rows {
		counts[len(row)]++
		if counts[len(row)] > bestCount {
			best, bestCount = len(row), counts[len(row)]
		}
	}
	return best
}
