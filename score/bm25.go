package score

import (
	"math"
	"strings"
	"unicode"
)

// BM25 parameters and the normalization applied to contextual scores.
const (
	BM25K1 = 1.2
	BM25B  = 0.75

	// ContextualWeight is the upper bound of a normalized contextual score.
	ContextualWeight = 5.0

	// ContextualSaturation is the raw BM25 value that maps to half of ContextualWeight.
	ContextualSaturation = 1.0
)

// Terms lowercases text and splits it into letter/digit runs.
func Terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Corpus holds term statistics over a set of documents.
type Corpus struct {
	docs   [][]string
	df     map[string]int
	avgLen float64
}

// NewCorpus indexes the documents. Empty documents take part in the length
// average but never match.
func NewCorpus(docs []string) *Corpus {
	c := &Corpus{
		docs: make([][]string, len(docs)),
		df:   make(map[string]int),
	}
	var total int
	for i, d := range docs {
		terms := Terms(d)
		c.docs[i] = terms
		total += len(terms)
		seen := make(map[string]bool, len(terms))
		for _, t := range terms {
			if !seen[t] {
				seen[t] = true
				c.df[t]++
			}
		}
	}
	if len(docs) > 0 {
		c.avgLen = float64(total) / float64(len(docs))
	}
	return c
}

// BM25 returns the raw Okapi BM25 score of document i for the query.
// Repeated query terms count once.
func (c *Corpus) BM25(query string, i int) float64 {
	if i < 0 || i >= len(c.docs) || c.avgLen == 0 {
		return 0
	}
	doc := c.docs[i]
	if len(doc) == 0 {
		return 0
	}

	tf := make(map[string]int, len(doc))
	for _, t := range doc {
		tf[t]++
	}

	n := float64(len(c.docs))
	norm := BM25K1 * (1 - BM25B + BM25B*float64(len(doc))/c.avgLen)

	var s float64
	seen := make(map[string]bool)
	for _, q := range Terms(query) {
		if seen[q] {
			continue
		}
		seen[q] = true
		f := float64(tf[q])
		if f == 0 {
			continue
		}
		df := float64(c.df[q])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		s += idf * f * (BM25K1 + 1) / (f + norm)
	}
	return s
}

// Contextual returns the normalized contextual score of document i,
// in [0, ContextualWeight).
func (c *Corpus) Contextual(query string, i int) float64 {
	return Normalize(c.BM25(query, i))
}

// Normalize maps a raw BM25 value onto the intrinsic score scale.
func Normalize(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) {
		return 0
	}
	if math.IsInf(raw, 1) {
		return ContextualWeight
	}
	return ContextualWeight * raw / (raw + ContextualSaturation)
}
