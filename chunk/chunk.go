// Package chunk splits cleaned page text into token-bounded, optionally
// overlapping chunks.
//
// Token counts are estimated, not computed by a model tokenizer: a text of
// w whitespace-separated words is ceil(w / WordTokenRate) tokens.
package chunk

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/harvest"
)

// WordTokenRate is the number of words per token assumed by EstimateTokens.
const WordTokenRate = 0.75

// EstimateTokens returns the estimated token count of text.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / WordTokenRate))
}

// Segment splits text into units at paragraph breaks and after sentence
// terminators. Whitespace following a boundary stays with the unit before
// it, so concatenating the units reproduces text exactly.
func Segment(text string) []string {
	var units []string
	start, i := 0, 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			i += size
			continue
		}

		// Consume the whole whitespace run.
		j, newlines := i, 0
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				break
			}
			if r == '\n' {
				newlines++
			}
			j += size
		}

		if newlines >= 2 || endsSentence(text[start:i]) {
			units = append(units, text[start:j])
			start = j
		}
		i = j
	}
	if start < len(text) {
		units = append(units, text[start:])
	}
	return units
}

// endsSentence reports whether s ends with a sentence terminator,
// ignoring trailing closing quotes and brackets.
func endsSentence(s string) bool {
	s = strings.TrimRight(s, "\"')]}”’»")
	r, _ := utf8.DecodeLastRuneInString(s)
	switch r {
	case '.', '!', '?', '…', '。':
		return true
	}
	return false
}

// Planner plans chunks for one configuration.
type Planner struct {
	// TokenThreshold is the maximum estimated tokens per chunk.
	TokenThreshold int

	// OverlapRate is the fraction of a closed chunk repeated at the head of the next one.
	OverlapRate float64

	// Apply disables chunking when false: the whole text becomes one chunk.
	Apply bool
}

// NewPlanner returns a Planner for the chunking settings of cfg.
func NewPlanner(cfg harvest.Config) *Planner {
	return &Planner{
		TokenThreshold: cfg.ChunkTokenThreshold,
		OverlapRate:    cfg.OverlapRate,
		Apply:          cfg.ApplyChunking,
	}
}

// span is a unit as byte offsets into the source text.
type span struct {
	start, end int
	tokens     int
}

// Plan splits text into chunks. Units are never split: a unit larger than
// the threshold becomes a chunk of its own.
func (p *Planner) Plan(text string) []harvest.Chunk {
	if text == "" {
		return nil
	}
	if !p.Apply || p.TokenThreshold <= 0 {
		return []harvest.Chunk{{
			Text:   text,
			Tokens: EstimateTokens(text),
			End:    len(text),
		}}
	}

	var (
		chunks []harvest.Chunk
		cur    []span // units of the open chunk, overlap seed first
		seed   int    // number of leading seed units in cur
		tokens int    // tokens in cur
	)

	emit := func() {
		first, last := cur[0], cur[len(cur)-1]
		overlap := 0
		if seed > 0 {
			overlap = cur[seed-1].end - first.start
		}
		chunks = append(chunks, harvest.Chunk{
			Index:   len(chunks),
			Text:    text[first.start:last.end],
			Tokens:  tokens,
			Start:   first.start,
			End:     last.end,
			Overlap: overlap,
		})
	}

	// reseed keeps the trailing units of the closed chunk that fit in the
	// overlap budget. The first unit is never kept so the seed is a strict suffix.
	reseed := func() {
		budget := p.OverlapRate * float64(tokens)
		n, t := 0, 0
		for k := len(cur) - 1; k >= 1 && p.OverlapRate > 0; k-- {
			if float64(t+cur[k].tokens) > budget {
				break
			}
			t += cur[k].tokens
			n++
		}
		cur = append([]span(nil), cur[len(cur)-n:]...)
		seed = n
		tokens = t
	}

	offset := 0
	for _, u := range Segment(text) {
		s := span{start: offset, end: offset + len(u), tokens: EstimateTokens(u)}
		offset = s.end

		if len(cur) > seed && tokens+s.tokens > p.TokenThreshold {
			emit()
			reseed()
		}
		for seed > 0 && tokens+s.tokens > p.TokenThreshold {
			tokens -= cur[0].tokens
			cur = cur[1:]
			seed--
		}
		cur = append(cur, s)
		tokens += s.tokens
	}
	if len(cur) > seed {
		emit()
	}
	return chunks
}
