// Package rules implements a harvest.Backend that fills schema fields with
// regular expressions instead of a model.
package rules

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/fwojciec/harvest"
)

// Ensure Backend implements harvest.Backend at compile time.
var _ harvest.Backend = (*Backend)(nil)

// Backend extracts records by matching each field's Pattern against the
// text. The n-th match of every field makes up the n-th record, so fields
// listed in document order line up. Without a schema it returns the text's
// paragraphs as content blocks.
type Backend struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

// NewBackend creates a new Backend.
func NewBackend() *Backend {
	return &Backend{cache: make(map[string]*regexp.Regexp)}
}

// Extract implements harvest.Backend. The instruction is ignored.
func (b *Backend) Extract(ctx context.Context, text string, schema *harvest.Schema, instruction string) ([]harvest.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if schema == nil {
		return paragraphs(text), nil
	}

	columns := make(map[string][]any, len(schema.Fields))
	rows := 0
	for _, f := range schema.Fields {
		if f.Pattern == "" {
			continue
		}
		re, err := b.compile(f.Pattern)
		if err != nil {
			return nil, harvest.Errorf(harvest.EINVALID, "field %q: invalid pattern: %v", f.Name, err)
		}
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v := m[0]
			if len(m) > 1 {
				v = m[1]
			}
			columns[f.Name] = append(columns[f.Name], convert(strings.TrimSpace(v), f.Type))
		}
		rows = max(rows, len(columns[f.Name]))
	}
	if len(columns) == 0 && !hasPattern(schema) {
		return nil, harvest.Errorf(harvest.EINVALID, "schema %q has no field patterns", schema.Name)
	}

	records := make([]harvest.Record, 0, rows)
	for i := range rows {
		r := harvest.Record{}
		for name, values := range columns {
			if i < len(values) {
				r[name] = values[i]
			}
		}
		records = append(records, r)
	}
	return records, nil
}

func (b *Backend) compile(pattern string) (*regexp.Regexp, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if re, ok := b.cache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	b.cache[pattern] = re
	return re, nil
}

func hasPattern(schema *harvest.Schema) bool {
	for _, f := range schema.Fields {
		if f.Pattern != "" {
			return true
		}
	}
	return false
}

// convert turns a matched string into the field's type. Values that do not
// parse stay strings.
func convert(v, typ string) any {
	switch typ {
	case "number":
		if n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err == nil {
			return n
		}
	case "boolean":
		if bv, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return bv
		}
	case "list":
		var items []any
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items
	}
	return v
}

func paragraphs(text string) []harvest.Record {
	records := []harvest.Record{}
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			records = append(records, harvest.Record{"content": p})
		}
	}
	return records
}
