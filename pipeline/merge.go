package pipeline

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/harvest"
)

// Merge concatenates the records of successful units in chunk-index order
// and returns the number of failed units.
//
// When a schema is given, a record whose identity also appears in the
// previous chunk is dropped if the two chunks overlap, since both were
// extracted from the shared text. Identity is the schema's key fields, or
// the whole record when the schema has no key.
func Merge(units []harvest.ExtractionUnit, schema *harvest.Schema) ([]harvest.Record, int) {
	ordered := slices.Clone(units)
	slices.SortStableFunc(ordered, func(a, b harvest.ExtractionUnit) int {
		return cmp.Compare(a.Chunk.Index, b.Chunk.Index)
	})

	records := []harvest.Record{}
	var failed int
	var prev map[uint64]bool
	for i, u := range ordered {
		if u.Failed() {
			failed++
			prev = nil
			continue
		}

		dedup := schema != nil && u.Chunk.Overlap > 0 && prev != nil &&
			i > 0 && ordered[i-1].Chunk.Index == u.Chunk.Index-1

		current := make(map[uint64]bool, len(u.Records))
		for _, r := range u.Records {
			id, ok := identity(r, schema)
			if ok {
				current[id] = true
				if dedup && prev[id] {
					continue
				}
			}
			records = append(records, r)
		}
		prev = current
	}
	return records, failed
}

// identity hashes the identifying fields of r. Records missing a key
// field, or that cannot be encoded, have no identity and are never treated
// as duplicates.
func identity(r harvest.Record, schema *harvest.Schema) (uint64, bool) {
	subject := r
	if schema != nil && len(schema.Key) > 0 {
		subject = make(harvest.Record, len(schema.Key))
		for _, k := range schema.Key {
			v, ok := r[k]
			if !ok || v == nil {
				return 0, false
			}
			subject[k] = v
		}
	}
	// Map keys are encoded sorted, so equal records encode equally.
	b, err := json.Marshal(subject)
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(b), true
}
