package harvest

import "context"

// Schema describes the structured records a backend should produce.
type Schema struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description,omitempty"`
	Fields      []SchemaField `yaml:"fields" json:"fields"`

	// Key names the fields that identify a record. Records with equal key
	// fields produced by adjacent overlapping chunks are merged into one.
	// An empty Key compares whole records.
	Key []string `yaml:"key" json:"key,omitempty"`
}

// SchemaField describes one field of a record.
type SchemaField struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"` // string, number, boolean or list
	Description string `yaml:"description" json:"description,omitempty"`

	// Pattern is a regular expression used by rule-based backends.
	// The first capture group, if any, is the field value.
	Pattern string `yaml:"pattern" json:"pattern,omitempty"`
}

// Validate returns an error if the schema contains invalid fields.
func (s *Schema) Validate() error {
	if s == nil {
		return nil
	}
	if s.Name == "" {
		return Errorf(EINVALID, "schema name required")
	}
	if len(s.Fields) == 0 {
		return Errorf(EINVALID, "schema %q has no fields", s.Name)
	}
	names := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return Errorf(EINVALID, "schema %q has a field without a name", s.Name)
		}
		if names[f.Name] {
			return Errorf(EINVALID, "schema %q has duplicate field %q", s.Name, f.Name)
		}
		names[f.Name] = true
	}
	for _, k := range s.Key {
		if !names[k] {
			return Errorf(EINVALID, "schema %q key %q is not a field", s.Name, k)
		}
	}
	return nil
}

// Record is one structured entry produced by a backend.
type Record map[string]any

// Backend turns one chunk of text into structured records.
// Implementations are rule-based or model-based; the pipeline does not care which.
type Backend interface {
	// Extract returns the records found in text. The schema may be nil, in
	// which case the backend returns free-form content blocks.
	Extract(ctx context.Context, text string, schema *Schema, instruction string) ([]Record, error)
}

// ExtractionUnit is a chunk together with the outcome of its extraction.
type ExtractionUnit struct {
	Chunk    Chunk
	Records  []Record
	Err      error
	Attempts int
}

// Failed reports whether the unit ended with an error.
func (u *ExtractionUnit) Failed() bool {
	return u.Err != nil
}
