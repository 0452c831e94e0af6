package gemini

import (
	"context"

	"github.com/fwojciec/harvest"
	"google.golang.org/genai"
)

// DefaultModel is the model used when Backend.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// Generation settings for extraction calls.
const (
	Temperature     = 0.1
	MaxOutputTokens = 2000
)

// Ensure Backend implements harvest.Backend at compile time.
var _ harvest.Backend = (*Backend)(nil)

// Backend implements harvest.Backend using Google Gemini with JSON output.
type Backend struct {
	client *genai.Client
	Model  string
}

// NewBackend creates a new Backend.
func NewBackend(client *genai.Client) *Backend {
	return &Backend{client: client, Model: DefaultModel}
}

// Extract asks the model for the records in text. A reply that is not
// valid JSON is an error.
func (b *Backend) Extract(ctx context.Context, text string, schema *harvest.Schema, instruction string) ([]harvest.Record, error) {
	if text == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "text required")
	}

	result, err := b.client.Models.GenerateContent(ctx, b.Model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: harvest.BuildUserPrompt(text)}},
		}},
		BuildConfig(schema, instruction),
	)
	if err != nil {
		return nil, harvest.Errorf(harvest.EUNAVAILABLE, "gemini: %v", err)
	}
	if result == nil {
		return nil, harvest.Errorf(harvest.EINTERNAL, "gemini returned nil result")
	}

	return harvest.ParseRecords(result.Text())
}

// BuildConfig returns the GenerateContentConfig for extraction calls. The
// reply is constrained to JSON and, when a schema is given, to an array of
// its records.
func BuildConfig(schema *harvest.Schema, instruction string) *genai.GenerateContentConfig {
	temp := float32(Temperature)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: harvest.BuildSystemPrompt(schema, instruction)}},
		},
		Temperature:      &temp,
		MaxOutputTokens:  MaxOutputTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(schema),
	}
}

// ResponseSchema converts schema to the Gemini response schema: an array of
// objects with one property per field. A nil schema yields content blocks.
func ResponseSchema(schema *harvest.Schema) *genai.Schema {
	item := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{},
	}
	if schema == nil {
		item.Properties["content"] = &genai.Schema{Type: genai.TypeString}
		item.Required = []string{"content"}
	} else {
		for _, f := range schema.Fields {
			item.Properties[f.Name] = fieldSchema(f)
			item.PropertyOrdering = append(item.PropertyOrdering, f.Name)
		}
		item.Required = schema.Key
	}
	return &genai.Schema{Type: genai.TypeArray, Items: item}
}

func fieldSchema(f harvest.SchemaField) *genai.Schema {
	s := &genai.Schema{Description: f.Description}
	switch f.Type {
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	case "list":
		s.Type = genai.TypeArray
		s.Items = &genai.Schema{Type: genai.TypeString}
	default:
		s.Type = genai.TypeString
	}
	return s
}
