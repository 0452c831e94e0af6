package harvest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildSystemPrompt returns the instructions given to model-based backends.
// With a nil schema the model is asked for free-form content blocks.
func BuildSystemPrompt(schema *Schema, instruction string) string {
	var sb strings.Builder
	sb.WriteString("You extract structured data from web page text. Respond with a JSON array only, no narration.\n")
	if schema == nil {
		sb.WriteString("Each element is an object {\"content\": string} holding one self-contained block of relevant content.\n")
	} else {
		fmt.Fprintf(&sb, "Each element is one %q record with these fields:\n", schema.Name)
		if schema.Description != "" {
			fmt.Fprintf(&sb, "(%s)\n", schema.Description)
		}
		for _, f := range schema.Fields {
			fmt.Fprintf(&sb, "- %s (%s)", f.Name, fieldType(f.Type))
			if f.Description != "" {
				fmt.Fprintf(&sb, ": %s", f.Description)
			}
			sb.WriteByte('\n')
		}
		sb.WriteString("Omit records that are not present in the text. Return [] when there are none.\n")
	}
	if instruction != "" {
		fmt.Fprintf(&sb, "\n%s\n", instruction)
	}
	return sb.String()
}

// BuildUserPrompt wraps a chunk of page text for model-based backends.
func BuildUserPrompt(text string) string {
	return "<content>\n" + text + "\n</content>"
}

func fieldType(t string) string {
	if t == "" {
		return "string"
	}
	return t
}

// RecordsKey is the key a model may use to wrap the record array when its
// API only returns JSON objects.
const RecordsKey = "records"

// ParseRecords decodes a backend's JSON reply. It accepts an array of
// records, an object whose only key is RecordsKey holding that array, or a
// single record. Markdown code fences around the JSON are ignored. Array
// elements that are not objects become {"content": value} records.
func ParseRecords(raw string) ([]Record, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, Errorf(EINVALID, "malformed payload: %v", err)
	}

	switch v := v.(type) {
	case []any:
		return toRecords(v), nil
	case map[string]any:
		if items, ok := v[RecordsKey].([]any); ok && len(v) == 1 {
			return toRecords(items), nil
		}
		return []Record{v}, nil
	default:
		return nil, Errorf(EINVALID, "malformed payload: expected JSON array or object")
	}
}

func toRecords(items []any) []Record {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, m)
			continue
		}
		records = append(records, Record{"content": item})
	}
	return records
}
