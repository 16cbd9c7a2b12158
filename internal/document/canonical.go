package document

import (
	"encoding/json"
	"fmt"
)

// CanonicalMap rewrites a JSON-like map into the shape encoding/json produces when decoding,
// so numbers become float64 and typed slices become []any. A nil input yields an empty map.
func CanonicalMap(input map[string]any) (map[string]any, error) {
	if len(input) == 0 {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("document: canonical encode: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, fmt.Errorf("document: canonical decode: %w", err)
	}
	return out, nil
}

// ToMap encodes a typed record into its canonical map form.
func ToMap(value any) (map[string]any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("document: encode record: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, fmt.Errorf("document: decode record: %w", err)
	}
	return out, nil
}

// FromMap decodes a JSON-like map into the typed record pointed to by target.
func FromMap(input map[string]any, target any) error {
	if input == nil {
		input = map[string]any{}
	}
	encoded, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("document: encode map: %w", err)
	}
	if err := json.Unmarshal(encoded, target); err != nil {
		return err
	}
	return nil
}
