package cardformat

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parse parses a card batch from a byte slice
func Parse(data []byte) (*Batch, error) {
	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}

	if err := ValidateBatch(&batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

// ParseFile parses a card batch from disk
func ParseFile(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return Parse(data)
}

// ParseCard parses a single card from a byte slice
func ParseCard(data []byte) (*CardSpec, error) {
	var spec CardSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse card: %w", err)
	}

	if err := Validate(&spec); err != nil {
		return nil, err
	}

	return &spec, nil
}

// UnmarshalJSON decodes a font descriptor on top of DefaultFont so missing
// multipliers keep their neutral values.
func (f *FontDescriptor) UnmarshalJSON(data []byte) error {
	type alias FontDescriptor
	decoded := alias(DefaultFont())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*f = FontDescriptor(decoded)
	return nil
}
