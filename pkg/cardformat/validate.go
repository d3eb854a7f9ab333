package cardformat

import (
	"fmt"
	"strings"
)

// SupportedVersion is the only batch format version understood by Parse
const SupportedVersion = "1.0"

// ValidateBatch validates a Batch structure
func ValidateBatch(b *Batch) error {
	if b.Version == "" {
		return fmt.Errorf("version is required")
	}
	if b.Version != SupportedVersion {
		return fmt.Errorf("unsupported version: %s (expected %s)", b.Version, SupportedVersion)
	}

	if len(b.Cards) == 0 {
		return fmt.Errorf("at least one card is required")
	}

	ids := make(map[string]bool)
	for i := range b.Cards {
		card := &b.Cards[i]
		if err := Validate(card); err != nil {
			return fmt.Errorf("card[%d]: %w", i, err)
		}
		if card.ID == "" {
			continue
		}
		if ids[card.ID] {
			return fmt.Errorf("card[%d]: duplicate card id '%s'", i, card.ID)
		}
		ids[card.ID] = true
	}

	return nil
}

// Validate performs field-level validation of a single card. It does not
// interpret extras; that is up to the selected variant.
func Validate(c *CardSpec) error {
	if strings.TrimSpace(c.Variant) == "" {
		return fmt.Errorf("variant is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}

	if c.FontSize < 0 {
		return fmt.Errorf("invalid font_size %g (must not be negative)", c.FontSize)
	}
	if c.FontStrokeWidth != nil && *c.FontStrokeWidth < 0 {
		return fmt.Errorf("invalid font_stroke_width %g (must not be negative)", *c.FontStrokeWidth)
	}

	for _, n := range []struct {
		name  string
		value int
	}{
		{"season_number", c.SeasonNumber},
		{"episode_number", c.EpisodeNumber},
		{"absolute_number", c.AbsoluteNumber},
	} {
		if n.value < 0 {
			return fmt.Errorf("invalid %s %d (must not be negative)", n.name, n.value)
		}
	}

	for key, value := range c.Extras {
		if key == "" {
			return fmt.Errorf("extras: empty key")
		}
		if err := validateExtraValue(value); err != nil {
			return fmt.Errorf("extras '%s': %w", key, err)
		}
	}

	return nil
}

// ValidateFont validates a resolved font descriptor
func ValidateFont(f *FontDescriptor) error {
	if f.Size <= 0 {
		return fmt.Errorf("invalid font size %g (must be positive)", f.Size)
	}
	if f.StrokeWidth < 0 {
		return fmt.Errorf("invalid stroke width %g (must not be negative)", f.StrokeWidth)
	}
	return nil
}

func validateExtraValue(v any) error {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int64:
		return nil
	default:
		return fmt.Errorf("unsupported value type %T (must be a string or scalar)", v)
	}
}
