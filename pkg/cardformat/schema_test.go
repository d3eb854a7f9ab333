package cardformat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate_ValidCard(t *testing.T) {
	card := &CardSpec{
		Variant:     "standard",
		Title:       "The Beginning",
		SeasonText:  "Season 1",
		EpisodeText: "Episode 1",
		Output:      "out.jpg",
	}

	if err := Validate(card); err != nil {
		t.Errorf("Expected valid card, got error: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	negative := -1.0

	tests := []struct {
		name    string
		card    CardSpec
		wantErr bool
	}{
		{"missing variant", CardSpec{Output: "a.jpg"}, true},
		{"blank variant", CardSpec{Variant: "  ", Output: "a.jpg"}, true},
		{"missing output", CardSpec{Variant: "standard"}, true},
		{"negative font size", CardSpec{Variant: "standard", Output: "a.jpg", FontSize: -1}, true},
		{"negative stroke", CardSpec{Variant: "standard", Output: "a.jpg", FontStrokeWidth: &negative}, true},
		{"negative episode number", CardSpec{Variant: "standard", Output: "a.jpg", EpisodeNumber: -3}, true},
		{"scalar extras", CardSpec{Variant: "standard", Output: "a.jpg", Extras: Extras{"stroke_color": "red", "size": 1.5}}, false},
		{"unknown extras are fine", CardSpec{Variant: "standard", Output: "a.jpg", Extras: Extras{"from_the_future": true}}, false},
		{"nested extras", CardSpec{Variant: "standard", Output: "a.jpg", Extras: Extras{"nested": map[string]any{"a": 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.card)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBatch(t *testing.T) {
	valid := CardSpec{Variant: "standard", Output: "a.jpg"}

	tests := []struct {
		name    string
		batch   Batch
		wantErr bool
	}{
		{"valid", Batch{Version: "1.0", Cards: []CardSpec{valid}}, false},
		{"missing version", Batch{Cards: []CardSpec{valid}}, true},
		{"unsupported version", Batch{Version: "2.0", Cards: []CardSpec{valid}}, true},
		{"no cards", Batch{Version: "1.0"}, true},
		{"duplicate ids", Batch{Version: "1.0", Cards: []CardSpec{
			{ID: "a", Variant: "standard", Output: "a.jpg"},
			{ID: "a", Variant: "standard", Output: "b.jpg"},
		}}, true},
		{"invalid card", Batch{Version: "1.0", Cards: []CardSpec{{Variant: "standard"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatch(&tt.batch)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBatch() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	data := `{
  "version": "1.0",
  "cards": [
    {"variant": "standard", "title": "Pilot", "output": "s01e01.jpg", "extras": {"stroke_color": "black"}}
  ]
}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write batch: %v", err)
	}

	batch, err := ParseFile(path)
	if err != nil {
		t.Fatalf("Failed to parse batch: %v", err)
	}

	if len(batch.Cards) != 1 {
		t.Fatalf("Expected 1 card, got %d", len(batch.Cards))
	}
	if batch.Cards[0].Extras["stroke_color"] != "black" {
		t.Errorf("Expected stroke_color extra to survive parsing, got %v", batch.Cards[0].Extras["stroke_color"])
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFontDescriptor_UnmarshalDefaults(t *testing.T) {
	var font FontDescriptor
	if err := font.UnmarshalJSON([]byte(`{"color": "#FFFFFF", "interline_spacing": 10}`)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if font.Size != 1.0 || font.Kerning != 1.0 || font.StrokeWidth != 1.0 {
		t.Errorf("Expected neutral multipliers, got %+v", font)
	}
	if font.InterlineSpacing != 10 {
		t.Errorf("Expected interline spacing 10, got %d", font.InterlineSpacing)
	}
}

func TestFontFromSpec(t *testing.T) {
	zero := 0.0
	font := FontFromSpec(CardSpec{FontColor: "red", FontSize: 1.2, FontStrokeWidth: &zero, FontVerticalShift: 12})

	if font.Color != "red" {
		t.Errorf("Expected color red, got %s", font.Color)
	}
	if font.Size != 1.2 {
		t.Errorf("Expected size 1.2, got %g", font.Size)
	}
	if font.StrokeWidth != 0 {
		t.Errorf("Expected explicit zero stroke width, got %g", font.StrokeWidth)
	}
	if font.Kerning != 1.0 {
		t.Errorf("Expected default kerning 1.0, got %g", font.Kerning)
	}
	if font.VerticalShift != 12 {
		t.Errorf("Expected vertical shift 12, got %d", font.VerticalShift)
	}

	if got := FontFromSpec(CardSpec{}).StrokeWidth; got != 1.0 {
		t.Errorf("Expected default stroke width 1.0, got %g", got)
	}
}
