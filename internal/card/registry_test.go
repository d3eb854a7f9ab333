package card

import (
	"slices"
	"testing"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

type stubRenderer struct {
	*Standard
	meta Metadata
}

func (s stubRenderer) Metadata() Metadata { return s.meta }

func validMeta() Metadata {
	return Metadata{
		Identifier:  "stub",
		ArchiveName: "Stub Style",
		TitleSplit:  TitleSplit{MaxLineWidth: 20, MaxLineCount: 2, Wrap: WrapTop},
		FontCase:    CaseUpper,
	}
}

func TestNewRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Metadata)
	}{
		{"empty identifier", func(m *Metadata) { m.Identifier = " " }},
		{"empty archive name", func(m *Metadata) { m.ArchiveName = "" }},
		{"zero line width", func(m *Metadata) { m.TitleSplit.MaxLineWidth = 0 }},
		{"negative line count", func(m *Metadata) { m.TitleSplit.MaxLineCount = -1 }},
		{"unknown wrap", func(m *Metadata) { m.TitleSplit.Wrap = "middle" }},
		{"unknown case", func(m *Metadata) { m.FontCase = "shouting" }},
		{"multi character replacement", func(m *Metadata) { m.FontReplacements = map[string]string{"ab": "c"} }},
		{"empty alias", func(m *Metadata) { m.Aliases = []string{""} }},
		{"alias repeats identifier", func(m *Metadata) { m.Aliases = []string{"STUB"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := validMeta()
			tt.mutate(&meta)
			_, err := NewRegistry(stubRenderer{NewStandard(), meta})
			if !failure.Is(err, failure.KindConfiguration) {
				t.Errorf("Expected configuration error, got %v", err)
			}
		})
	}
}

func TestNewRegistry_DuplicateAcrossVariants(t *testing.T) {
	a := validMeta()
	b := validMeta()
	b.Identifier = "other"
	b.Aliases = []string{"Stub"}

	_, err := NewRegistry(stubRenderer{NewStandard(), a}, stubRenderer{NewStandard(), b})
	if !failure.Is(err, failure.KindConfiguration) {
		t.Errorf("Expected configuration error for duplicate alias, got %v", err)
	}
}

func TestRegistry_Get(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}

	for _, name := range []string{"standard", "STANDARD", "generic", " Roman ", "tinted glass"} {
		if _, err := reg.Get(name); err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
		}
	}

	if _, err := reg.Get("polaroid-deluxe"); !failure.Is(err, failure.KindValidation) {
		t.Errorf("Expected validation error for unknown variant, got %v", err)
	}
}

func TestRegistry_List(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	list := reg.List()
	if len(list) != 10 {
		t.Errorf("Expected 10 variants, got %d", len(list))
	}
	if !slices.IsSortedFunc(list, func(a, b Metadata) int {
		switch {
		case a.Identifier < b.Identifier:
			return -1
		case a.Identifier > b.Identifier:
			return 1
		}
		return 0
	}) {
		t.Error("Expected variants sorted by identifier")
	}
}

func TestMetadata_ReturnsCopy(t *testing.T) {
	s := NewStandard()
	m := s.Metadata()
	m.FontExtras["stroke_color"] = "red"
	m.Aliases[0] = "changed"

	again := s.Metadata()
	if again.FontExtras["stroke_color"] != "black" || again.Aliases[0] != "generic" {
		t.Error("Expected metadata to be immutable")
	}
}

func TestModifyExtras_Consistency(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}

	for _, meta := range reg.List() {
		t.Run(meta.Identifier, func(t *testing.T) {
			rd, _ := reg.Get(meta.Identifier)
			font := cardformat.DefaultFont()

			if rd.IsCustomFont(font, nil) {
				t.Error("Expected default font and no extras to be non-custom")
			}

			extras := cardformat.Extras{"unrelated": "keep"}
			for key, def := range meta.FontExtras {
				extras[key] = customValue(def)
			}
			if len(meta.FontExtras) > 0 && !rd.IsCustomFont(font, extras) {
				t.Error("Expected changed font extras to be custom")
			}

			out := rd.ModifyExtras(extras, false, false)
			for key, def := range meta.FontExtras {
				if !sameValue(out[key], def) {
					t.Errorf("Expected %s reset to %v, got %v", key, def, out[key])
				}
			}
			if rd.IsCustomFont(font, out) {
				t.Error("Expected reset extras to be non-custom")
			}
			if out["unrelated"] != "keep" {
				t.Error("Expected unrelated extras untouched")
			}
			for key, def := range meta.FontExtras {
				if !sameValue(extras[key], customValue(def)) {
					t.Errorf("Expected input extras untouched, %s = %v", key, extras[key])
				}
			}

			kept := rd.ModifyExtras(extras, true, false)
			for key, def := range meta.FontExtras {
				if !sameValue(kept[key], customValue(def)) {
					t.Errorf("Expected custom font extras kept, %s = %v", key, kept[key])
				}
			}

			for key, def := range meta.FontExtras {
				single := cardformat.Extras{key: customValue(def)}
				if !rd.IsCustomFont(font, single) {
					t.Errorf("Expected %s=%v alone to be custom", key, single[key])
				}
			}
		})
	}
}

// customValue returns a non-default value of the same kind as def
func customValue(def any) any {
	if f, ok := toFloat(def); ok {
		return f + 1.5
	}
	return "#123456"
}

func TestIsCustomFont_SizeExtras(t *testing.T) {
	tests := []struct {
		variant string
		key     string
		value   any
		want    bool
	}{
		{"standard", "episode_text_font_size", 2.5, true},
		{"standard", "episode_text_font_size", 1, false},
		{"roman_numeral", "season_text_font_size", 3.0, true},
		{"roman_numeral", "season_text_font_size", 1.0, false},
	}

	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	for _, tt := range tests {
		rd, err := reg.Get(tt.variant)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", tt.variant, err)
		}
		extras := cardformat.Extras{tt.key: tt.value}
		if got := rd.IsCustomFont(cardformat.DefaultFont(), extras); got != tt.want {
			t.Errorf("%s IsCustomFont(%s=%v) = %v, expected %v", tt.variant, tt.key, tt.value, got, tt.want)
		}
		if !tt.want {
			continue
		}
		out := rd.ModifyExtras(extras, false, false)
		if !sameValue(out[tt.key], 1.0) {
			t.Errorf("%s ModifyExtras reset %s to %v, expected 1", tt.variant, tt.key, out[tt.key])
		}
	}
}

func TestIsCustomFont(t *testing.T) {
	s := NewStandard()
	tests := []struct {
		name   string
		mutate func(*cardformat.FontDescriptor)
		extras cardformat.Extras
		want   bool
	}{
		{"defaults", func(f *cardformat.FontDescriptor) {}, nil, false},
		{"default color spelled differently", func(f *cardformat.FontDescriptor) { f.Color = "#ebebeb" }, nil, false},
		{"default file", func(f *cardformat.FontDescriptor) { f.File = "fonts/Sequel-Neue.otf" }, nil, false},
		{"color", func(f *cardformat.FontDescriptor) { f.Color = "red" }, nil, true},
		{"file", func(f *cardformat.FontDescriptor) { f.File = "other.ttf" }, nil, true},
		{"size", func(f *cardformat.FontDescriptor) { f.Size = 1.2 }, nil, true},
		{"kerning", func(f *cardformat.FontDescriptor) { f.Kerning = 0.5 }, nil, true},
		{"stroke", func(f *cardformat.FontDescriptor) { f.StrokeWidth = 0 }, nil, true},
		{"interline", func(f *cardformat.FontDescriptor) { f.InterlineSpacing = 4 }, nil, true},
		{"interword", func(f *cardformat.FontDescriptor) { f.InterwordSpacing = -4 }, nil, true},
		{"shift", func(f *cardformat.FontDescriptor) { f.VerticalShift = 20 }, nil, true},
		{"default extra", func(f *cardformat.FontDescriptor) {}, cardformat.Extras{"stroke_color": "Black"}, false},
		{"custom extra", func(f *cardformat.FontDescriptor) {}, cardformat.Extras{"stroke_color": "white"}, true},
		{"non-font extra", func(f *cardformat.FontDescriptor) {}, cardformat.Extras{"separator": "-"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			font := cardformat.DefaultFont()
			tt.mutate(&font)
			if got := s.IsCustomFont(font, tt.extras); got != tt.want {
				t.Errorf("IsCustomFont = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestIsCustomSeasonTitles(t *testing.T) {
	s := NewStandard()
	if s.IsCustomSeasonTitles(false, "episode {episode_number}") {
		t.Error("Expected default format to be non-custom")
	}
	if !s.IsCustomSeasonTitles(false, "Chapter {episode_number}") {
		t.Error("Expected changed format to be custom")
	}
	if !s.IsCustomSeasonTitles(true, "Episode {episode_number}") {
		t.Error("Expected custom episode map to be custom")
	}
	if NewLandscape().IsCustomSeasonTitles(true, "anything") {
		t.Error("Expected landscape to never have custom season titles")
	}
}

func TestArchiveGroup(t *testing.T) {
	s := NewStandard()
	font := cardformat.DefaultFont()

	if got := ArchiveGroup(s, font, nil, false, "Episode {episode_number}"); got != "Standard Style" {
		t.Errorf("Expected plain archive name, got %q", got)
	}

	font.Color = "red"
	got := ArchiveGroup(s, font, nil, true, "Episode {episode_number}")
	if got != "Standard Style - Custom Font - Custom Season Titles" {
		t.Errorf("Unexpected archive group %q", got)
	}
}
