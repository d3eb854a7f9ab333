package card

import (
	"reflect"
	"strings"

	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// IsCustomFont compares font and the metadata's font extras against the
// variant defaults
func (b base) IsCustomFont(font cardformat.FontDescriptor, extras cardformat.Extras) bool {
	m := b.meta
	if font.Color != "" && !strings.EqualFold(font.Color, m.DefaultFontColor) {
		return true
	}
	if font.File != "" && font.File != m.DefaultFontFile {
		return true
	}
	if font.Size != 1.0 || font.Kerning != 1.0 || font.StrokeWidth != 1.0 {
		return true
	}
	if font.InterlineSpacing != 0 || font.InterwordSpacing != 0 || font.VerticalShift != 0 {
		return true
	}
	for key, def := range m.FontExtras {
		if v, ok := extras[key]; ok && !sameValue(v, def) {
			return true
		}
	}
	return false
}

// IsCustomSeasonTitles is true for a custom episode map or a non-default
// episode text format
func (b base) IsCustomSeasonTitles(customEpisodeMap bool, episodeTextFormat string) bool {
	return customEpisodeMap || !strings.EqualFold(episodeTextFormat, b.meta.EpisodeTextFormat)
}

// ModifyExtras resets every font extra to its default unless the font is
// custom
func (b base) ModifyExtras(extras cardformat.Extras, customFont, customSeasonTitles bool) cardformat.Extras {
	out := extras.Clone()
	if !customFont {
		for key, def := range b.meta.FontExtras {
			out[key] = def
		}
	}
	return out
}

// ArchiveGroup is the archive label for a card of the variant
func ArchiveGroup(r Renderer, font cardformat.FontDescriptor, extras cardformat.Extras, customEpisodeMap bool, episodeTextFormat string) string {
	label := r.Metadata().ArchiveName
	if r.IsCustomFont(font, extras) {
		label += " - Custom Font"
	}
	if r.IsCustomSeasonTitles(customEpisodeMap, episodeTextFormat) {
		label += " - Custom Season Titles"
	}
	return label
}

func sameValue(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && strings.EqualFold(sa, sb)
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
