// Package cardformat defines the types for the title card description format
package cardformat

// CardSpec represents a single title card request
type CardSpec struct {
	ID      string `json:"id,omitempty"`
	Variant string `json:"variant"`

	// Text
	Title           string `json:"title"`
	SeasonText      string `json:"season_text,omitempty"`
	EpisodeText     string `json:"episode_text,omitempty"`
	HideSeasonText  bool   `json:"hide_season_text,omitempty"`
	HideEpisodeText bool   `json:"hide_episode_text,omitempty"`

	// Numbers used by numeral and spelled-out variants. Zero means
	// "parse it from the episode text".
	SeasonNumber   int `json:"season_number,omitempty"`
	EpisodeNumber  int `json:"episode_number,omitempty"`
	AbsoluteNumber int `json:"absolute_number,omitempty"`

	// Font style scalars as authored
	FontColor            string   `json:"font_color,omitempty"`
	FontFile             string   `json:"font_file,omitempty"`
	FontSize             float64  `json:"font_size,omitempty"`
	FontKerning          float64  `json:"font_kerning,omitempty"`
	FontInterlineSpacing int      `json:"font_interline_spacing,omitempty"`
	FontInterwordSpacing int      `json:"font_interword_spacing,omitempty"`
	FontStrokeWidth      *float64 `json:"font_stroke_width,omitempty"`
	FontVerticalShift    int      `json:"font_vertical_shift,omitempty"`

	// Assets
	Source string `json:"source,omitempty"`
	Logo   string `json:"logo,omitempty"`
	Output string `json:"output"`

	// Post-filters applied to the source image
	Blur      bool `json:"blur,omitempty"`
	Grayscale bool `json:"grayscale,omitempty"`

	Extras Extras `json:"extras,omitempty"`
}

// FontDescriptor is the resolved set of font attributes for one render call.
// An empty Color or File means the variant default applies.
type FontDescriptor struct {
	Color            string  `json:"color,omitempty"`
	File             string  `json:"file,omitempty"`
	Size             float64 `json:"size"`
	StrokeWidth      float64 `json:"stroke_width"`
	Kerning          float64 `json:"kerning"`
	InterlineSpacing int     `json:"interline_spacing"`
	InterwordSpacing int     `json:"interword_spacing"`
	VerticalShift    int     `json:"vertical_shift"`
}

// Extras holds variant specific styling knobs. Keys a variant does not
// recognize are ignored.
type Extras map[string]any

// Batch is the on-disk format for a list of cards
type Batch struct {
	Version string     `json:"version"`
	Cards   []CardSpec `json:"cards"`
}

// DefaultFont returns a descriptor with neutral multipliers and offsets.
func DefaultFont() FontDescriptor {
	return FontDescriptor{
		Size:        1.0,
		StrokeWidth: 1.0,
		Kerning:     1.0,
	}
}

// FontFromSpec derives a descriptor from the style scalars of spec. Unset
// multipliers fall back to 1.0.
func FontFromSpec(spec CardSpec) FontDescriptor {
	font := DefaultFont()
	font.Color = spec.FontColor
	font.File = spec.FontFile
	if spec.FontSize != 0 {
		font.Size = spec.FontSize
	}
	if spec.FontKerning != 0 {
		font.Kerning = spec.FontKerning
	}
	// Zero stroke width disables strokes, so only a missing value defaults.
	if spec.FontStrokeWidth != nil {
		font.StrokeWidth = *spec.FontStrokeWidth
	}
	font.InterlineSpacing = spec.FontInterlineSpacing
	font.InterwordSpacing = spec.FontInterwordSpacing
	font.VerticalShift = spec.FontVerticalShift
	return font
}

// Clone returns a shallow copy of the extras map.
func (e Extras) Clone() Extras {
	out := make(Extras, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
