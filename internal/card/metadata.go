package card

import (
	"maps"
	"slices"
)

// WrapStyle selects how long titles are broken into lines
type WrapStyle string

const (
	// WrapTop fills lines from the top, leaving the last line short
	WrapTop WrapStyle = "top"
	// WrapBottom fills lines from the bottom, leaving the first line short
	WrapBottom WrapStyle = "bottom"
	// WrapEven balances line lengths
	WrapEven WrapStyle = "even"
	// WrapForcedEven balances line lengths and splits even short titles
	WrapForcedEven WrapStyle = "forced_even"
)

// TitleSplit configures title line breaking
type TitleSplit struct {
	MaxLineWidth int       `json:"max_line_width"`
	MaxLineCount int       `json:"max_line_count"`
	Wrap         WrapStyle `json:"wrap"`
}

// FontCase is the case transform applied to titles
type FontCase string

const (
	CaseBlank  FontCase = "blank"
	CaseLower  FontCase = "lower"
	CaseSource FontCase = "source"
	CaseTitle  FontCase = "title"
	CaseUpper  FontCase = "upper"
)

// Metadata describes a variant. It is validated at registration and never
// changes afterwards.
type Metadata struct {
	Identifier  string     `json:"identifier"`
	Aliases     []string   `json:"aliases,omitempty"`
	ArchiveName string     `json:"archive_name"`
	TitleSplit  TitleSplit `json:"title_split"`
	FontCase    FontCase   `json:"font_case"`
	// FontReplacements maps single characters to their replacement text
	FontReplacements  map[string]string `json:"font_replacements,omitempty"`
	DefaultFontFile   string            `json:"default_font_file"`
	DefaultFontColor  string            `json:"default_font_color"`
	EpisodeTextFormat string            `json:"episode_text_format"`
	// FontExtras lists the extras keys that count as font styling, with
	// their defaults
	FontExtras      map[string]any `json:"font_extras,omitempty"`
	UsesSourceImage bool           `json:"uses_source_image"`
	UsesMask        bool           `json:"uses_mask"`
}

func (m Metadata) clone() Metadata {
	m.Aliases = slices.Clone(m.Aliases)
	m.FontReplacements = maps.Clone(m.FontReplacements)
	m.FontExtras = maps.Clone(m.FontExtras)
	return m
}

// Names returns the identifier followed by the aliases
func (m Metadata) Names() []string {
	return append([]string{m.Identifier}, m.Aliases...)
}
