package card

import (
	"context"

	"github.com/thereceipt/titlecard-engine/internal/layout"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// StandardExtras are the styling knobs of the standard card
type StandardExtras struct {
	Separator           string  `json:"separator"`
	StrokeColor         string  `json:"stroke_color"`
	EpisodeTextColor    string  `json:"episode_text_color"`
	EpisodeTextFontSize float64 `json:"episode_text_font_size"`
	OmitGradient        bool    `json:"omit_gradient"`
}

// Standard draws the title over a bottom gradient with the season and
// episode text beneath it
type Standard struct {
	base
}

// NewStandard creates the standard variant
func NewStandard() *Standard {
	return &Standard{base{Metadata{
		Identifier:  "standard",
		Aliases:     []string{"generic"},
		ArchiveName: "Standard Style",
		TitleSplit:  TitleSplit{MaxLineWidth: 32, MaxLineCount: 3, Wrap: WrapTop},
		FontCase:    CaseUpper,
		FontReplacements: map[string]string{
			"[": "(", "]": ")", "(": "[", ")": "]", "―": "-", "…": "...",
		},
		DefaultFontFile:   "fonts/Sequel-Neue.otf",
		DefaultFontColor:  "#EBEBEB",
		EpisodeTextFormat: "Episode {episode_number}",
		FontExtras: map[string]any{
			"stroke_color":           "black",
			"episode_text_color":     "#CFCFCF",
			"episode_text_font_size": 1.0,
		},
		UsesSourceImage: true,
		UsesMask:        true,
	}}}
}

func (s *Standard) extras(spec cardformat.CardSpec) (StandardExtras, error) {
	e := StandardExtras{
		Separator:           "•",
		StrokeColor:         "black",
		EpisodeTextColor:    "#CFCFCF",
		EpisodeTextFontSize: 1.0,
	}
	err := decodeExtras(spec.Extras, &e)
	return e, err
}

func (s *Standard) Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error) {
	extras, err := s.extras(spec)
	if err != nil {
		return nil, err
	}

	p, err := newProgram(spec)
	if err != nil {
		return nil, err
	}

	if !extras.OmitGradient {
		p.Add(program.CompositeImage{
			Role:    program.RoleDecoration,
			Path:    "gradient:none-black",
			Size:    program.Dimensions{Width: Width, Height: Height / 2},
			Gravity: program.GravitySouth,
			Opacity: 0.75,
		})
	}

	var texts []program.Op

	title := annotate(s.meta, font, textStyle{Size: 157.41, Kerning: -1.25, Interline: -22, StrokeWidth: 3}, program.RoleTitle, prepareTitle(s.meta, spec.Title))
	title.StrokeColor = extras.StrokeColor
	title.Gravity = program.GravitySouth
	title.Offset = program.Point{Y: 290 + float64(font.VerticalShift)}
	texts = append(texts, title)

	if index := indexText(spec, extras.Separator); index != "" {
		op := annotate(s.meta, font, textStyle{Size: 62.5 * extras.EpisodeTextFontSize, Kerning: 5.42, Interword: 14, StrokeWidth: 6}, program.RoleIndex, index)
		op.Font = s.meta.DefaultFontFile
		op.Size = 62.5 * extras.EpisodeTextFontSize
		op.Color = extras.EpisodeTextColor
		op.StrokeColor = extras.StrokeColor
		op.Gravity = program.GravitySouth
		op.Offset = program.Point{Y: 185}
		texts = append(texts, op)
	}

	if font.StrokeWidth > 0 {
		p.Add(layout.DropShadow(texts, layout.DefaultShadow))
	} else {
		p.Add(texts...)
	}

	if err := addLogo(p, spec, program.Dimensions{Width: 1000}, program.GravityNorth, program.Point{Y: 100}); err != nil {
		return nil, err
	}
	addMask(p, env, s.meta, spec)
	return p, nil
}
