package card

import (
	"context"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/metrics"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// FadeExtras are the styling knobs of the fade card
type FadeExtras struct {
	EpisodeTextColor string  `json:"episode_text_color"`
	FadeWidth        float64 `json:"fade_width"`
}

const fadeLeft = 200

// Fade darkens the left of the card with a horizontal gradient and sets
// the title and index text on it
type Fade struct {
	base
}

// NewFade creates the fade variant
func NewFade() *Fade {
	return &Fade{base{Metadata{
		Identifier:        "fade",
		ArchiveName:       "Fade Style",
		TitleSplit:        TitleSplit{MaxLineWidth: 15, MaxLineCount: 4, Wrap: WrapTop},
		FontCase:          CaseUpper,
		DefaultFontFile:   "fonts/Sequel-Neue.otf",
		DefaultFontColor:  "white",
		EpisodeTextFormat: "Episode {episode_number}",
		FontExtras: map[string]any{
			"episode_text_color": "#CFCFCF",
		},
		UsesSourceImage: true,
	}}}
}

func (f *Fade) extras(spec cardformat.CardSpec) (FadeExtras, error) {
	e := FadeExtras{
		EpisodeTextColor: "#CFCFCF",
		FadeWidth:        0.6,
	}
	if err := decodeExtras(spec.Extras, &e); err != nil {
		return e, err
	}
	if e.FadeWidth <= 0 || e.FadeWidth > 1 {
		return e, failure.New(failure.KindValidation, "extras fade_width: must be in (0, 1], got %v", e.FadeWidth)
	}
	return e, nil
}

func (f *Fade) Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error) {
	extras, err := f.extras(spec)
	if err != nil {
		return nil, err
	}

	p, err := newProgram(spec)
	if err != nil {
		return nil, err
	}

	// A vertical gradient turned a quarter clockwise fades right to left.
	p.Add(program.CompositeImage{
		Role:    program.RoleDecoration,
		Path:    "gradient:none-black",
		Size:    program.Dimensions{Width: Height, Height: Width * extras.FadeWidth},
		Rotate:  90,
		Gravity: program.GravityWest,
	})

	title := annotate(f.meta, font, textStyle{Size: 135, Kerning: -1, Interline: -10}, program.RoleTitle, prepareTitle(f.meta, spec.Title))
	title.Gravity = program.GravityWest
	title.Offset = program.Point{X: fadeLeft, Y: float64(font.VerticalShift)}
	p.Add(title)

	if index := indexText(spec, "•"); index != "" {
		m, err := measure(ctx, env, metrics.Stacked, title)
		if err != nil {
			return nil, err
		}
		p.Add(program.AnnotateText{
			Role:    program.RoleIndex,
			Text:    index,
			Font:    f.meta.DefaultFontFile,
			Size:    60,
			Color:   extras.EpisodeTextColor,
			Kerning: 5,
			Gravity: program.GravitySouthWest,
			Offset:  program.Point{X: fadeLeft, Y: Height - textBox(title, m).Top + 40},
		})
	}

	if err := addLogo(p, spec, program.Dimensions{Width: 900}, program.GravityNorthWest, program.Point{X: fadeLeft, Y: 150}); err != nil {
		return nil, err
	}
	return p, nil
}
