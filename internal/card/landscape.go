package card

import (
	"context"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/metrics"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// LandscapeExtras are the styling knobs of the landscape card
type LandscapeExtras struct {
	AddBoundingBox bool    `json:"add_bounding_box"`
	BoxColor       string  `json:"box_color"`
	BoxWidth       float64 `json:"box_width"`
	Darken         bool    `json:"darken"`
}

const landscapeBoxPadding = 100

// Landscape shows only the title, centered, optionally inside a box drawn
// around its measured extent
type Landscape struct {
	base
}

// NewLandscape creates the landscape variant
func NewLandscape() *Landscape {
	return &Landscape{base{Metadata{
		Identifier:        "landscape",
		ArchiveName:       "Landscape Style",
		TitleSplit:        TitleSplit{MaxLineWidth: 999, MaxLineCount: 1, Wrap: WrapTop},
		FontCase:          CaseUpper,
		DefaultFontFile:   "fonts/Geometos.ttf",
		DefaultFontColor:  "white",
		EpisodeTextFormat: "",
		FontExtras: map[string]any{
			"box_color": "white",
		},
		UsesSourceImage: true,
		UsesMask:        true,
	}}}
}

// IsCustomSeasonTitles is always false since landscape cards show no
// season text
func (l *Landscape) IsCustomSeasonTitles(customEpisodeMap bool, episodeTextFormat string) bool {
	return false
}

func (l *Landscape) extras(spec cardformat.CardSpec) (LandscapeExtras, error) {
	e := LandscapeExtras{
		AddBoundingBox: true,
		BoxColor:       "white",
		BoxWidth:       10,
		Darken:         true,
	}
	if err := decodeExtras(spec.Extras, &e); err != nil {
		return e, err
	}
	if e.BoxWidth < 0 {
		return e, failure.New(failure.KindValidation, "extras box_width: must not be negative, got %v", e.BoxWidth)
	}
	return e, nil
}

func (l *Landscape) Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error) {
	extras, err := l.extras(spec)
	if err != nil {
		return nil, err
	}

	p, err := newProgram(spec)
	if err != nil {
		return nil, err
	}

	if extras.Darken {
		p.Add(program.DrawShape{
			Shape:  program.ShapeRectangle,
			Points: []program.Point{{}, {X: Width, Y: Height}},
			Fill:   "rgba(0,0,0,0.25)",
		})
	}

	title := annotate(l.meta, font, textStyle{Size: 200, Kerning: 40, Interword: 50}, program.RoleTitle, prepareTitle(l.meta, spec.Title))
	title.Gravity = program.GravityCenter
	title.Offset = program.Point{Y: float64(font.VerticalShift)}

	if !extras.AddBoundingBox || extras.BoxWidth == 0 {
		p.Add(title)
		addMask(p, env, l.meta, spec)
		return p, nil
	}

	p.Defer("box")
	p.Add(title)

	m, err := measure(ctx, env, metrics.Stacked, title)
	if err != nil {
		return nil, err
	}
	box := textBox(title, m).Expand(landscapeBoxPadding, landscapeBoxPadding/2)
	if err := p.Fill("box", program.DrawShape{
		Shape:       program.ShapeRectangle,
		Points:      []program.Point{{X: box.Left, Y: box.Top}, {X: box.Right, Y: box.Bottom}},
		Stroke:      extras.BoxColor,
		StrokeWidth: extras.BoxWidth,
	}); err != nil {
		return nil, failure.Wrap(failure.KindRender, err)
	}

	addMask(p, env, l.meta, spec)
	return p, nil
}
