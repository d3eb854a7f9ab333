package card

import (
	"context"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/layout"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// TintedGlassExtras are the styling knobs of the tinted glass card
type TintedGlassExtras struct {
	GlassColor          string `json:"glass_color"`
	EpisodeTextColor    string `json:"episode_text_color"`
	EpisodeTextPosition string `json:"episode_text_position"`
}

const (
	glassPadding = 60
	glassRadius  = 40
)

// TintedGlass frames the title in a translucent rounded box sized to the
// measured text
type TintedGlass struct {
	base
}

// NewTintedGlass creates the tinted glass variant
func NewTintedGlass() *TintedGlass {
	return &TintedGlass{base{Metadata{
		Identifier:        "tinted_glass",
		Aliases:           []string{"tinted glass", "glass"},
		ArchiveName:       "Tinted Glass Style",
		TitleSplit:        TitleSplit{MaxLineWidth: 24, MaxLineCount: 2, Wrap: WrapEven},
		FontCase:          CaseUpper,
		DefaultFontFile:   "fonts/SFProDisplay-Bold.ttf",
		DefaultFontColor:  "white",
		EpisodeTextFormat: "Episode {episode_number}",
		FontExtras: map[string]any{
			"episode_text_color": "white",
		},
		UsesSourceImage: true,
		UsesMask:          true,
	}}}
}

func (g *TintedGlass) extras(spec cardformat.CardSpec) (TintedGlassExtras, error) {
	e := TintedGlassExtras{
		GlassColor:          "rgba(0,0,0,0.50)",
		EpisodeTextColor:    "white",
		EpisodeTextPosition: "center",
	}
	if err := decodeExtras(spec.Extras, &e); err != nil {
		return e, err
	}
	switch e.EpisodeTextPosition {
	case "left", "center", "right":
	default:
		return e, failure.New(failure.KindValidation, "extras episode_text_position: must be left, center or right, got %q", e.EpisodeTextPosition)
	}
	return e, nil
}

func (g *TintedGlass) Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error) {
	extras, err := g.extras(spec)
	if err != nil {
		return nil, err
	}

	p, err := newProgram(spec)
	if err != nil {
		return nil, err
	}

	title := annotate(g.meta, font, textStyle{Size: 200, Kerning: 1, Interline: -20}, program.RoleTitle, prepareTitle(g.meta, spec.Title))
	title.Gravity = program.GravitySouth
	title.Offset = program.Point{Y: 125 + float64(font.VerticalShift)}

	texts := []program.AnnotateText{title}
	if index := indexText(spec, "•"); index != "" {
		op := program.AnnotateText{
			Role:    program.RoleIndex,
			Text:    index,
			Font:    g.meta.DefaultFontFile,
			Size:    70,
			Color:   extras.EpisodeTextColor,
			Kerning: 1,
			Gravity: program.GravityNorth,
			Offset:  program.Point{Y: 100},
		}
		switch extras.EpisodeTextPosition {
		case "left":
			op.Gravity = program.GravityNorthWest
			op.Offset.X = 100
		case "right":
			op.Gravity = program.GravityNorthEast
			op.Offset.X = 100
		}
		texts = append(texts, op)
	}

	m, err := measureEach(ctx, env, texts...)
	if err != nil {
		return nil, err
	}
	p.Add(glass(textBox(title, m[0]), extras.GlassColor))
	p.Add(title)
	if len(texts) > 1 {
		p.Add(glass(textBox(texts[1], m[1]), extras.GlassColor), texts[1])
	}

	addMask(p, env, g.meta, spec)
	return p, nil
}

func glass(box layout.Rect, color string) program.DrawShape {
	box = box.Expand(glassPadding, glassPadding/2)
	return program.DrawShape{
		Shape:  program.ShapeRoundRectangle,
		Points: []program.Point{{X: box.Left, Y: box.Top}, {X: box.Right, Y: box.Bottom}},
		Radius: glassRadius,
		Fill:   color,
	}
}
