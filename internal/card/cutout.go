package card

import (
	"context"
	"strconv"
	"strings"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/layout"
	"github.com/thereceipt/titlecard-engine/internal/metrics"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// CutoutExtras are the styling knobs of the cutout card
type CutoutExtras struct {
	OverlayColor string `json:"overlay_color"`
	NumberStyle  string `json:"number_style"`
	NumberFont   string `json:"number_font"`
}

const (
	cutoutNumberSize = 1000
	cutoutMargin     = 150
)

// Cutout fills the card with a solid overlay and cuts the episode number
// out of it so the source image shows through the letters
type Cutout struct {
	base
}

// NewCutout creates the cutout variant
func NewCutout() *Cutout {
	return &Cutout{base{Metadata{
		Identifier:        "cutout",
		ArchiveName:       "Cutout Style",
		TitleSplit:        TitleSplit{MaxLineWidth: 40, MaxLineCount: 1, Wrap: WrapTop},
		FontCase:          CaseUpper,
		DefaultFontFile:   "fonts/Sequel-Neue.otf",
		DefaultFontColor:  "white",
		EpisodeTextFormat: "{episode_number_cardinal}",
		UsesSourceImage:   true,
	}}}
}

func (c *Cutout) extras(spec cardformat.CardSpec) (CutoutExtras, error) {
	e := CutoutExtras{
		OverlayColor: "black",
		NumberStyle:  "english",
		NumberFont:   "fonts/Gotham-Black.otf",
	}
	if err := decodeExtras(spec.Extras, &e); err != nil {
		return e, err
	}
	if e.NumberStyle != "english" && e.NumberStyle != "digits" {
		return e, failure.New(failure.KindValidation, "extras number_style: must be english or digits, got %q", e.NumberStyle)
	}
	return e, nil
}

func (c *Cutout) Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error) {
	extras, err := c.extras(spec)
	if err != nil {
		return nil, err
	}
	if err := requireFile("source", spec.Source); err != nil {
		return nil, err
	}

	number := strings.ToUpper(spec.EpisodeText)
	if n := episodeNumber(spec); n > 0 {
		number = strconv.Itoa(n)
		if extras.NumberStyle == "english" {
			number = strings.ToUpper(spellNumber(n))
		}
	}
	if number == "" {
		return nil, failure.New(failure.KindValidation, "cutout card needs episode text or an episode number")
	}

	cut := program.AnnotateText{
		Role:    program.RoleEpisode,
		Text:    number,
		Font:    extras.NumberFont,
		Size:    cutoutNumberSize,
		Color:   "white",
		Kerning: -20,
		Gravity: program.GravityCenter,
	}
	m, err := measure(ctx, env, metrics.Stacked, cut)
	if err != nil {
		return nil, err
	}
	if avail := Width - 2*cutoutMargin; m.Width > float64(avail) {
		cut.Size *= float64(avail) / m.Width
	}

	layerPath, err := env.scratchPath(".png")
	if err != nil {
		return nil, err
	}
	maskPath, err := env.scratchPath(".png")
	if err != nil {
		return nil, err
	}

	layer := program.New(Width, Height)
	layer.Source = spec.Source
	layer.Output = layerPath
	layer.Add(layout.ResizeChain(Canvas, spec.Blur, spec.Grayscale)...)

	mask := program.New(Width, Height)
	mask.Output = maskPath
	mask.Add(cut)

	p := blankProgram(spec, extras.OverlayColor)
	p.Prelude = append(p.Prelude, layer, mask)
	p.Add(program.CompositeImage{
		Role:    program.RoleLayer,
		Path:    layerPath,
		Gravity: program.GravityNorthWest,
		Mask:    maskPath,
	})

	title := annotate(c.meta, font, textStyle{Size: 65, Kerning: 10}, program.RoleTitle, prepareTitle(c.meta, spec.Title))
	title.Gravity = program.GravitySouth
	title.Offset = program.Point{Y: 100 + float64(font.VerticalShift)}
	p.Add(title)

	return p, nil
}
