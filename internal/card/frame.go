package card

import (
	"context"

	"github.com/thereceipt/titlecard-engine/internal/layout"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// FrameExtras are the styling knobs of the frame card
type FrameExtras struct {
	FrameColor       string `json:"frame_color"`
	EpisodeTextColor string `json:"episode_text_color"`
}

// Photo inset of the frame card
var framePhoto = program.Dimensions{Width: 2800, Height: 1400}

// Frame insets the source image like a polaroid with the title below it
type Frame struct {
	base
}

// NewFrame creates the frame variant
func NewFrame() *Frame {
	return &Frame{base{Metadata{
		Identifier:        "frame",
		Aliases:           []string{"photo"},
		ArchiveName:       "Frame Style",
		TitleSplit:        TitleSplit{MaxLineWidth: 25, MaxLineCount: 1, Wrap: WrapTop},
		FontCase:          CaseUpper,
		DefaultFontFile:   "fonts/guess-sans-medium.otf",
		DefaultFontColor:  "#272727",
		EpisodeTextFormat: "Episode {episode_number}",
		FontExtras: map[string]any{
			"episode_text_color": "#272727",
		},
		UsesSourceImage: true,
	}}}
}

func (f *Frame) extras(spec cardformat.CardSpec) (FrameExtras, error) {
	e := FrameExtras{
		FrameColor:       "#F5F5F5",
		EpisodeTextColor: "#272727",
	}
	err := decodeExtras(spec.Extras, &e)
	return e, err
}

func (f *Frame) Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error) {
	extras, err := f.extras(spec)
	if err != nil {
		return nil, err
	}
	if err := requireFile("source", spec.Source); err != nil {
		return nil, err
	}

	layer, err := env.scratchPath(".png")
	if err != nil {
		return nil, err
	}

	photo := program.New(framePhoto.Width, framePhoto.Height)
	photo.Source = spec.Source
	photo.Output = layer
	photo.Add(layout.ResizeChain(framePhoto, spec.Blur, spec.Grayscale)...)

	p := blankProgram(spec, extras.FrameColor)
	p.Prelude = append(p.Prelude, photo)
	p.Add(program.CompositeImage{
		Role:    program.RoleLayer,
		Path:    photo.Output,
		Gravity: program.GravityNorth,
		Offset:  program.Point{Y: 100},
	})
	p.Add(program.DrawShape{
		Shape:       program.ShapeRectangle,
		Points:      []program.Point{{X: 200, Y: 100}, {X: 200 + framePhoto.Width, Y: 100 + framePhoto.Height}},
		Stroke:      "rgba(0,0,0,0.15)",
		StrokeWidth: 4,
	})

	title := annotate(f.meta, font, textStyle{Size: 150, Kerning: 2}, program.RoleTitle, prepareTitle(f.meta, spec.Title))
	title.Gravity = program.GravitySouth
	title.Offset = program.Point{Y: 65 + float64(font.VerticalShift)}
	p.Add(title)

	parts := indexParts(spec)
	if len(parts) > 0 {
		p.Add(program.AnnotateText{
			Role:    program.RoleIndex,
			Text:    parts[0],
			Font:    f.meta.DefaultFontFile,
			Size:    70,
			Color:   extras.EpisodeTextColor,
			Kerning: 5,
			Gravity: program.GravitySouthWest,
			Offset:  program.Point{X: 220, Y: 110},
		})
	}
	if len(parts) > 1 {
		p.Add(program.AnnotateText{
			Role:    program.RoleIndex,
			Text:    parts[1],
			Font:    f.meta.DefaultFontFile,
			Size:    70,
			Color:   extras.EpisodeTextColor,
			Kerning: 5,
			Gravity: program.GravitySouthEast,
			Offset:  program.Point{X: 220, Y: 110},
		})
	}
	return p, nil
}
