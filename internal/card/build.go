package card

import (
	"context"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/layout"
	"github.com/thereceipt/titlecard-engine/internal/metrics"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// textStyle is a variant's base font style before the descriptor scales it
type textStyle struct {
	Size        float64
	Kerning     float64
	Interline   float64
	Interword   float64
	StrokeWidth float64
}

// annotate builds a text operation in the variant's font, scaled by font
func annotate(meta Metadata, font cardformat.FontDescriptor, base textStyle, role program.Role, text string) program.AnnotateText {
	file := font.File
	if file == "" {
		file = meta.DefaultFontFile
	}
	color := font.Color
	if color == "" {
		color = meta.DefaultFontColor
	}
	return program.AnnotateText{
		Role:             role,
		Text:             text,
		Font:             file,
		Size:             base.Size * font.Size,
		Color:            color,
		Kerning:          base.Kerning * font.Kerning,
		InterlineSpacing: base.Interline + float64(font.InterlineSpacing),
		InterwordSpacing: base.Interword + float64(font.InterwordSpacing),
		StrokeWidth:      base.StrokeWidth * font.StrokeWidth,
	}
}

// newProgram starts a program over the card's source image, resized to the
// canvas with the card's filters
func newProgram(spec cardformat.CardSpec) (*program.Program, error) {
	if err := requireFile("source", spec.Source); err != nil {
		return nil, err
	}
	p := program.New(Width, Height)
	p.Source = spec.Source
	p.Output = spec.Output
	p.Add(layout.ResizeChain(Canvas, spec.Blur, spec.Grayscale)...)
	return p, nil
}

// blankProgram starts a program on a solid background
func blankProgram(spec cardformat.CardSpec, background string) *program.Program {
	p := program.New(Width, Height)
	if background != "" {
		p.Background = background
	}
	p.Output = spec.Output
	return p
}

// addLogo composites the card's logo, when one is set
func addLogo(p *program.Program, spec cardformat.CardSpec, size program.Dimensions, gravity program.Gravity, offset program.Point) error {
	if spec.Logo == "" {
		return nil
	}
	if err := requireFile("logo", spec.Logo); err != nil {
		return err
	}
	p.Add(program.CompositeImage{
		Role:    program.RoleLogo,
		Path:    spec.Logo,
		Size:    size,
		Gravity: gravity,
		Offset:  offset,
	})
	return nil
}

// addMask composites the source's overlay mask on top of everything
func addMask(p *program.Program, env *Env, meta Metadata, spec cardformat.CardSpec) {
	if !meta.UsesMask || spec.Source == "" {
		return
	}
	mask, ok := layout.FindMask(spec.Source)
	if !ok {
		env.logger().Debug("no mask found", "source", spec.Source)
		return
	}
	p.Add(program.CompositeImage{
		Role:    program.RoleMask,
		Path:    mask,
		Size:    Canvas,
		Gravity: program.GravityNorthWest,
	})
}

// measure wraps a metrics query for a variant
func measure(ctx context.Context, env *Env, agg metrics.Aggregation, ops ...program.AnnotateText) (metrics.TextMetrics, error) {
	if env == nil || env.Metrics == nil {
		return metrics.TextMetrics{}, failure.New(failure.KindMeasurement, "no metrics service configured")
	}
	return env.Metrics.Measure(ctx, ops, agg)
}

// measureEach measures independent annotations with a single round trip
func measureEach(ctx context.Context, env *Env, ops ...program.AnnotateText) ([]metrics.TextMetrics, error) {
	if env == nil || env.Metrics == nil {
		return nil, failure.New(failure.KindMeasurement, "no metrics service configured")
	}
	return env.Metrics.MeasureEach(ctx, ops...)
}

// textBox returns where text measured as m lands on the canvas
func textBox(op program.AnnotateText, m metrics.TextMetrics) layout.Rect {
	return layout.Anchor(op.Gravity, op.Offset, program.Dimensions{Width: m.Width, Height: m.Height}, Canvas)
}

// centerOffset converts an absolute canvas point to a center-gravity offset
func centerOffset(pt program.Point) program.Point {
	return program.Point{X: pt.X - Width/2, Y: pt.Y - Height/2}
}
