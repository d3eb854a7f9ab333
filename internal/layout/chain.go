package layout

import (
	"github.com/thereceipt/titlecard-engine/internal/program"
)

// BlurSigma is the gaussian sigma used when a card asks for a blurred source
const BlurSigma = 60

// ResizeChain fits the source image to the canvas with a center crop and
// appends the optional post-filters. It does not depend on any text.
func ResizeChain(canvas program.Dimensions, blur, grayscale bool) []program.Op {
	ops := []program.Op{program.ResizeCrop{Size: canvas}}

	if !blur && !grayscale {
		return ops
	}

	filter := program.StyleFilter{Grayscale: grayscale}
	if blur {
		filter.Blur = BlurSigma
	}
	return append(ops, filter)
}

// ShadowOptions controls the look of a drop shadow
type ShadowOptions struct {
	Color   string
	Opacity float64
	Sigma   float64
	Offset  program.Point
}

// DefaultShadow is the soft dark shadow most variants use
var DefaultShadow = ShadowOptions{
	Color:   "black",
	Opacity: 95,
	Sigma:   2,
	Offset:  program.Point{X: 10, Y: 10},
}

// DropShadow wraps content in a single shadow operation. The wrapper is the
// same one clone and merge pair however many operations it holds.
func DropShadow(content []program.Op, opts ShadowOptions) program.ApplyShadow {
	wrapped := make([]program.Op, len(content))
	copy(wrapped, content)

	return program.ApplyShadow{
		Color:   opts.Color,
		Opacity: opts.Opacity,
		Sigma:   opts.Sigma,
		Offset:  opts.Offset,
		Content: wrapped,
	}
}
