package placement

import "math"

const (
	// BaseSize is the point size CharWidths was measured at
	BaseSize = 1250
	// Margin is the horizontal space kept clear around the numeral
	Margin = 400
	// LineSpacing separates the centers of two-line numerals
	LineSpacing = 1000
)

// CharWidths holds the rendered width of each numeral character at BaseSize
var CharWidths = map[rune]float64{
	'I': 130,
	'V': 350,
	'X': 340,
	'L': 280,
	'C': 300,
	'D': 360,
	'M': 440,
}

const fallbackCharWidth = 300

// EstimateWidth sums the table widths of s at BaseSize
func EstimateWidth(s string) float64 {
	var w float64
	for _, r := range s {
		cw, ok := CharWidths[r]
		if !ok {
			cw = fallbackCharWidth
		}
		w += cw
	}
	return w
}

// RenderScale returns the factor that fits the widest line within the
// canvas minus Margin. It is 1.0 when the numeral already fits.
func RenderScale(lines []string, canvasWidth float64) float64 {
	var widest float64
	for _, l := range lines {
		widest = math.Max(widest, EstimateWidth(l))
	}
	avail := canvasWidth - Margin
	if widest <= avail || widest == 0 {
		return 1.0
	}
	return avail / widest
}
