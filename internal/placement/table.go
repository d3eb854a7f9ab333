package placement

import "github.com/thereceipt/titlecard-engine/internal/program"

// Candidate is a named spot for secondary text, relative to the center of
// a numeral character at BaseSize
type Candidate struct {
	Name     string        `json:"name"`
	Offset   program.Point `json:"offset"`
	Rotation float64       `json:"rotation"`
}

var (
	above = Candidate{Name: "above", Offset: program.Point{Y: -560}}
	below = Candidate{Name: "below", Offset: program.Point{Y: 560}}
)

// Placements lists the candidates available around each numeral character
var Placements = map[rune][]Candidate{
	'I': {
		above, below,
		{Name: "left", Offset: program.Point{X: -260}, Rotation: -90},
		{Name: "right", Offset: program.Point{X: 260}, Rotation: 90},
	},
	'V': {
		above, below,
		{Name: "left slant", Offset: program.Point{X: -260, Y: -120}, Rotation: -70},
		{Name: "right slant", Offset: program.Point{X: 260, Y: -120}, Rotation: 70},
	},
	'X': {
		above, below,
		{Name: "upper left", Offset: program.Point{X: -250, Y: -250}, Rotation: -45},
		{Name: "lower right", Offset: program.Point{X: 250, Y: 250}, Rotation: -45},
	},
	'L': {
		above,
		{Name: "inner", Offset: program.Point{X: 140, Y: -140}},
		{Name: "left", Offset: program.Point{X: -220}, Rotation: -90},
	},
	'C': {
		above, below,
		{Name: "inner", Offset: program.Point{X: 60}},
	},
	'D': {
		above, below,
		{Name: "inner", Offset: program.Point{X: -20}},
		{Name: "right", Offset: program.Point{X: 300}, Rotation: 90},
	},
	'M': {
		above, below,
		{Name: "left", Offset: program.Point{X: -320}, Rotation: -90},
		{Name: "right", Offset: program.Point{X: 320}, Rotation: 90},
	},
}
