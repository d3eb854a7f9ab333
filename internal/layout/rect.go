// Package layout holds the deterministic geometry helpers shared by card
// variants.
package layout

import (
	"github.com/thereceipt/titlecard-engine/internal/program"
)

// Rect is an axis-aligned rectangle. Y grows downward.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// RectFromCenter builds a rectangle of the given size around a center point
func RectFromCenter(center program.Point, width, height float64) Rect {
	return Rect{
		Left:   center.X - width/2,
		Top:    center.Y - height/2,
		Right:  center.X + width/2,
		Bottom: center.Y + height/2,
	}
}

// Width of the rectangle
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height of the rectangle
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Center of the rectangle
func (r Rect) Center() program.Point {
	return program.Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// Intersects reports whether r and o overlap with a positive area.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// Inside reports whether r lies fully within bounds
func (r Rect) Inside(bounds Rect) bool {
	return r.Left >= bounds.Left && r.Right <= bounds.Right &&
		r.Top >= bounds.Top && r.Bottom <= bounds.Bottom
}

// Expand grows r by dx on the left and right and dy on the top and bottom
func (r Rect) Expand(dx, dy float64) Rect {
	return Rect{Left: r.Left - dx, Top: r.Top - dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Canvas returns the rectangle covering a canvas of the given size
func Canvas(size program.Dimensions) Rect {
	return Rect{Right: size.Width, Bottom: size.Height}
}

// Anchor returns where an element of the given size lands on the canvas
// when drawn with gravity and offset, following ImageMagick semantics
// (offsets point inward from the anchored edge, and +y points down for
// center gravity).
func Anchor(gravity program.Gravity, offset program.Point, size, canvas program.Dimensions) Rect {
	var left, top float64

	switch gravity {
	case program.GravityNorthWest, program.GravityWest, program.GravitySouthWest:
		left = offset.X
	case program.GravityNorthEast, program.GravityEast, program.GravitySouthEast:
		left = canvas.Width - size.Width - offset.X
	default:
		left = (canvas.Width-size.Width)/2 + offset.X
	}

	switch gravity {
	case program.GravityNorthWest, program.GravityNorth, program.GravityNorthEast:
		top = offset.Y
	case program.GravitySouthWest, program.GravitySouth, program.GravitySouthEast:
		top = canvas.Height - size.Height - offset.Y
	default:
		top = (canvas.Height-size.Height)/2 + offset.Y
	}

	return Rect{Left: left, Top: top, Right: left + size.Width, Bottom: top + size.Height}
}
