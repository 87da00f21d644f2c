// Package layout places independently sized rectangles on a fixed canvas without overlap.
package layout

import (
	"image"
	"math"
)

// Size is a canvas or item size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle in canvas coordinates.
// X and Y are the top-left corner; Width and Height are the effective (scaled) size.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Overlaps reports whether a and b intersect.
// Touching edges do not count as overlap.
func Overlaps(a, b Rect) bool {
	return a.X < b.X+b.Width &&
		a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height &&
		a.Y+a.Height > b.Y
}

// Overlaps checks if r intersects other.
func (r Rect) Overlaps(other Rect) bool {
	return Overlaps(r, other)
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Within reports whether the rectangle lies inside a canvas of the given size.
func (r Rect) Within(canvas Size) bool {
	return r.X >= 0 && r.Y >= 0 &&
		r.X+r.Width <= canvas.Width &&
		r.Y+r.Height <= canvas.Height
}

// Bounds returns the image.Rectangle covering this rect, rounded to whole pixels.
func (r Rect) Bounds() image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	x1 := int(math.Round(r.X + r.Width))
	y1 := int(math.Round(r.Y + r.Height))
	return image.Rect(x0, y0, x1, y1)
}
