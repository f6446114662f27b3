package graphics

import (
	"image"
	"math"
)

// Size represents width and height dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// IsPixelAligned reports whether both dimensions are positive whole numbers.
func (s Size) IsPixelAligned() bool {
	return s.Width >= 1 && s.Height >= 1 &&
		s.Width == math.Trunc(s.Width) && s.Height == math.Trunc(s.Height) &&
		!math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// Point returns the size as an integer image.Point, truncating fractions.
func (s Size) Point() image.Point {
	return image.Point{X: int(s.Width), Y: int(s.Height)}
}
