// Package raster turns vector/text drawing descriptions into fixed-size
// bitmaps used as map icons.
//
// Rasterization is synchronous and deterministic: the same painter key and
// size always produce byte-identical pixels, which is what makes caching by
// content-derived image id safe. The package never talks to the map style;
// registering the bitmap is the caller's job.
package raster

import (
	"fmt"
	"image"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/go-drift/driftmap/pkg/errors"
	"github.com/go-drift/driftmap/pkg/graphics"
)

// DefaultImagePrefix prefixes derived style image ids.
const DefaultImagePrefix = "driftmap"

// RasterError describes a failed rasterization. It matches
// errors.ErrRasterization.
type RasterError struct {
	// Key is the painter key, empty for a nil painter.
	Key string
	// Size is the requested bitmap size.
	Size graphics.Size
	// Err is the underlying cause.
	Err error
}

func (e *RasterError) Error() string {
	return fmt.Sprintf("rasterize %q at %gx%g: %v", e.Key, e.Size.Width, e.Size.Height, e.Err)
}

func (e *RasterError) Unwrap() []error {
	return []error{errors.ErrRasterization, e.Err}
}

// Rasterize paints p onto a transparent surface of the given size. The size
// must be positive whole pixels. A painter error or panic is returned as a
// *RasterError.
func Rasterize(p Painter, size graphics.Size) (img *image.RGBA, err error) {
	if p == nil {
		return nil, &RasterError{Size: size, Err: errors.New("nil painter")}
	}
	key := p.Key()
	if !size.IsPixelAligned() {
		return nil, &RasterError{Key: key, Size: size, Err: errors.New("size must be positive whole pixels")}
	}

	c := newCanvas(int(size.Width), int(size.Height))
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = &RasterError{Key: key, Size: size, Err: fmt.Errorf("painter panicked: %v", r)}
		}
	}()
	if err := p.Paint(c); err != nil {
		return nil, &RasterError{Key: key, Size: size, Err: err}
	}
	return c.Image(), nil
}

// ImageID derives a style image id from a painter key and bitmap size.
// Distinct keys or sizes give distinct ids, up to 64-bit hash collisions.
func ImageID(prefix, key string, size graphics.Size) string {
	if prefix == "" {
		prefix = DefaultImagePrefix
	}
	h := xxhash.New()
	h.WriteString(key)
	h.WriteString("|")
	h.WriteString(strconv.FormatFloat(size.Width, 'g', -1, 64))
	h.WriteString("x")
	h.WriteString(strconv.FormatFloat(size.Height, 'g', -1, 64))
	return fmt.Sprintf("%s-%016x", prefix, h.Sum64())
}

// Fallback returns the icon shown in place of one that failed to rasterize:
// an unlabeled grey pin. Invalid sizes fall back to the default pin size.
func Fallback(size graphics.Size) *image.RGBA {
	style := DefaultPinStyle()
	style.FillColor = fallbackColor
	if !size.IsPixelAligned() {
		size = style.IconSize()
	}
	img, err := Rasterize(PinPainter{Style: &style}, size)
	if err != nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return img
}
