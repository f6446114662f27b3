package raster

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/chewxy/math32"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/go-drift/driftmap/pkg/graphics"
)

// kappa is the cubic Bézier control distance for a quarter circle.
const kappa = 0.5522847498

type pathVerb uint8

const (
	verbMove pathVerb = iota
	verbLine
	verbCube
	verbClose
)

type pathOp struct {
	verb pathVerb
	pts  [3][2]float32
}

// Path is a sequence of drawing commands in canvas pixel coordinates.
type Path struct {
	ops []pathOp
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float32) {
	p.ops = append(p.ops, pathOp{verb: verbMove, pts: [3][2]float32{{x, y}}})
}

// LineTo adds a straight segment to (x, y).
func (p *Path) LineTo(x, y float32) {
	p.ops = append(p.ops, pathOp{verb: verbLine, pts: [3][2]float32{{x, y}}})
}

// CubeTo adds a cubic Bézier segment.
func (p *Path) CubeTo(x1, y1, x2, y2, x3, y3 float32) {
	p.ops = append(p.ops, pathOp{verb: verbCube, pts: [3][2]float32{{x1, y1}, {x2, y2}, {x3, y3}}})
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.ops = append(p.ops, pathOp{verb: verbClose})
}

// AddCircle appends a closed circle approximated by four cubic segments.
func (p *Path) AddCircle(cx, cy, r float32) {
	k := r * kappa
	p.MoveTo(cx+r, cy)
	p.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	p.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	p.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	p.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	p.Close()
}

// IsEmpty reports whether the path has no commands.
func (p *Path) IsEmpty() bool {
	return len(p.ops) == 0
}

func (p *Path) replay(z *vector.Rasterizer, dx, dy float32) {
	for _, op := range p.ops {
		switch op.verb {
		case verbMove:
			z.MoveTo(op.pts[0][0]+dx, op.pts[0][1]+dy)
		case verbLine:
			z.LineTo(op.pts[0][0]+dx, op.pts[0][1]+dy)
		case verbCube:
			z.CubeTo(
				op.pts[0][0]+dx, op.pts[0][1]+dy,
				op.pts[1][0]+dx, op.pts[1][1]+dy,
				op.pts[2][0]+dx, op.pts[2][1]+dy,
			)
		case verbClose:
			z.ClosePath()
		}
	}
}

// Canvas is an off-screen RGBA surface painters draw into.
type Canvas struct {
	img *image.RGBA
	ras *vector.Rasterizer
}

func newCanvas(w, h int) *Canvas {
	return &Canvas{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		ras: vector.NewRasterizer(w, h),
	}
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() graphics.Size {
	b := c.img.Bounds()
	return graphics.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Image returns the backing bitmap.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// FillPath fills p with a solid color using the non-zero winding rule.
func (c *Canvas) FillPath(p *Path, col graphics.Color) {
	if p.IsEmpty() || col.Alpha() == 0 {
		return
	}
	b := c.img.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())
	p.replay(c.ras, 0, 0)
	c.ras.Draw(c.img, b, col.Uniform(), image.Point{})
}

// FillCircle fills a circle with a solid color.
func (c *Canvas) FillCircle(cx, cy, r float32, col graphics.Color) {
	if r <= 0 {
		return
	}
	var p Path
	p.AddCircle(cx, cy, r)
	c.FillPath(&p, col)
}

// DropShadow composites a blurred silhouette of p, shifted down by dy pixels.
func (c *Canvas) DropShadow(p *Path, col graphics.Color, radius, dy float32) {
	if p.IsEmpty() || col.Alpha() == 0 {
		return
	}
	b := c.img.Bounds()
	silhouette := image.NewRGBA(b)
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	p.replay(z, 0, math32.Round(dy))
	z.Draw(silhouette, b, col.Uniform(), image.Point{})

	var shadow image.Image = silhouette
	if radius > 0 {
		shadow = blur.Gaussian(silhouette, float64(radius))
	}
	draw.Draw(c.img, b, shadow, b.Min, draw.Over)
}

// DrawText draws s with its baseline origin at (x, baseline), clipped to clip.
func (c *Canvas) DrawText(face font.Face, s string, x, baseline float32, col graphics.Color, clip image.Rectangle) {
	if s == "" {
		return
	}
	dst, ok := c.img.SubImage(clip.Intersect(c.img.Bounds())).(*image.RGBA)
	if !ok || dst.Bounds().Empty() {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  col.Uniform(),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(baseline)},
	}
	d.DrawString(s)
}

func toFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(math32.Round(v * 64))
}
