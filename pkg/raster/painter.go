package raster

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/go-drift/driftmap/pkg/graphics"
)

// arcSegments is the number of line segments used for the pin head outline.
const arcSegments = 72

// Painter draws an icon into a canvas. Paint must be a pure function of the
// painter's fields so equal keys always produce equal pixels.
type Painter interface {
	// Paint draws into c. c is cleared to transparent before the call.
	Paint(c *Canvas) error
	// Key identifies the painted content. Painters with equal keys must
	// paint identical pixels for the same canvas size.
	Key() string
}

// PinPainter draws a map pin: a round head with a ring, a tip pointing at the
// bottom centre of the canvas, an optional drop shadow, and a centred label.
// The pin is scaled uniformly to fit the canvas and bottom-aligned, so the tip
// always lands on the bottom edge.
type PinPainter struct {
	Label string
	// Style overrides DefaultPinStyle when non-nil.
	Style *PinStyle
}

func (p PinPainter) style() PinStyle {
	if p.Style != nil {
		return *p.Style
	}
	return DefaultPinStyle()
}

// Key implements Painter.
func (p PinPainter) Key() string {
	return "pin|" + p.Label + "|" + p.style().key()
}

// Paint implements Painter.
func (p PinPainter) Paint(c *Canvas) error {
	s := p.style()
	if err := s.Validate(); err != nil {
		return err
	}
	canvas := c.Size()
	icon := s.IconSize()
	scale := float32(min(canvas.Width/icon.Width, canvas.Height/icon.Height))

	w, h := float32(canvas.Width), float32(canvas.Height)
	r := float32(s.Diameter/2) * scale
	stroke := float32(s.StrokeWidth) * scale
	tipY := h
	cx := w / 2
	cy := tipY - float32(s.TipHeight)*scale - r

	outline := pinOutline(cx, cy, r, tipY)
	if pad := s.shadowPad(); pad > 0 {
		c.DropShadow(outline, s.ShadowColor, float32(s.ShadowRadius)*scale, scale)
	}
	c.FillPath(outline, s.StrokeColor)

	inner := r - stroke
	if inner <= 0 {
		return nil
	}
	// Insetting a wedge by the stroke width moves its apex up by stroke*d/r.
	innerTip := tipY - stroke*(tipY-cy)/r
	c.FillPath(pinOutline(cx, cy, inner, innerTip), s.FillColor)

	return p.paintLabel(c, s, scale, cx, cy, inner)
}

func (p PinPainter) paintLabel(c *Canvas, s PinStyle, scale, cx, cy, inner float32) error {
	if p.Label == "" {
		return nil
	}
	fit := s
	fit.FontSize = s.FontSize * float64(scale)
	fit.MinFontSize = s.MinFontSize * float64(scale)
	maxLines := max(s.MaxLines, 1)

	// Keep the text inside the chord of the interior circle.
	maxWidth := inner * 2 * 0.8
	layout, err := fitLabel(p.Label, maxWidth, maxLines, fit)
	if err != nil {
		return err
	}
	defer layout.face.Close()
	if len(layout.lines) == 0 {
		return nil
	}

	m := layout.face.Metrics()
	ascent := float32(m.Ascent) / 64
	descent := float32(m.Descent) / 64
	lineHeight := float32(m.Height) / 64
	total := lineHeight*float32(len(layout.lines)-1) + ascent + descent
	baseline := cy - total/2 + ascent

	clip := image.Rect(
		int(math32.Floor(cx-inner)), int(math32.Floor(cy-inner)),
		int(math32.Ceil(cx+inner)), int(math32.Ceil(cy+inner)),
	)
	for _, line := range layout.lines {
		x := cx - measure(layout.face, line)/2
		c.DrawText(layout.face, line, x, baseline, s.TextColor, clip)
		baseline += lineHeight
	}
	return nil
}

// pinOutline builds a single closed contour: a circle of radius r at (cx, cy)
// joined by two tangent lines to a tip at (cx, tipY).
func pinOutline(cx, cy, r, tipY float32) *Path {
	d := tipY - cy
	var alpha float32
	if d > r {
		alpha = math32.Acos(r / d)
	}
	start := math32.Pi/2 + alpha
	sweep := 2*math32.Pi - 2*alpha

	p := &Path{}
	p.MoveTo(cx, max(tipY, cy+r))
	for i := 0; i <= arcSegments; i++ {
		a := start + sweep*float32(i)/arcSegments
		p.LineTo(cx+r*math32.Cos(a), cy+r*math32.Sin(a))
	}
	p.Close()
	return p
}

var _ Painter = PinPainter{}

// fallbackColor is the fill of the icon shown when a painter fails.
var fallbackColor = graphics.RGB(0x75, 0x75, 0x75)
