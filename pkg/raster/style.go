package raster

import (
	"fmt"
	"math"

	"github.com/go-drift/driftmap/pkg/errors"
	"github.com/go-drift/driftmap/pkg/graphics"
)

// PinStyle holds the visual constants of a pin marker. All lengths are in
// pixels; font sizes are in pixels at 72 DPI.
type PinStyle struct {
	// Diameter of the circular head, stroke included.
	Diameter float64 `yaml:"diameter" json:"diameter"`
	// StrokeWidth is the width of the ring drawn around the head.
	StrokeWidth float64 `yaml:"strokeWidth" json:"strokeWidth"`
	// TipHeight is the distance from the bottom of the head to the tip.
	TipHeight float64 `yaml:"tipHeight" json:"tipHeight"`
	// FontSize is the preferred label size.
	FontSize float64 `yaml:"fontSize" json:"fontSize"`
	// MinFontSize is the smallest size a long label shrinks to before it is
	// wrapped and truncated.
	MinFontSize float64 `yaml:"minFontSize" json:"minFontSize"`
	// MaxLines caps how many lines a label may wrap onto.
	MaxLines int `yaml:"maxLines" json:"maxLines"`
	// Bold selects the bold face.
	Bold bool `yaml:"bold" json:"bold"`

	FillColor   graphics.Color `yaml:"fillColor" json:"fillColor"`
	StrokeColor graphics.Color `yaml:"strokeColor" json:"strokeColor"`
	TextColor   graphics.Color `yaml:"textColor" json:"textColor"`
	ShadowColor graphics.Color `yaml:"shadowColor" json:"shadowColor"`

	// ShadowRadius is the blur radius of the drop shadow. Zero disables it.
	ShadowRadius float64 `yaml:"shadowRadius" json:"shadowRadius"`
}

// DefaultPinStyle returns the compile-time default pin style.
func DefaultPinStyle() PinStyle {
	return PinStyle{
		Diameter:     48,
		StrokeWidth:  3,
		TipHeight:    12,
		FontSize:     16,
		MinFontSize:  10,
		MaxLines:     2,
		Bold:         true,
		FillColor:    graphics.RGB(0x1E, 0x88, 0xE5),
		StrokeColor:  graphics.ColorWhite,
		TextColor:    graphics.ColorWhite,
		ShadowColor:  graphics.RGBA8(0, 0, 0, 0x59),
		ShadowRadius: 2,
	}
}

// errInvalidStyle is wrapped by Validate failures.
var errInvalidStyle = errors.New("invalid pin style")

// Validate rejects styles that cannot produce a well-formed pin.
func (s PinStyle) Validate() error {
	switch {
	case !(s.Diameter > 0) || math.IsInf(s.Diameter, 0):
		return fmt.Errorf("%w: diameter %v must be positive", errInvalidStyle, s.Diameter)
	case s.StrokeWidth < 0:
		return fmt.Errorf("%w: stroke width %v is negative", errInvalidStyle, s.StrokeWidth)
	case s.StrokeWidth*2 >= s.Diameter:
		return fmt.Errorf("%w: stroke width %v leaves no interior in diameter %v", errInvalidStyle, s.StrokeWidth, s.Diameter)
	case s.TipHeight < 0:
		return fmt.Errorf("%w: tip height %v is negative", errInvalidStyle, s.TipHeight)
	case !(s.FontSize > 0):
		return fmt.Errorf("%w: font size %v must be positive", errInvalidStyle, s.FontSize)
	case !(s.MinFontSize > 0):
		return fmt.Errorf("%w: min font size %v must be positive", errInvalidStyle, s.MinFontSize)
	case s.ShadowRadius < 0:
		return fmt.Errorf("%w: shadow radius %v is negative", errInvalidStyle, s.ShadowRadius)
	}
	return nil
}

// shadowPad is the margin kept around the head for the blurred shadow.
func (s PinStyle) shadowPad() float64 {
	if s.ShadowRadius <= 0 || s.ShadowColor.Alpha() == 0 {
		return 0
	}
	return math.Ceil(s.ShadowRadius * 2)
}

// IconSize returns the bitmap size that holds the pin at 1:1 scale. The tip
// touches the bottom edge so a bottom anchor pins the tip to the coordinate.
func (s PinStyle) IconSize() graphics.Size {
	pad := s.shadowPad()
	return graphics.Size{
		Width:  math.Ceil(s.Diameter + 2*pad),
		Height: math.Ceil(pad + s.Diameter + s.TipHeight),
	}
}

// key is a stable textual form of every field that affects pixels.
func (s PinStyle) key() string {
	return fmt.Sprintf("d=%g,sw=%g,tip=%g,fs=%g,mfs=%g,ml=%d,b=%t,fill=%s,stroke=%s,text=%s,shadow=%s,sr=%g",
		s.Diameter, s.StrokeWidth, s.TipHeight, s.FontSize, s.MinFontSize, s.MaxLines, s.Bold,
		s.FillColor, s.StrokeColor, s.TextColor, s.ShadowColor, s.ShadowRadius)
}
