package symbol

import (
	"github.com/go-drift/driftmap/pkg/engine"
	"github.com/go-drift/driftmap/pkg/geo"
	"github.com/go-drift/driftmap/pkg/graphics"
	"github.com/go-drift/driftmap/pkg/raster"
)

// Descriptor is the immutable description of one marker for one frame.
// A newer descriptor applied to the same node supersedes the previous one.
type Descriptor struct {
	// Position is the geographic point the icon anchor is pinned to.
	Position geo.LatLng
	// Label is drawn inside the default pin icon.
	Label string
	// ImageID names the style image. Empty derives it from the icon content,
	// so markers with identical icons share one registered image.
	ImageID string
	// Anchor is the icon point pinned to Position. The zero value is
	// engine.AnchorBottom, which pins the tip of the default pin.
	Anchor engine.Anchor
	// ZIndex selects the draw-order layer. It is fixed for a node's lifetime.
	ZIndex int
	// Style overrides the default pin style.
	Style *raster.PinStyle
	// Painter replaces the default pin painter.
	Painter raster.Painter
	// IconSize overrides the bitmap size. Zero uses the pin style's size.
	IconSize graphics.Size

	OnTap       func()
	OnLongPress func()
}

func (d Descriptor) painter() raster.Painter {
	if d.Painter != nil {
		return d.Painter
	}
	return raster.PinPainter{Label: d.Label, Style: d.Style}
}

func (d Descriptor) iconSize() graphics.Size {
	if d.IconSize != (graphics.Size{}) {
		return d.IconSize
	}
	if d.Style != nil {
		return d.Style.IconSize()
	}
	return raster.DefaultPinStyle().IconSize()
}

// imageID returns the explicit image id or derives one from the icon content.
func (d Descriptor) imageID(prefix string) string {
	if d.ImageID != "" {
		return d.ImageID
	}
	return raster.ImageID(prefix, d.painter().Key(), d.iconSize())
}

// callbacks holds a node's gesture callbacks. It is replaced wholesale on
// every update so dispatch always sees the latest pair.
type callbacks struct {
	onTap       func()
	onLongPress func()
}

func (c callbacks) forKind(kind engine.GestureKind) func() {
	switch kind {
	case engine.GestureTap:
		return c.onTap
	case engine.GestureLongPress:
		return c.onLongPress
	default:
		return nil
	}
}
