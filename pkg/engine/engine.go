// Package engine declares the boundary between the symbol bridge and the
// native mapping engine.
//
// The engine owns tiles, camera, style evaluation and GPU rendering; the
// bridge only needs the style image registry, symbol managers scoped to a
// layer, and symbol create/update/delete. Every method is called from the UI
// thread.
package engine

import (
	"image"

	"github.com/go-drift/driftmap/pkg/geo"
)

// Style is the native style registry of layers, sources and images.
type Style interface {
	// AddImage registers img under id. Registering an id again replaces the
	// previous bitmap.
	AddImage(id string, img image.Image) error

	// NewSymbolManager creates a symbol manager with its own layer, placed
	// directly above opts.AboveLayer, or on top of the style when it is empty.
	NewSymbolManager(opts ManagerOptions) (SymbolManager, error)
}

// GestureSource is implemented by styles that report symbol gestures.
// The handler runs on the UI thread and reports whether a symbol consumed
// the gesture.
type GestureSource interface {
	SetGestureHandler(handler func(Gesture) bool)
}

// ManagerOptions places a new symbol manager layer in the style.
type ManagerOptions struct {
	// AboveLayer is the layer id the new manager's layer is inserted above.
	AboveLayer string
}

// SymbolManager batches and renders a set of symbols in one layer.
type SymbolManager interface {
	// LayerID returns the style layer backing this manager.
	LayerID() string

	// Create adds a symbol and returns its native handle.
	Create(opts SymbolOptions) (*Symbol, error)

	// Update pushes the current fields of sym to the renderer.
	Update(sym *Symbol) error

	// Delete removes sym from the manager.
	Delete(sym *Symbol) error
}

// SymbolOptions configures a new symbol.
type SymbolOptions struct {
	LatLng     geo.LatLng `json:"latLng"`
	IconImage  string     `json:"iconImage"`
	IconAnchor Anchor     `json:"iconAnchor"`
}

// Symbol is the native handle of one rendered symbol. Mutate its fields and
// call SymbolManager.Update to apply them.
type Symbol struct {
	// ID is assigned by the manager and unique within it.
	ID         int64      `json:"id"`
	LatLng     geo.LatLng `json:"latLng"`
	IconImage  string     `json:"iconImage"`
	IconAnchor Anchor     `json:"iconAnchor"`
}

// GestureKind identifies a symbol gesture.
type GestureKind int

const (
	// GestureTap is a single tap on a symbol.
	GestureTap GestureKind = iota
	// GestureLongPress is a long press on a symbol.
	GestureLongPress
)

func (k GestureKind) String() string {
	switch k {
	case GestureTap:
		return "tap"
	case GestureLongPress:
		return "longPress"
	default:
		return "unknown"
	}
}

// Gesture is a hit-tested gesture on a symbol, as reported by the engine.
type Gesture struct {
	// ID identifies the physical gesture. The engine may deliver the same
	// gesture more than once (e.g. to overlapping layers); receivers act on
	// the first delivery only.
	ID uint64 `json:"id"`
	// LayerID is the layer of the manager that owns the symbol.
	LayerID string `json:"layerId"`
	// SymbolID is the hit symbol.
	SymbolID int64       `json:"symbolId"`
	Kind     GestureKind `json:"kind"`
}
