package testing

import (
	"fmt"
	"image"
	"slices"

	"github.com/go-drift/driftmap/pkg/engine"
	"github.com/go-drift/driftmap/pkg/geo"
)

// Call is one recorded native call.
type Call struct {
	Method   string
	Layer    string
	SymbolID int64
	ImageID  string
	LatLng   geo.LatLng
	Anchor   engine.Anchor
}

// FakeStyle is an in-memory engine.Style that records every native call.
// Set the Fail* fields to make the next matching calls fail.
type FakeStyle struct {
	images  map[string]image.Image
	calls   []Call
	stack   []string
	layers  map[string]*FakeManager
	handler func(engine.Gesture) bool
	gesture uint64

	// FailAddImage, when set, is returned by AddImage.
	FailAddImage error
	// FailNewManager, when set, is returned by NewSymbolManager.
	FailNewManager error
}

var (
	_ engine.Style         = (*FakeStyle)(nil)
	_ engine.GestureSource = (*FakeStyle)(nil)
)

// NewFakeStyle returns an empty fake style.
func NewFakeStyle() *FakeStyle {
	return &FakeStyle{
		images: make(map[string]image.Image),
		layers: make(map[string]*FakeManager),
	}
}

// AddImage implements engine.Style.
func (s *FakeStyle) AddImage(id string, img image.Image) error {
	s.calls = append(s.calls, Call{Method: "addImage", ImageID: id})
	if s.FailAddImage != nil {
		return s.FailAddImage
	}
	s.images[id] = img
	return nil
}

// NewSymbolManager implements engine.Style. Layers are named
// "symbols-<n>" in creation order.
func (s *FakeStyle) NewSymbolManager(opts engine.ManagerOptions) (engine.SymbolManager, error) {
	s.calls = append(s.calls, Call{Method: "newManager", Layer: opts.AboveLayer})
	if s.FailNewManager != nil {
		return nil, s.FailNewManager
	}
	m := &FakeManager{
		style:   s,
		layer:   fmt.Sprintf("symbols-%d", len(s.layers)),
		symbols: make(map[int64]*engine.Symbol),
	}
	pos := len(s.stack)
	if opts.AboveLayer != "" {
		i := slices.Index(s.stack, opts.AboveLayer)
		if i < 0 {
			return nil, fmt.Errorf("fake style: unknown layer %q", opts.AboveLayer)
		}
		pos = i + 1
	}
	s.stack = slices.Insert(s.stack, pos, m.layer)
	s.layers[m.layer] = m
	return m, nil
}

// SetGestureHandler implements engine.GestureSource.
func (s *FakeStyle) SetGestureHandler(handler func(engine.Gesture) bool) {
	s.handler = handler
}

// Image returns the bitmap registered under id.
func (s *FakeStyle) Image(id string) (image.Image, bool) {
	img, ok := s.images[id]
	return img, ok
}

// ImageCount returns the number of distinct registered images.
func (s *FakeStyle) ImageCount() int {
	return len(s.images)
}

// LayerStack returns manager layer ids from bottom to top.
func (s *FakeStyle) LayerStack() []string {
	return slices.Clone(s.stack)
}

// Manager returns the manager owning layer.
func (s *FakeStyle) Manager(layer string) *FakeManager {
	return s.layers[layer]
}

// Calls returns every recorded call in order.
func (s *FakeStyle) Calls() []Call {
	return slices.Clone(s.calls)
}

// CallsTo returns the recorded calls of one method.
func (s *FakeStyle) CallsTo(method string) []Call {
	var out []Call
	for _, c := range s.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (s *FakeStyle) ResetCalls() {
	s.calls = s.calls[:0]
}

// Tap delivers a new tap gesture and reports whether it was consumed.
func (s *FakeStyle) Tap(layer string, symbolID int64) bool {
	return s.Deliver(s.NextGesture(layer, symbolID, engine.GestureTap))
}

// LongPress delivers a new long-press gesture.
func (s *FakeStyle) LongPress(layer string, symbolID int64) bool {
	return s.Deliver(s.NextGesture(layer, symbolID, engine.GestureLongPress))
}

// NextGesture builds a gesture with a fresh id without delivering it.
func (s *FakeStyle) NextGesture(layer string, symbolID int64, kind engine.GestureKind) engine.Gesture {
	s.gesture++
	return engine.Gesture{ID: s.gesture, LayerID: layer, SymbolID: symbolID, Kind: kind}
}

// Deliver sends g to the gesture handler, as the engine's hit test would.
func (s *FakeStyle) Deliver(g engine.Gesture) bool {
	if s.handler == nil {
		return false
	}
	return s.handler(g)
}

// FakeManager is the engine.SymbolManager created by FakeStyle.
type FakeManager struct {
	style   *FakeStyle
	layer   string
	symbols map[int64]*engine.Symbol
	nextID  int64

	FailCreate error
	FailUpdate error
	FailDelete error
}

var _ engine.SymbolManager = (*FakeManager)(nil)

// LayerID implements engine.SymbolManager.
func (m *FakeManager) LayerID() string { return m.layer }

// Create implements engine.SymbolManager.
func (m *FakeManager) Create(opts engine.SymbolOptions) (*engine.Symbol, error) {
	m.record("create", engine.Symbol{LatLng: opts.LatLng, IconImage: opts.IconImage, IconAnchor: opts.IconAnchor})
	if m.FailCreate != nil {
		return nil, m.FailCreate
	}
	m.nextID++
	sym := &engine.Symbol{
		ID:         m.nextID,
		LatLng:     opts.LatLng,
		IconImage:  opts.IconImage,
		IconAnchor: opts.IconAnchor,
	}
	m.symbols[sym.ID] = sym
	return sym, nil
}

// Update implements engine.SymbolManager.
func (m *FakeManager) Update(sym *engine.Symbol) error {
	m.record("update", *sym)
	if m.FailUpdate != nil {
		return m.FailUpdate
	}
	if m.symbols[sym.ID] != sym {
		return fmt.Errorf("fake manager %s: unknown symbol %d", m.layer, sym.ID)
	}
	return nil
}

// Delete implements engine.SymbolManager.
func (m *FakeManager) Delete(sym *engine.Symbol) error {
	m.record("delete", *sym)
	if m.FailDelete != nil {
		return m.FailDelete
	}
	if _, ok := m.symbols[sym.ID]; !ok {
		return fmt.Errorf("fake manager %s: unknown symbol %d", m.layer, sym.ID)
	}
	delete(m.symbols, sym.ID)
	return nil
}

// Len returns the number of live symbols.
func (m *FakeManager) Len() int { return len(m.symbols) }

// Symbol returns a live symbol by id.
func (m *FakeManager) Symbol(id int64) *engine.Symbol { return m.symbols[id] }

func (m *FakeManager) record(method string, sym engine.Symbol) {
	m.style.calls = append(m.style.calls, Call{
		Method:   method,
		Layer:    m.layer,
		SymbolID: sym.ID,
		ImageID:  sym.IconImage,
		LatLng:   sym.LatLng,
		Anchor:   sym.IconAnchor,
	})
}
