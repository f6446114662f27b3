package platform

import (
	"bytes"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/go-drift/driftmap/pkg/engine"
)

// Channel names used by ChannelStyle.
const (
	StyleChannel   = "drift/maps/style"
	GestureChannel = "drift/maps/gestures"
)

var (
	mapService     *mapServiceState
	mapServiceOnce sync.Once

	mapStyles   = map[int64]*ChannelStyle{}
	mapStylesMu sync.RWMutex
)

type mapServiceState struct {
	channel  *MethodChannel
	gestures *Stream[mapGesture]
}

// mapGesture is a gesture event addressed to one map view.
type mapGesture struct {
	mapID int64
	engine.Gesture
}

func ensureMapService() *mapServiceState {
	mapServiceOnce.Do(func() {
		svc := &mapServiceState{
			channel:  NewMethodChannel(StyleChannel),
			gestures: NewStream(NewEventChannel(GestureChannel), parseMapGesture),
		}
		// One listener routes gestures of every map view.
		svc.gestures.Listen(func(g mapGesture) {
			mapStylesMu.RLock()
			s := mapStyles[g.mapID]
			mapStylesMu.RUnlock()
			if s == nil {
				return
			}
			Dispatch(func() { s.deliver(g.Gesture) })
		})
		mapService = svc
	})
	return mapService
}

// ChannelStyle is the engine.Style of one native map view, reached over
// the style method channel. Gestures hit-tested by the native view arrive on
// the gesture event channel and are delivered on the UI thread.
//
// Style calls must be made from the UI thread. Call Dispose when the map
// view goes away.
type ChannelStyle struct {
	svc      *mapServiceState
	mapID    int64
	disposed atomic.Bool

	mu      sync.Mutex
	handler func(engine.Gesture) bool
}

var (
	_ engine.Style         = (*ChannelStyle)(nil)
	_ engine.GestureSource = (*ChannelStyle)(nil)
)

// NewChannelStyle returns the style of the native map view mapID. A later
// style for the same id replaces this one in gesture routing.
func NewChannelStyle(mapID int64) *ChannelStyle {
	s := &ChannelStyle{svc: ensureMapService(), mapID: mapID}
	mapStylesMu.Lock()
	mapStyles[mapID] = s
	mapStylesMu.Unlock()
	return s
}

// MapID returns the native map view id.
func (s *ChannelStyle) MapID() int64 { return s.mapID }

func (s *ChannelStyle) invoke(method string, args map[string]any) (any, error) {
	if s.disposed.Load() {
		return nil, ErrDisposed
	}
	args["mapId"] = s.mapID
	return s.svc.channel.Invoke(method, args)
}

// AddImage implements engine.Style. The bitmap is sent PNG-encoded.
func (s *ChannelStyle) AddImage(id string, img image.Image) error {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return fmt.Errorf("encode image %s: %w", id, err)
	}
	b := img.Bounds()
	_, err := s.invoke("addImage", map[string]any{
		"imageId": id,
		"width":   b.Dx(),
		"height":  b.Dy(),
		"png":     buf.Bytes(),
	})
	return err
}

// NewSymbolManager implements engine.Style.
func (s *ChannelStyle) NewSymbolManager(opts engine.ManagerOptions) (engine.SymbolManager, error) {
	res, err := s.invoke("newSymbolManager", map[string]any{
		"aboveLayer": opts.AboveLayer,
	})
	if err != nil {
		return nil, err
	}
	layer := parseString(parseMap(res)["layerId"])
	if layer == "" {
		return nil, fmt.Errorf("%w: newSymbolManager returned no layerId", ErrInvalidArguments)
	}
	return &channelManager{style: s, layer: layer}, nil
}

// SetGestureHandler implements engine.GestureSource.
func (s *ChannelStyle) SetGestureHandler(handler func(engine.Gesture) bool) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

func (s *ChannelStyle) deliver(g engine.Gesture) {
	if s.disposed.Load() {
		return
	}
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h != nil {
		h(g)
	}
}

// Dispose stops gesture delivery and makes further calls fail with
// ErrDisposed.
func (s *ChannelStyle) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	mapStylesMu.Lock()
	if mapStyles[s.mapID] == s {
		delete(mapStyles, s.mapID)
	}
	mapStylesMu.Unlock()
	s.SetGestureHandler(nil)
}

// channelManager is a symbol manager living in the native style.
type channelManager struct {
	style *ChannelStyle
	layer string
}

func (m *channelManager) LayerID() string { return m.layer }

func (m *channelManager) Create(opts engine.SymbolOptions) (*engine.Symbol, error) {
	res, err := m.style.invoke("createSymbol", map[string]any{
		"layerId": m.layer,
		"symbol":  opts,
	})
	if err != nil {
		return nil, err
	}
	id, ok := toInt64(parseMap(res)["id"])
	if !ok {
		return nil, fmt.Errorf("%w: createSymbol returned no id", ErrInvalidArguments)
	}
	return &engine.Symbol{
		ID:         id,
		LatLng:     opts.LatLng,
		IconImage:  opts.IconImage,
		IconAnchor: opts.IconAnchor,
	}, nil
}

func (m *channelManager) Update(sym *engine.Symbol) error {
	_, err := m.style.invoke("updateSymbol", map[string]any{
		"layerId": m.layer,
		"symbol":  sym,
	})
	return err
}

func (m *channelManager) Delete(sym *engine.Symbol) error {
	_, err := m.style.invoke("deleteSymbol", map[string]any{
		"layerId": m.layer,
		"id":      sym.ID,
	})
	return err
}

// parseMapGesture decodes {"mapId", "id", "layerId", "symbolId", "kind"}.
func parseMapGesture(data any) (mapGesture, error) {
	m := parseMap(data)
	if m == nil {
		return mapGesture{}, fmt.Errorf("%w: gesture payload %T", ErrInvalidArguments, data)
	}
	mapID, ok := toInt64(m["mapId"])
	if !ok {
		return mapGesture{}, fmt.Errorf("%w: gesture without mapId", ErrInvalidArguments)
	}
	symbolID, ok := toInt64(m["symbolId"])
	if !ok {
		return mapGesture{}, fmt.Errorf("%w: gesture without symbolId", ErrInvalidArguments)
	}
	id, _ := toUint64(m["id"])
	var kind engine.GestureKind
	switch k := parseString(m["kind"]); k {
	case "", engine.GestureTap.String():
		kind = engine.GestureTap
	case engine.GestureLongPress.String():
		kind = engine.GestureLongPress
	default:
		return mapGesture{}, fmt.Errorf("%w: unknown gesture kind %q", ErrInvalidArguments, k)
	}
	return mapGesture{
		mapID: mapID,
		Gesture: engine.Gesture{
			ID:       id,
			LayerID:  parseString(m["layerId"]),
			SymbolID: symbolID,
			Kind:     kind,
		},
	}, nil
}
