package platform

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/driftmap/pkg/engine"
	"github.com/go-drift/driftmap/pkg/errors"
	"github.com/go-drift/driftmap/pkg/geo"
	"github.com/go-drift/driftmap/pkg/symbol"
)

func TestChannelStyleAddImage(t *testing.T) {
	bridge := setupTestBridge(t)
	style := NewChannelStyle(7)

	img := image.NewRGBA(image.Rect(0, 0, 12, 20))
	require.NoError(t, style.AddImage("pin-a", img))

	call := bridge.last("addImage")
	assert.Equal(t, StyleChannel, call.channel)
	assert.EqualValues(t, 7, call.args["mapId"])
	assert.Equal(t, "pin-a", call.args["imageId"])
	assert.EqualValues(t, 12, call.args["width"])
	assert.EqualValues(t, 20, call.args["height"])

	raw, err := base64.StdEncoding.DecodeString(call.args["png"].(string))
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestChannelStyleSymbolManager(t *testing.T) {
	bridge := setupTestBridge(t)
	style := NewChannelStyle(1)

	m, err := style.NewSymbolManager(engine.ManagerOptions{AboveLayer: "roads"})
	require.NoError(t, err)
	assert.Equal(t, "native-symbols-1", m.LayerID())
	assert.Equal(t, "roads", bridge.last("newSymbolManager").args["aboveLayer"])

	sym, err := m.Create(engine.SymbolOptions{
		LatLng:     geo.LatLng{Lat: 37, Lng: -122},
		IconImage:  "pin-a",
		IconAnchor: engine.AnchorBottom,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, sym.ID)

	create := bridge.last("createSymbol")
	assert.Equal(t, "native-symbols-1", create.args["layerId"])
	assert.Equal(t, map[string]any{
		"latLng":     map[string]any{"lat": 37.0, "lng": -122.0},
		"iconImage":  "pin-a",
		"iconAnchor": "bottom",
	}, create.args["symbol"])

	sym.LatLng = geo.LatLng{Lat: 1, Lng: 2}
	require.NoError(t, m.Update(sym))
	update := bridge.last("updateSymbol").args["symbol"].(map[string]any)
	assert.EqualValues(t, 1, update["id"])
	assert.Equal(t, map[string]any{"lat": 1.0, "lng": 2.0}, update["latLng"])

	require.NoError(t, m.Delete(sym))
	assert.EqualValues(t, 1, bridge.last("deleteSymbol").args["id"])
}

func TestChannelStyleMalformedResults(t *testing.T) {
	SetupTestBridge(t.Cleanup)
	style := NewChannelStyle(1)

	_, err := style.NewSymbolManager(engine.ManagerOptions{})
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestChannelStyleNativeError(t *testing.T) {
	bridge := setupTestBridge(t)
	boom := NewChannelError("E_STYLE", "style not loaded")
	bridge.fail = map[string]error{"newSymbolManager": boom}

	_, err := NewChannelStyle(1).NewSymbolManager(engine.ManagerOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestChannelStyleGestures(t *testing.T) {
	setupTestBridge(t)
	style := NewChannelStyle(3)
	other := NewChannelStyle(4)

	var got []engine.Gesture
	style.SetGestureHandler(func(g engine.Gesture) bool {
		got = append(got, g)
		return true
	})
	other.SetGestureHandler(func(engine.Gesture) bool {
		t.Error("gesture routed to the wrong map")
		return false
	})

	payload := `{"mapId":3,"id":9,"layerId":"native-symbols-1","symbolId":5,"kind":"longPress"}`
	require.NoError(t, HandleEvent(GestureChannel, []byte(payload)))

	require.Len(t, got, 1)
	assert.Equal(t, engine.Gesture{
		ID:       9,
		LayerID:  "native-symbols-1",
		SymbolID: 5,
		Kind:     engine.GestureLongPress,
	}, got[0])

	require.NoError(t, HandleEvent(GestureChannel, []byte(`{"mapId":99,"symbolId":1}`)))
	assert.Len(t, got, 1)
}

func TestChannelStyleBadGestureReported(t *testing.T) {
	setupTestBridge(t)
	var reported []*errors.MapError
	errors.SetHandler(recordingHandler(func(err *errors.MapError) { reported = append(reported, err) }))
	t.Cleanup(func() { errors.SetHandler(nil) })

	NewChannelStyle(1)
	require.NoError(t, HandleEvent(GestureChannel, []byte(`{"mapId":1,"symbolId":2,"kind":"swipe"}`)))

	require.Len(t, reported, 1)
	assert.Equal(t, errors.KindParsing, reported[0].Kind)
	assert.Equal(t, GestureChannel, reported[0].Channel)
	assert.ErrorIs(t, reported[0], ErrInvalidArguments)
}

func TestChannelStyleDispose(t *testing.T) {
	setupTestBridge(t)
	style := NewChannelStyle(2)
	called := false
	style.SetGestureHandler(func(engine.Gesture) bool { called = true; return true })

	style.Dispose()
	style.Dispose()

	assert.ErrorIs(t, style.AddImage("x", image.NewRGBA(image.Rect(0, 0, 1, 1))), ErrDisposed)
	require.NoError(t, HandleEvent(GestureChannel, []byte(`{"mapId":2,"symbolId":1}`)))
	assert.False(t, called)
}

func TestChannelStyleDrivesApplier(t *testing.T) {
	bridge := setupTestBridge(t)
	style := NewChannelStyle(1)

	tapped := 0
	a := symbol.NewApplier(symbol.WithScheduler(Post))
	require.NoError(t, a.AttachStyle(style))
	n, err := a.Insert(symbol.Descriptor{
		Position: geo.LatLng{Lat: 37, Lng: -122},
		Label:    "A",
		OnTap:    func() { tapped++ },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"newSymbolManager", "addImage", "createSymbol"}, bridge.methods())
	assert.Equal(t, "native-symbols-1", n.LayerID())

	bridge.reset()
	require.NoError(t, n.Update(symbol.Descriptor{
		Position: geo.LatLng{Lat: 38, Lng: -122},
		Label:    "A",
		OnTap:    func() { tapped++ },
	}))
	assert.Equal(t, []string{"updateSymbol"}, bridge.methods())

	payload := `{"mapId":1,"id":1,"layerId":"native-symbols-1","symbolId":1,"kind":"tap"}`
	require.NoError(t, HandleEvent(GestureChannel, []byte(payload)))
	require.NoError(t, HandleEvent(GestureChannel, []byte(payload)))
	assert.Equal(t, 1, tapped)
}

type recordingHandler func(*errors.MapError)

func (h recordingHandler) HandleError(err *errors.MapError) { h(err) }
func (recordingHandler) HandlePanic(*errors.PanicError)     {}
