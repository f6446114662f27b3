package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/driftmap/pkg/engine"
)

func TestGestureFiresOncePerID(t *testing.T) {
	a, style := attached(t)
	taps := 0
	d := marker(0, 0, "A", 0)
	d.OnTap = func() { taps++ }
	n, err := a.Insert(d)
	require.NoError(t, err)

	g := style.NextGesture(n.LayerID(), n.Symbol().ID, engine.GestureTap)
	assert.True(t, style.Deliver(g))
	assert.True(t, style.Deliver(g), "duplicate delivery is still consumed")
	assert.Equal(t, 1, taps)

	assert.True(t, style.Tap(n.LayerID(), n.Symbol().ID))
	assert.Equal(t, 2, taps)
}

func TestGestureUsesLatestCallback(t *testing.T) {
	a, style := attached(t)
	var got []string
	d := marker(0, 0, "A", 0)
	d.OnTap = func() { got = append(got, "first") }
	n, err := a.Insert(d)
	require.NoError(t, err)

	d.OnTap = func() { got = append(got, "second") }
	require.NoError(t, n.Update(d))

	style.Tap(n.LayerID(), n.Symbol().ID)
	assert.Equal(t, []string{"second"}, got)
}

func TestGestureKinds(t *testing.T) {
	a, style := attached(t)
	var got []string
	d := marker(0, 0, "A", 0)
	d.OnLongPress = func() { got = append(got, "long") }
	n, err := a.Insert(d)
	require.NoError(t, err)

	assert.False(t, style.Tap(n.LayerID(), n.Symbol().ID), "no tap callback")
	assert.True(t, style.LongPress(n.LayerID(), n.Symbol().ID))
	assert.Equal(t, []string{"long"}, got)
}

func TestGestureRoutesByLayer(t *testing.T) {
	a, style := attached(t)
	var got []int
	for z := range 2 {
		d := marker(0, 0, "A", z)
		d.OnTap = func() { got = append(got, z) }
		_, err := a.Insert(d)
		require.NoError(t, err)
	}
	nodes := a.Nodes()
	require.Len(t, nodes, 2)
	// Both managers number their symbols from 1.
	require.Equal(t, nodes[0].Symbol().ID, nodes[1].Symbol().ID)

	style.Tap(nodes[1].LayerID(), nodes[1].Symbol().ID)
	assert.Equal(t, []int{1}, got)
	assert.False(t, style.Tap("unknown", 1))
}

func TestGesturePanicRecovered(t *testing.T) {
	reports := captureReports(t)
	a, style := attached(t)
	d := marker(0, 0, "A", 0)
	d.OnTap = func() { panic("boom") }
	n, err := a.Insert(d)
	require.NoError(t, err)

	var handled bool
	assert.NotPanics(t, func() {
		handled = style.Tap(n.LayerID(), n.Symbol().ID)
	})
	assert.True(t, handled)
	require.Len(t, reports.panics, 1)
	assert.Equal(t, "boom", reports.panics[0].Value)
}

func TestDispatchGestureDirect(t *testing.T) {
	a, _ := attached(t)
	taps := 0
	d := marker(0, 0, "A", 0)
	d.OnTap = func() { taps++ }
	n, err := a.Insert(d)
	require.NoError(t, err)

	g := engine.Gesture{LayerID: n.LayerID(), SymbolID: n.Symbol().ID, Kind: engine.GestureTap}
	assert.True(t, a.DispatchGesture(g))
	assert.True(t, a.DispatchGesture(g), "id zero is never de-duplicated")
	assert.Equal(t, 2, taps)
}

func TestHitTableForgetsOldestGestures(t *testing.T) {
	table := newHitTable()
	n := &Node{state: NodeActive, cbs: callbacks{onTap: func() {}}}
	table.add("layer", 1, n)

	for id := uint64(1); id <= recentGestures+1; id++ {
		require.True(t, table.dispatch(engine.Gesture{ID: id, LayerID: "layer", SymbolID: 1}))
	}
	assert.False(t, table.seen(1))
	assert.True(t, table.seen(recentGestures+1))
}
