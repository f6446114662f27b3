package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/driftmap/pkg/errors"
	"github.com/go-drift/driftmap/pkg/geo"
	"github.com/go-drift/driftmap/pkg/symbol"
	maptest "github.com/go-drift/driftmap/pkg/testing"
)

func setup(t *testing.T) (*Composition, *maptest.FakeStyle) {
	t.Helper()
	style := maptest.NewFakeStyle()
	a := symbol.NewApplier()
	require.NoError(t, a.AttachStyle(style))
	return New(a), style
}

func at(key string, lat, lng float64, z int) Marker {
	return Marker{Key: key, Position: geo.LatLng{Lat: lat, Lng: lng}, Label: key, ZIndex: z}
}

func methods(calls []maptest.Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

func TestApplyDiff(t *testing.T) {
	tests := []struct {
		name  string
		first []Marker
		next  []Marker
		want  []string
	}{
		{
			name: "insert",
			next: []Marker{at("a", 0, 0, 0)},
			want: []string{"newManager", "addImage", "create"},
		},
		{
			name:  "unchanged",
			first: []Marker{at("a", 0, 0, 0)},
			next:  []Marker{at("a", 0, 0, 0)},
			want:  []string{},
		},
		{
			name:  "move",
			first: []Marker{at("a", 0, 0, 0)},
			next:  []Marker{at("a", 1, 1, 0)},
			want:  []string{"update"},
		},
		{
			name:  "vanish",
			first: []Marker{at("a", 0, 0, 0), at("b", 0, 0, 0)},
			next:  []Marker{at("b", 0, 0, 0)},
			want:  []string{"delete"},
		},
		{
			name:  "z change replaces",
			first: []Marker{at("a", 0, 0, 0)},
			next:  []Marker{at("a", 0, 0, 1)},
			want:  []string{"delete", "newManager", "create"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, style := setup(t)
			require.NoError(t, c.Apply(tt.first))
			style.ResetCalls()

			require.NoError(t, c.Apply(tt.next))
			assert.Equal(t, tt.want, methods(style.Calls()))
			assert.Equal(t, len(tt.next), c.Len())
		})
	}
}

func TestApplyKeepsNodeIdentity(t *testing.T) {
	c, _ := setup(t)
	require.NoError(t, c.Apply([]Marker{at("a", 0, 0, 0)}))
	before, ok := c.Node("a")
	require.True(t, ok)
	sym := before.Symbol()

	require.NoError(t, c.Apply([]Marker{at("a", 5, 5, 0)}))
	after, _ := c.Node("a")
	assert.Same(t, before, after)
	assert.Same(t, sym, after.Symbol())
}

func TestApplyZIndexChangeDisposesOldNode(t *testing.T) {
	c, _ := setup(t)
	require.NoError(t, c.Apply([]Marker{at("a", 0, 0, 0)}))
	old, _ := c.Node("a")

	require.NoError(t, c.Apply([]Marker{at("a", 0, 0, 1)}))
	replaced, _ := c.Node("a")
	assert.Equal(t, symbol.NodeDisposed, old.State())
	assert.Equal(t, symbol.NodeActive, replaced.State())
	assert.Equal(t, 1, replaced.ZIndex())
}

func TestApplyDuplicateKeyLastWins(t *testing.T) {
	c, style := setup(t)
	require.NoError(t, c.Apply([]Marker{at("a", 0, 0, 0), at("a", 2, 2, 0)}))

	assert.Len(t, style.CallsTo("create"), 1)
	n, _ := c.Node("a")
	assert.Equal(t, geo.LatLng{Lat: 2, Lng: 2}, n.Symbol().LatLng)
}

func TestApplyIsolatesFailures(t *testing.T) {
	c, _ := setup(t)
	err := c.Apply([]Marker{
		at("bad", 200, 0, 0),
		at("good", 1, 1, 0),
	})
	require.ErrorIs(t, err, geo.ErrInvalidCoordinates)
	assert.Contains(t, err.Error(), `marker "bad"`)

	_, ok := c.Node("good")
	assert.True(t, ok)
	_, ok = c.Node("bad")
	assert.False(t, ok)
}

func TestApplyRetriesFailedInsert(t *testing.T) {
	a := symbol.NewApplier()
	c := New(a)

	err := c.Apply([]Marker{at("a", 0, 0, 0)})
	require.ErrorIs(t, err, errors.ErrEngineNotReady)
	assert.Zero(t, c.Len())

	require.NoError(t, a.AttachStyle(maptest.NewFakeStyle()))
	require.NoError(t, c.Apply([]Marker{at("a", 0, 0, 0)}))
	assert.Equal(t, 1, c.Len())
}

func TestApplyCallbacks(t *testing.T) {
	c, style := setup(t)
	var got []string
	m := at("a", 0, 0, 0)
	m.OnTap = func() { got = append(got, "v1") }
	require.NoError(t, c.Apply([]Marker{m}))

	m.OnTap = func() { got = append(got, "v2") }
	style.ResetCalls()
	require.NoError(t, c.Apply([]Marker{m}))
	assert.Empty(t, style.Calls(), "callback swap needs no native call")

	n, _ := c.Node("a")
	style.Tap(n.LayerID(), n.Symbol().ID)
	assert.Equal(t, []string{"v2"}, got)
}

func TestDispose(t *testing.T) {
	c, style := setup(t)
	require.NoError(t, c.Apply([]Marker{at("a", 0, 0, 0), at("b", 1, 1, 1)}))

	require.NoError(t, c.Dispose())
	assert.Zero(t, c.Len())
	assert.Len(t, style.CallsTo("delete"), 2)
}

func TestMarkerDescriptor(t *testing.T) {
	m := at("a", 1, 2, 3)
	m.ImageID = "img"
	d := m.Descriptor()
	assert.Equal(t, geo.LatLng{Lat: 1, Lng: 2}, d.Position)
	assert.Equal(t, "a", d.Label)
	assert.Equal(t, "img", d.ImageID)
	assert.Equal(t, 3, d.ZIndex)
}
