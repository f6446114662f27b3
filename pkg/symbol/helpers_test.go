package symbol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-drift/driftmap/pkg/errors"
	"github.com/go-drift/driftmap/pkg/geo"
	"github.com/go-drift/driftmap/pkg/raster"
	maptest "github.com/go-drift/driftmap/pkg/testing"
)

type reports struct {
	errors []*errors.MapError
	panics []*errors.PanicError
}

func (r *reports) HandleError(err *errors.MapError)   { r.errors = append(r.errors, err) }
func (r *reports) HandlePanic(err *errors.PanicError) { r.panics = append(r.panics, err) }

// captureReports installs a recording global error handler for the test.
func captureReports(t *testing.T) *reports {
	t.Helper()
	r := &reports{}
	errors.SetHandler(r)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return r
}

func attached(t *testing.T, opts ...Option) (*Applier, *maptest.FakeStyle) {
	t.Helper()
	style := maptest.NewFakeStyle()
	a := NewApplier(opts...)
	require.NoError(t, a.AttachStyle(style))
	return a, style
}

func marker(lat, lng float64, label string, z int) Descriptor {
	return Descriptor{Position: geo.LatLng{Lat: lat, Lng: lng}, Label: label, ZIndex: z}
}

func pinImageID(label string) string {
	return raster.ImageID(raster.DefaultImagePrefix, raster.PinPainter{Label: label}.Key(), raster.DefaultPinStyle().IconSize())
}

type failingPainter struct{ key string }

func (p failingPainter) Key() string { return p.key }

func (failingPainter) Paint(*raster.Canvas) error { return errors.New("painter exploded") }
