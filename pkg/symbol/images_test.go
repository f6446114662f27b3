package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/go-drift/driftmap/pkg/errors"
	"github.com/go-drift/driftmap/pkg/graphics"
	maptest "github.com/go-drift/driftmap/pkg/testing"
)

func TestDeferredRegistrationRunsOncePerID(t *testing.T) {
	sched := &maptest.ManualScheduler{}
	a, style := attached(t, WithScheduler(sched.Schedule))

	var nodes []*Node
	for i := range 3 {
		n, err := a.Insert(marker(float64(i), 0, "A", 0))
		require.NoError(t, err)
		nodes = append(nodes, n)
	}

	id := pinImageID("A")
	assert.Equal(t, 1, sched.Pending())
	assert.False(t, a.ImageRegistered(id))
	assert.Zero(t, style.ImageCount())
	for _, n := range nodes {
		assert.Equal(t, NodeActive, n.State(), "symbol exists before its image lands")
		assert.Equal(t, id, n.Symbol().IconImage)
	}

	sched.RunAll()
	assert.True(t, a.ImageRegistered(id))
	assert.Len(t, style.CallsTo("addImage"), 1)
}

func TestRemoveBeforeRegistration(t *testing.T) {
	reports := captureReports(t)
	sched := &maptest.ManualScheduler{}
	a, style := attached(t, WithScheduler(sched.Schedule))

	n, err := a.Insert(marker(0, 0, "A", 0))
	require.NoError(t, err)
	require.NoError(t, n.Remove())

	assert.NotPanics(t, sched.RunAll)
	assert.True(t, a.ImageRegistered(pinImageID("A")))
	assert.Equal(t, 1, style.ImageCount())
	assert.Empty(t, reports.errors)
}

func TestStaleRegistrationDroppedAfterReload(t *testing.T) {
	sched := &maptest.ManualScheduler{}
	a, first := attached(t, WithScheduler(sched.Schedule))
	_, err := a.Insert(marker(0, 0, "A", 0))
	require.NoError(t, err)

	second := maptest.NewFakeStyle()
	require.NoError(t, a.AttachStyle(second))
	assert.Equal(t, 2, sched.Pending())

	sched.RunAll()
	assert.Zero(t, first.ImageCount(), "task for the old style must not run")
	assert.Equal(t, 1, second.ImageCount())
}

func TestRasterFailureFallsBack(t *testing.T) {
	reports := captureReports(t)
	a, style := attached(t)

	bad := marker(0, 0, "", 0)
	bad.Painter = failingPainter{key: "broken"}
	bad.IconSize = graphics.Size{Width: 32, Height: 40}
	n, err := a.Insert(bad)
	require.NoError(t, err)

	sibling, err := a.Insert(marker(1, 1, "A", 0))
	require.NoError(t, err)

	assert.Equal(t, NodeActive, n.State())
	assert.Equal(t, NodeActive, sibling.State())
	assert.True(t, a.ImageRegistered(n.ImageID()))
	assert.True(t, a.ImageFallback(n.ImageID()))
	assert.False(t, a.ImageFallback(sibling.ImageID()))

	img, ok := style.Image(n.ImageID())
	require.True(t, ok)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	require.Len(t, reports.errors, 1)
	assert.Equal(t, errors.KindRaster, reports.errors[0].Kind)
	assert.Equal(t, n.ImageID(), reports.errors[0].ImageID)
	assert.ErrorIs(t, reports.errors[0], errors.ErrRasterization)
}

func TestAddImageFailureRetriesOnNextInsert(t *testing.T) {
	reports := captureReports(t)
	a, style := attached(t)
	style.FailAddImage = errors.New("style busy")

	n, err := a.Insert(marker(0, 0, "A", 0))
	require.NoError(t, err, "image failures do not fail the insert")
	assert.Equal(t, NodeActive, n.State())
	assert.False(t, a.ImageRegistered(n.ImageID()))
	require.Len(t, reports.errors, 1)
	assert.Equal(t, errors.KindEngine, reports.errors[0].Kind)

	style.FailAddImage = nil
	_, err = a.Insert(marker(1, 1, "A", 0))
	require.NoError(t, err)
	assert.True(t, a.ImageRegistered(n.ImageID()))
	assert.Len(t, style.CallsTo("addImage"), 2)
}

func TestExplicitImageID(t *testing.T) {
	a, style := attached(t)
	d := marker(0, 0, "A", 0)
	d.ImageID = "custom-pin"

	n, err := a.Insert(d)
	require.NoError(t, err)
	assert.Equal(t, "custom-pin", n.Symbol().IconImage)
	_, ok := style.Image("custom-pin")
	assert.True(t, ok)
}

func TestImagePrefix(t *testing.T) {
	a, _ := attached(t, WithImagePrefix("shop"), WithMeterProvider(noop.NewMeterProvider()))
	n, err := a.Insert(marker(0, 0, "A", 0))
	require.NoError(t, err)
	assert.Regexp(t, `^shop-[0-9a-f]{16}$`, n.ImageID())
}
