package symbol

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-drift/driftmap/pkg/engine"
	"github.com/go-drift/driftmap/pkg/errors"
	"github.com/go-drift/driftmap/pkg/graphics"
	"github.com/go-drift/driftmap/pkg/raster"
)

// Scheduler runs task later on the owner thread. platform.Post is a valid
// Scheduler.
type Scheduler func(task func())

func runInline(task func()) { task() }

type imageState int

const (
	imagePending imageState = iota
	imageRegistered
	imageFallback
)

// imageRegistry tracks style images by id. Registration is deferred through
// the scheduler and happens at most once per id per style.
type imageRegistry struct {
	style    engine.Style
	states   map[string]imageState
	gen      uint64
	schedule Scheduler
	log      *zerolog.Logger
	metrics  *metrics
}

func newImageRegistry(schedule Scheduler, log *zerolog.Logger, m *metrics) *imageRegistry {
	return &imageRegistry{
		states:   make(map[string]imageState),
		schedule: schedule,
		log:      log,
		metrics:  m,
	}
}

// ensure schedules registration of id unless it is registered or already
// pending.
func (r *imageRegistry) ensure(id string, p raster.Painter, size graphics.Size) {
	if r.style == nil {
		return
	}
	if _, ok := r.states[id]; ok {
		return
	}
	r.states[id] = imagePending
	gen, style := r.gen, r.style
	r.schedule(func() {
		r.register(gen, style, id, p, size)
	})
}

// register rasterizes and adds one image. Tasks from a previous style are
// dropped; they never touch nodes.
func (r *imageRegistry) register(gen uint64, style engine.Style, id string, p raster.Painter, size graphics.Size) {
	if gen != r.gen {
		return
	}
	state := imageRegistered
	img, err := raster.Rasterize(p, size)
	if err != nil {
		errors.Report(&errors.MapError{
			Op:      "symbol.registerImage",
			Kind:    errors.KindRaster,
			ImageID: id,
			Err:     err,
		})
		img = raster.Fallback(size)
		state = imageFallback
	}
	if err := style.AddImage(id, img); err != nil {
		errors.Report(&errors.MapError{
			Op:      "symbol.registerImage",
			Kind:    errors.KindEngine,
			ImageID: id,
			Err:     err,
		})
		delete(r.states, id)
		return
	}
	r.states[id] = state

	ctx := context.Background()
	if state == imageFallback {
		r.metrics.imagesFallback.Add(ctx, 1)
		r.log.Warn().Str("image", id).Msg("registered fallback icon")
		return
	}
	r.metrics.imagesRegistered.Add(ctx, 1)
	r.log.Debug().Str("image", id).Msg("image registered")
}

// registered reports whether id has landed in the style, possibly as the
// fallback icon.
func (r *imageRegistry) registered(id string) bool {
	state, ok := r.states[id]
	return ok && state != imagePending
}

func (r *imageRegistry) fallback(id string) bool {
	return r.states[id] == imageFallback
}

// reset forgets every image and invalidates queued tasks.
func (r *imageRegistry) reset(style engine.Style) {
	r.style = style
	r.gen++
	r.states = make(map[string]imageState)
}
