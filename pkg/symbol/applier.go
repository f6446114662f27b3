// Package symbol maps declarative marker descriptors onto native map
// symbols.
//
// An Applier owns one map's symbol state: a pool of symbol managers keyed by
// z-index, the set of style images it has registered, and a hit-test table
// routing gestures back to nodes. Every method must be called from the UI
// thread that owns the map.
package symbol

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/go-drift/driftmap/pkg/engine"
	"github.com/go-drift/driftmap/pkg/errors"
	"github.com/go-drift/driftmap/pkg/geo"
	"github.com/go-drift/driftmap/pkg/raster"
)

// ErrZIndexChanged is returned by Update when the descriptor moves to another
// z-index. Remove the node and insert a new one instead.
var ErrZIndexChanged = errors.New("symbol: z-index is fixed for a node's lifetime")

// Option configures an Applier.
type Option func(*config)

type config struct {
	schedule Scheduler
	logger   zerolog.Logger
	prefix   string
	meters   metric.MeterProvider
}

// WithScheduler sets how deferred image registration runs. The default runs
// tasks inline.
func WithScheduler(s Scheduler) Option {
	return func(c *config) {
		if s != nil {
			c.schedule = s
		}
	}
}

// WithLogger sets the debug logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithImagePrefix sets the prefix of derived image ids.
func WithImagePrefix(prefix string) Option {
	return func(c *config) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithMeterProvider sets the meter provider. The default is the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		if mp != nil {
			c.meters = mp
		}
	}
}

// Applier applies marker descriptors to a native map style.
type Applier struct {
	style   engine.Style
	settled bool
	pool    *managerPool
	images  *imageRegistry
	hits    *hitTable
	nodes   map[uint64]*Node
	seq     uint64
	prefix  string
	log     zerolog.Logger
	metrics *metrics
}

// NewApplier returns an applier with no style attached. Inserts fail with
// errors.ErrEngineNotReady until AttachStyle is called.
func NewApplier(opts ...Option) *Applier {
	cfg := config{
		schedule: runInline,
		logger:   zerolog.Nop(),
		prefix:   raster.DefaultImagePrefix,
		meters:   otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &Applier{
		pool:    newManagerPool(),
		hits:    newHitTable(),
		nodes:   make(map[uint64]*Node),
		prefix:  cfg.prefix,
		log:     cfg.logger,
		metrics: newMetrics(cfg.meters),
	}
	a.images = newImageRegistry(cfg.schedule, &a.log, a.metrics)
	a.pool.onNew = func(h *ManagerHandle) {
		a.metrics.managersCreated.Add(context.Background(), 1,
			metric.WithAttributes(attribute.Int("z_index", h.ZIndex())))
		a.log.Debug().Int("z_index", h.ZIndex()).Str("layer", h.LayerID()).Msg("symbol manager created")
	}
	return a
}

// AttachStyle binds the applier to a loaded style. Attaching a different
// style, as after a style reload, recreates the managers in their original
// order and the symbols of every live node. Nodes that cannot be recreated
// stay pending and the errors are joined. Attaching the same style again is a
// no-op once an attach has fully succeeded; until then it resumes the restore
// on the managers and symbols already created.
func (a *Applier) AttachStyle(style engine.Style) error {
	if style == nil {
		a.DetachStyle()
		return nil
	}
	if style == a.style && a.settled {
		return nil
	}
	if style != a.style {
		a.unbind()
		a.bind(style)
	}

	err := a.restore()
	a.settled = err == nil
	return err
}

func (a *Applier) restore() error {
	if err := a.pool.restore(); err != nil {
		return err
	}
	var errs []error
	for _, n := range a.Nodes() {
		if n.state != NodePending {
			continue
		}
		if err := a.activate(n, "symbol.Applier.AttachStyle"); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DetachStyle forgets the current style. Live nodes become pending and are
// recreated on the next AttachStyle.
func (a *Applier) DetachStyle() {
	a.unbind()
}

func (a *Applier) bind(style engine.Style) {
	a.style = style
	a.pool.reset(style)
	a.images.reset(style)
	a.hits.reset()
	if gs, ok := style.(engine.GestureSource); ok {
		gs.SetGestureHandler(a.DispatchGesture)
	}
	a.log.Debug().Msg("style attached")
}

func (a *Applier) unbind() {
	if a.style == nil {
		return
	}
	if gs, ok := a.style.(engine.GestureSource); ok {
		gs.SetGestureHandler(nil)
	}
	for _, n := range a.nodes {
		n.state = NodePending
		n.manager = nil
		n.symbol = nil
	}
	a.style = nil
	a.settled = false
	a.pool.reset(nil)
	a.images.reset(nil)
	a.hits.reset()
	a.log.Debug().Msg("style detached")
}

// Insert creates the native symbol for d and returns the active node. On
// failure no node is returned.
func (a *Applier) Insert(d Descriptor) (*Node, error) {
	const op = "symbol.Applier.Insert"
	if err := d.Position.Validate(); err != nil {
		return nil, errors.Wrap(op, errors.KindUnknown, err)
	}
	n := &Node{
		applier: a,
		desc:    d,
		state:   NodePending,
		cbs:     callbacks{onTap: d.OnTap, onLongPress: d.OnLongPress},
	}
	if err := a.activate(n, op); err != nil {
		return nil, err
	}
	a.seq++
	n.seq = a.seq
	a.nodes[n.seq] = n
	return n, nil
}

// activate creates the native symbol of a pending node.
func (a *Applier) activate(n *Node, op string) error {
	if a.style == nil {
		return &errors.MapError{Op: op, Kind: errors.KindEngine, Err: errors.ErrEngineNotReady}
	}
	h, err := a.pool.getOrCreate(n.desc.ZIndex)
	if err != nil {
		return err
	}

	id := n.desc.imageID(a.prefix)
	a.images.ensure(id, n.desc.painter(), n.desc.iconSize())

	sym, err := h.manager.Create(engine.SymbolOptions{
		LatLng:     n.desc.Position,
		IconImage:  id,
		IconAnchor: n.desc.Anchor,
	})
	if err != nil {
		return &errors.MapError{Op: op, Kind: errors.KindEngine, ImageID: id, Err: err}
	}

	n.manager = h
	n.symbol = sym
	n.imageID = id
	n.state = NodeActive
	h.nodes++
	a.hits.add(h.LayerID(), sym.ID, n)

	a.metrics.symbolsCreated.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Int("z_index", h.ZIndex())))
	a.log.Debug().
		Int64("symbol", sym.ID).
		Str("layer", h.LayerID()).
		Str("image", id).
		Msg("symbol created")
	return nil
}

// Update applies d to n in place. Only changed native fields are pushed, with
// a single manager update; a callback-only change makes no native call. A
// pending node is activated instead.
func (a *Applier) Update(n *Node, d Descriptor) error {
	const op = "symbol.Applier.Update"
	if n.state == NodeDisposed {
		return n.useAfterDispose(op)
	}
	if d.ZIndex != n.desc.ZIndex {
		return &errors.MapError{Op: op, Kind: errors.KindLifecycle, Err: ErrZIndexChanged}
	}
	if err := d.Position.Validate(); err != nil {
		return errors.Wrap(op, errors.KindUnknown, err)
	}

	if n.state == NodePending {
		prev, prevCbs := n.desc, n.cbs
		n.desc = d
		n.cbs = callbacks{onTap: d.OnTap, onLongPress: d.OnLongPress}
		if err := a.activate(n, op); err != nil {
			n.desc, n.cbs = prev, prevCbs
			return err
		}
		return nil
	}

	id := d.imageID(a.prefix)
	sym := n.symbol
	prev := *sym
	if sym.LatLng != d.Position {
		sym.LatLng = d.Position
	}
	if sym.IconImage != id {
		a.images.ensure(id, d.painter(), d.iconSize())
		sym.IconImage = id
	}
	if sym.IconAnchor != d.Anchor {
		sym.IconAnchor = d.Anchor
	}
	if *sym != prev {
		if err := n.manager.Manager().Update(sym); err != nil {
			*sym = prev
			return &errors.MapError{Op: op, Kind: errors.KindEngine, ImageID: id, Err: err}
		}
		a.log.Debug().Int64("symbol", sym.ID).Str("layer", n.manager.LayerID()).Msg("symbol updated")
	}

	n.desc = d
	n.imageID = id
	n.cbs = callbacks{onTap: d.OnTap, onLongPress: d.OnLongPress}
	return nil
}

// Remove deletes n's native symbol and disposes n. The manager stays pooled.
// If the native delete fails n stays active.
func (a *Applier) Remove(n *Node) error {
	const op = "symbol.Applier.Remove"
	if n.state == NodeDisposed {
		return n.useAfterDispose(op)
	}
	if n.state == NodeActive {
		h, sym := n.manager, n.symbol
		if err := h.Manager().Delete(sym); err != nil {
			return &errors.MapError{Op: op, Kind: errors.KindEngine, ImageID: n.imageID, Err: err}
		}
		a.hits.remove(h.LayerID(), sym.ID)
		h.nodes--
		a.metrics.symbolsRemoved.Add(context.Background(), 1,
			metric.WithAttributes(attribute.Int("z_index", h.ZIndex())))
		a.log.Debug().Int64("symbol", sym.ID).Str("layer", h.LayerID()).Msg("symbol removed")
	}
	n.state = NodeDisposed
	n.manager = nil
	n.symbol = nil
	n.cbs = callbacks{}
	delete(a.nodes, n.seq)
	return nil
}

// DispatchGesture routes an engine gesture to the node that owns the hit
// symbol and reports whether it was consumed. Each gesture id fires at most
// one callback.
func (a *Applier) DispatchGesture(g engine.Gesture) bool {
	return a.hits.dispatch(g)
}

// Nodes returns the live nodes in insertion order.
func (a *Applier) Nodes() []*Node {
	nodes := slices.Collect(maps.Values(a.nodes))
	slices.SortFunc(nodes, func(x, y *Node) int { return cmp.Compare(x.seq, y.seq) })
	return nodes
}

// Managers returns the pooled managers in creation order, which is also
// their stacking order from bottom to top.
func (a *Applier) Managers() []*ManagerHandle {
	return a.pool.managers()
}

// ImageRegistered reports whether id has been added to the current style.
func (a *Applier) ImageRegistered(id string) bool {
	return a.images.registered(id)
}

// ImageFallback reports whether id was registered with the fallback icon.
func (a *Applier) ImageFallback(id string) bool {
	return a.images.fallback(id)
}

// SymbolsIn returns the active nodes positioned inside b, in insertion order.
func (a *Applier) SymbolsIn(b geo.Bounds) []*Node {
	var out []*Node
	for _, n := range a.Nodes() {
		if n.state == NodeActive && b.Contains(n.desc.Position) {
			out = append(out, n)
		}
	}
	return out
}

// SymbolNear returns the active node closest to p within maxMeters.
func (a *Applier) SymbolNear(p geo.LatLng, maxMeters float64) (*Node, bool) {
	var (
		best *Node
		dist = maxMeters
	)
	for _, n := range a.Nodes() {
		if n.state != NodeActive {
			continue
		}
		if d := geo.GroundDistance(p, n.desc.Position); d <= dist {
			best, dist = n, d
		}
	}
	return best, best != nil
}

// Close removes every live node and detaches the style.
func (a *Applier) Close() error {
	var errs []error
	for _, n := range a.Nodes() {
		if err := a.Remove(n); err != nil {
			errs = append(errs, err)
		}
	}
	a.DetachStyle()
	return errors.Join(errs...)
}
