package symbol

import (
	"slices"

	"github.com/go-drift/driftmap/pkg/engine"
	"github.com/go-drift/driftmap/pkg/errors"
)

// ManagerHandle is a pooled symbol manager shared by every node of one
// z-index.
type ManagerHandle struct {
	zIndex  int
	manager engine.SymbolManager
	nodes   int
}

// ZIndex returns the z-index the manager serves.
func (h *ManagerHandle) ZIndex() int { return h.zIndex }

// LayerID returns the style layer of the manager.
func (h *ManagerHandle) LayerID() string { return h.manager.LayerID() }

// Manager returns the native symbol manager.
func (h *ManagerHandle) Manager() engine.SymbolManager { return h.manager }

// Len returns the number of active nodes rendered by the manager.
func (h *ManagerHandle) Len() int { return h.nodes }

// managerPool holds at most one manager per z-index. Each new manager is
// stacked above every manager created before it, so draw order follows
// creation order rather than numeric z-index.
type managerPool struct {
	style   engine.Style
	byZ     map[int]*ManagerHandle
	ordered []*ManagerHandle
	// created records z-indices in first-creation order and survives style
	// swaps so a reload restores the same stacking.
	created []int
	onNew   func(*ManagerHandle)
}

func newManagerPool() *managerPool {
	return &managerPool{byZ: make(map[int]*ManagerHandle)}
}

// getOrCreate returns the manager for z, creating it on first use.
func (p *managerPool) getOrCreate(z int) (*ManagerHandle, error) {
	if h, ok := p.byZ[z]; ok {
		return h, nil
	}
	if p.style == nil {
		return nil, &errors.MapError{
			Op:   "symbol.managerPool.getOrCreate",
			Kind: errors.KindEngine,
			Err:  errors.ErrEngineNotReady,
		}
	}

	var opts engine.ManagerOptions
	if n := len(p.ordered); n > 0 {
		opts.AboveLayer = p.ordered[n-1].LayerID()
	}
	m, err := p.style.NewSymbolManager(opts)
	if err != nil {
		return nil, errors.Wrap("symbol.managerPool.getOrCreate", errors.KindEngine, err)
	}

	h := &ManagerHandle{zIndex: z, manager: m}
	p.byZ[z] = h
	p.ordered = append(p.ordered, h)
	if !slices.Contains(p.created, z) {
		p.created = append(p.created, z)
	}
	if p.onNew != nil {
		p.onNew(h)
	}
	return h, nil
}

// restore recreates managers for every previously seen z-index in their
// original creation order. The first failure stops the walk.
func (p *managerPool) restore() error {
	for _, z := range p.created {
		if _, err := p.getOrCreate(z); err != nil {
			return err
		}
	}
	return nil
}

// reset drops every handle and binds the pool to style, which may be nil.
func (p *managerPool) reset(style engine.Style) {
	p.style = style
	p.byZ = make(map[int]*ManagerHandle)
	p.ordered = nil
}

// managers returns the live handles in creation order.
func (p *managerPool) managers() []*ManagerHandle {
	return slices.Clone(p.ordered)
}

func (p *managerPool) len() int { return len(p.ordered) }
