package symbol

import (
	"github.com/go-drift/driftmap/pkg/engine"
	"github.com/go-drift/driftmap/pkg/errors"
)

// NodeState is the lifecycle state of a Node.
type NodeState int

const (
	// NodePending means the descriptor is known but no native symbol exists,
	// either before the first successful apply or while the style is detached.
	NodePending NodeState = iota
	// NodeActive means the native symbol exists and receives updates.
	NodeActive
	// NodeDisposed is terminal; every further operation fails with
	// errors.ErrUseAfterDispose.
	NodeDisposed
)

func (s NodeState) String() string {
	switch s {
	case NodePending:
		return "pending"
	case NodeActive:
		return "active"
	case NodeDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Node binds one composition node to one native symbol. It holds a shared
// reference to its manager and exclusively owns its symbol.
//
// Node is not safe for concurrent use; see Applier.
type Node struct {
	applier *Applier
	seq     uint64
	desc    Descriptor
	state   NodeState
	imageID string
	manager *ManagerHandle
	symbol  *engine.Symbol
	cbs     callbacks
}

// State returns the lifecycle state.
func (n *Node) State() NodeState { return n.state }

// Descriptor returns the last applied descriptor.
func (n *Node) Descriptor() Descriptor { return n.desc }

// ZIndex returns the node's draw-order layer.
func (n *Node) ZIndex() int { return n.desc.ZIndex }

// ImageID returns the style image id the symbol displays.
func (n *Node) ImageID() string { return n.imageID }

// Symbol returns the native symbol, or nil unless the node is active.
func (n *Node) Symbol() *engine.Symbol {
	if n.state != NodeActive {
		return nil
	}
	return n.symbol
}

// LayerID returns the layer of the node's manager, or "" unless active.
func (n *Node) LayerID() string {
	if n.state != NodeActive {
		return ""
	}
	return n.manager.LayerID()
}

// Update applies d in place. It is shorthand for Applier.Update.
func (n *Node) Update(d Descriptor) error {
	return n.applier.Update(n, d)
}

// Remove deletes the native symbol. It is shorthand for Applier.Remove.
func (n *Node) Remove() error {
	return n.applier.Remove(n)
}

func (n *Node) useAfterDispose(op string) error {
	return &errors.MapError{
		Op:      op,
		Kind:    errors.KindLifecycle,
		ImageID: n.imageID,
		Err:     errors.ErrUseAfterDispose,
	}
}

// handleGesture runs the callback registered for g.Kind. A panicking
// callback is reported and still counts as handled.
func (n *Node) handleGesture(g engine.Gesture) (handled bool) {
	if n.state != NodeActive {
		return false
	}
	cb := n.cbs.forKind(g.Kind)
	if cb == nil {
		return false
	}
	handled = true
	defer errors.Recover("symbol.Node.handleGesture")
	cb()
	return handled
}
