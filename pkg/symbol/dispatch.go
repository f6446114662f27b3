package symbol

import "github.com/go-drift/driftmap/pkg/engine"

// recentGestures bounds how many consumed gesture ids are remembered for
// de-duplication.
const recentGestures = 32

type hitKey struct {
	layer  string
	symbol int64
}

// hitTable maps native symbols to nodes for gesture dispatch.
type hitTable struct {
	nodes  map[hitKey]*Node
	recent [recentGestures]uint64
	next   int
}

func newHitTable() *hitTable {
	return &hitTable{nodes: make(map[hitKey]*Node)}
}

func (t *hitTable) add(layer string, id int64, n *Node) {
	t.nodes[hitKey{layer, id}] = n
}

func (t *hitTable) remove(layer string, id int64) {
	delete(t.nodes, hitKey{layer, id})
}

func (t *hitTable) lookup(layer string, id int64) *Node {
	return t.nodes[hitKey{layer, id}]
}

func (t *hitTable) reset() {
	t.nodes = make(map[hitKey]*Node)
}

// dispatch routes g to its node. A gesture id that was already consumed is
// reported as handled without running any callback. Id zero is never
// de-duplicated.
func (t *hitTable) dispatch(g engine.Gesture) bool {
	if g.ID != 0 && t.seen(g.ID) {
		return true
	}
	n := t.lookup(g.LayerID, g.SymbolID)
	if n == nil {
		return false
	}
	if !n.handleGesture(g) {
		return false
	}
	if g.ID != 0 {
		t.recent[t.next] = g.ID
		t.next = (t.next + 1) % recentGestures
	}
	return true
}

func (t *hitTable) seen(id uint64) bool {
	for _, v := range t.recent {
		if v == id {
			return true
		}
	}
	return false
}
