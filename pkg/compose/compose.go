// Package compose reconciles frames of declarative markers against a
// symbol.Applier.
//
// Each call to Composition.Apply receives the complete list of markers for a
// frame. Markers are matched to the previous frame by Key: new keys are
// inserted, kept keys are updated in place, and vanished keys are removed.
package compose

import (
	"fmt"

	"github.com/go-drift/driftmap/pkg/engine"
	"github.com/go-drift/driftmap/pkg/errors"
	"github.com/go-drift/driftmap/pkg/geo"
	"github.com/go-drift/driftmap/pkg/raster"
	"github.com/go-drift/driftmap/pkg/symbol"
)

// Marker is one declarative map marker.
type Marker struct {
	// Key identifies the marker across frames.
	Key      string
	Position geo.LatLng
	Label    string
	// ImageID overrides the derived style image id.
	ImageID string
	Anchor  engine.Anchor
	// ZIndex is part of the marker's identity: changing it replaces the
	// native symbol.
	ZIndex int
	Style  *raster.PinStyle

	OnTap       func()
	OnLongPress func()
}

// Descriptor converts m to the applier's descriptor.
func (m Marker) Descriptor() symbol.Descriptor {
	return symbol.Descriptor{
		Position:    m.Position,
		Label:       m.Label,
		ImageID:     m.ImageID,
		Anchor:      m.Anchor,
		ZIndex:      m.ZIndex,
		Style:       m.Style,
		OnTap:       m.OnTap,
		OnLongPress: m.OnLongPress,
	}
}

// Composition holds the nodes of the last applied frame.
type Composition struct {
	applier *symbol.Applier
	nodes   map[string]*symbol.Node
	order   []string
}

// New returns an empty composition driving a.
func New(a *symbol.Applier) *Composition {
	return &Composition{applier: a, nodes: make(map[string]*symbol.Node)}
}

// Apply reconciles frame against the previous frame. When a key repeats, the
// last marker wins. A failure for one marker does not stop the others; all
// failures are joined. A marker whose insert failed is retried on the next
// Apply.
func (c *Composition) Apply(frame []Marker) error {
	latest := make(map[string]Marker, len(frame))
	var keys []string
	for _, m := range frame {
		if _, dup := latest[m.Key]; !dup {
			keys = append(keys, m.Key)
		}
		latest[m.Key] = m
	}

	var errs []error
	for _, key := range c.order {
		if _, keep := latest[key]; keep {
			continue
		}
		if err := c.remove(key); err != nil {
			errs = append(errs, err)
		}
	}

	for _, key := range keys {
		if err := c.apply(key, latest[key]); err != nil {
			errs = append(errs, err)
		}
	}

	order := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := c.nodes[key]; ok {
			order = append(order, key)
		}
	}
	// Nodes whose removal failed are kept so a later frame retries.
	for _, key := range c.order {
		if _, ok := latest[key]; !ok && c.nodes[key] != nil {
			order = append(order, key)
		}
	}
	c.order = order
	return errors.Join(errs...)
}

func (c *Composition) apply(key string, m Marker) error {
	d := m.Descriptor()
	n, ok := c.nodes[key]
	if ok && n.ZIndex() != m.ZIndex {
		if err := c.remove(key); err != nil {
			return err
		}
		ok = false
	}
	if ok {
		if err := n.Update(d); err != nil {
			return fmt.Errorf("marker %q: %w", key, err)
		}
		return nil
	}
	n, err := c.applier.Insert(d)
	if err != nil {
		return fmt.Errorf("marker %q: %w", key, err)
	}
	c.nodes[key] = n
	return nil
}

func (c *Composition) remove(key string) error {
	n := c.nodes[key]
	if err := n.Remove(); err != nil {
		return fmt.Errorf("marker %q: %w", key, err)
	}
	delete(c.nodes, key)
	return nil
}

// Node returns the node currently bound to key.
func (c *Composition) Node(key string) (*symbol.Node, bool) {
	n, ok := c.nodes[key]
	return n, ok
}

// Len returns the number of markers with a node.
func (c *Composition) Len() int { return len(c.nodes) }

// Dispose removes every marker.
func (c *Composition) Dispose() error {
	return c.Apply(nil)
}
