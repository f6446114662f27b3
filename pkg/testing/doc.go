// Package testing provides test doubles for the symbol bridge.
//
// # Quick Start
//
// Attach a FakeStyle to an applier, drive it, then assert on the recorded
// native calls:
//
//	func TestMarker(t *testing.T) {
//	    style := maptest.NewFakeStyle()
//	    a := symbol.NewApplier()
//	    a.AttachStyle(style)
//
//	    node, _ := a.Insert(symbol.Descriptor{Label: "A"})
//	    if got := len(style.CallsTo("create")); got != 1 {
//	        t.Fatalf("expected 1 native create, got %d", got)
//	    }
//	    style.Tap(node.LayerID(), node.Symbol().ID)
//	}
//
// # Deferred Work
//
// ManualScheduler queues image registration tasks until RunAll, which makes
// the registration/creation race observable in tests.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import maptest "github.com/go-drift/driftmap/pkg/testing"
package testing
