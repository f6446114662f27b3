package platform

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

// testBridge records native calls and answers the map style methods the way
// a native map view would.
type testBridge struct {
	mu      sync.Mutex
	calls   []testBridgeCall
	fail    map[string]error
	started map[string]int
	stopped map[string]int
	layers  int
	symbols int
}

type testBridgeCall struct {
	channel string
	method  string
	args    map[string]any
}

func (b *testBridge) InvokeMethod(channel, method string, argsData []byte) ([]byte, error) {
	var args map[string]any
	if len(argsData) > 0 {
		if err := json.Unmarshal(argsData, &args); err != nil {
			return nil, err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, testBridgeCall{channel: channel, method: method, args: args})
	if err := b.fail[method]; err != nil {
		return nil, err
	}
	switch method {
	case "newSymbolManager":
		b.layers++
		return DefaultCodec.Encode(map[string]any{"layerId": fmt.Sprintf("native-symbols-%d", b.layers)})
	case "createSymbol":
		b.symbols++
		return DefaultCodec.Encode(map[string]any{"id": b.symbols})
	default:
		return DefaultCodec.Encode(nil)
	}
}

func (b *testBridge) StartEventStream(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started == nil {
		b.started = make(map[string]int)
	}
	b.started[channel]++
	return nil
}

func (b *testBridge) StopEventStream(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped == nil {
		b.stopped = make(map[string]int)
	}
	b.stopped[channel]++
	return nil
}

func (b *testBridge) methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	for i, c := range b.calls {
		out[i] = c.method
	}
	return out
}

func (b *testBridge) last(method string) testBridgeCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.calls) - 1; i >= 0; i-- {
		if b.calls[i].method == method {
			return b.calls[i]
		}
	}
	return testBridgeCall{}
}

func (b *testBridge) reset() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

func setupTestBridge(t *testing.T) *testBridge {
	t.Helper()
	bridge := &testBridge{}
	SetupTestBridge(t.Cleanup)
	SetNativeBridge(bridge)
	return bridge
}
