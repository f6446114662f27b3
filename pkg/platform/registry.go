package platform

import (
	"fmt"
	"sync"

	"github.com/go-drift/driftmap/pkg/errors"
)

type channelRegistry struct {
	mu             sync.RWMutex
	methodChannels map[string]*MethodChannel
	eventChannels  map[string]*EventChannel
}

var registry = &channelRegistry{
	methodChannels: make(map[string]*MethodChannel),
	eventChannels:  make(map[string]*EventChannel),
}

func (r *channelRegistry) registerMethod(name string, ch *MethodChannel) {
	r.mu.Lock()
	r.methodChannels[name] = ch
	r.mu.Unlock()
}

func (r *channelRegistry) registerEvent(name string, ch *EventChannel) {
	r.mu.Lock()
	r.eventChannels[name] = ch
	r.mu.Unlock()
}

func (r *channelRegistry) methodChannel(name string) *MethodChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.methodChannels[name]
}

func (r *channelRegistry) eventChannel(name string) *EventChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.eventChannels[name]
}

func (r *channelRegistry) events() []*EventChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*EventChannel, 0, len(r.eventChannels))
	for _, ch := range r.eventChannels {
		out = append(out, ch)
	}
	return out
}

// NativeBridge is the host side of the channels, implemented by the embedding
// app's native map view.
type NativeBridge interface {
	// InvokeMethod calls a native method with JSON-encoded args and returns
	// the JSON-encoded result.
	InvokeMethod(channel, method string, args []byte) ([]byte, error)

	// StartEventStream asks native to start sending events for a channel.
	StartEventStream(channel string) error

	// StopEventStream asks native to stop sending events for a channel.
	StopEventStream(channel string) error
}

var nativeBridge NativeBridge

// SetNativeBridge installs the native bridge and starts the event streams of
// channels that were subscribed before it was available.
func SetNativeBridge(bridge NativeBridge) {
	nativeBridge = bridge
	if bridge == nil {
		return
	}

	for _, ch := range registry.events() {
		ch.mu.Lock()
		start := len(ch.subscriptions) > 0 && !ch.started
		if start {
			ch.started = true
		}
		ch.mu.Unlock()

		if !start {
			continue
		}
		if err := startEventStream(ch.name); err != nil {
			ch.mu.Lock()
			ch.started = false
			ch.mu.Unlock()
			ch.dispatchError(err)
		}
	}
}

func invokeNative(channel, method string, args any) (any, error) {
	if nativeBridge == nil {
		return nil, ErrPlatformUnavailable
	}
	argsData, err := DefaultCodec.Encode(args)
	if err != nil {
		return nil, err
	}
	resultData, err := nativeBridge.InvokeMethod(channel, method, argsData)
	if err != nil {
		return nil, err
	}
	return DefaultCodec.Decode(resultData)
}

func reportChannel(op, channel string, err error) {
	errors.Report(&errors.MapError{
		Op:      op,
		Kind:    errors.KindPlatform,
		Channel: channel,
		Err:     err,
	})
}

func startEventStream(channel string) error {
	err := ErrPlatformUnavailable
	if nativeBridge != nil {
		err = nativeBridge.StartEventStream(channel)
	}
	if err != nil {
		reportChannel("platform.startEventStream", channel, err)
	}
	return err
}

func stopEventStream(channel string) error {
	err := ErrPlatformUnavailable
	if nativeBridge != nil {
		err = nativeBridge.StopEventStream(channel)
	}
	if err != nil {
		reportChannel("platform.stopEventStream", channel, err)
	}
	return err
}

// HandleMethodCall is called by the bridge when native invokes a Go method.
func HandleMethodCall(channel, method string, argsData []byte) ([]byte, error) {
	ch := registry.methodChannel(channel)
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	args, err := DefaultCodec.Decode(argsData)
	if err != nil {
		return nil, err
	}
	result, err := ch.handleCall(method, args)
	if err != nil {
		return nil, err
	}
	return DefaultCodec.Encode(result)
}

func lookupEvents(op, channel string) (*EventChannel, error) {
	ch := registry.eventChannel(channel)
	if ch == nil {
		err := fmt.Errorf("%w: %s", ErrChannelNotRegistered, channel)
		reportChannel(op, channel, err)
		return nil, err
	}
	return ch, nil
}

// HandleEvent is called by the bridge when native sends an event.
func HandleEvent(channel string, eventData []byte) error {
	ch, err := lookupEvents("platform.HandleEvent", channel)
	if err != nil {
		return err
	}
	data, err := DefaultCodec.Decode(eventData)
	if err != nil {
		ch.dispatchError(err)
		return err
	}
	ch.dispatchEvent(data)
	return nil
}

// HandleEventError is called by the bridge when an event stream fails.
func HandleEventError(channel, code, message string) error {
	ch, err := lookupEvents("platform.HandleEventError", channel)
	if err != nil {
		return err
	}
	ch.dispatchError(NewChannelError(code, message))
	return nil
}

// HandleEventDone is called by the bridge when an event stream ends.
func HandleEventDone(channel string) error {
	ch, err := lookupEvents("platform.HandleEventDone", channel)
	if err != nil {
		return err
	}
	ch.dispatchDone()
	return nil
}

// ResetForTest clears the bridge, every subscription, the dispatch function
// and the map style registry. Only tests should call it.
func ResetForTest() {
	nativeBridge = nil

	for _, ch := range registry.events() {
		ch.mu.Lock()
		ch.subscriptions = nil
		ch.started = false
		ch.mu.Unlock()
	}

	dispatchMu.Lock()
	dispatchFunc = nil
	dispatchMu.Unlock()

	mapStylesMu.Lock()
	mapStyles = map[int64]*ChannelStyle{}
	mapStylesMu.Unlock()
	mapServiceOnce = sync.Once{}
	mapService = nil
}
