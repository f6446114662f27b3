package platform

import "sync"

var (
	dispatchMu   sync.RWMutex
	dispatchFunc func(callback func())
)

// RegisterDispatch sets the function that schedules callbacks on the UI
// thread. The host calls it once during start-up.
func RegisterDispatch(fn func(callback func())) {
	dispatchMu.Lock()
	dispatchFunc = fn
	dispatchMu.Unlock()
}

// Dispatch schedules callback on the UI thread. It returns false when no
// dispatch function is registered or callback is nil.
func Dispatch(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	fn(callback)
	return true
}

// Post schedules callback like Dispatch but runs it immediately when no
// dispatch function is registered. It satisfies symbol.Scheduler.
func Post(callback func()) {
	if !Dispatch(callback) && callback != nil {
		callback()
	}
}
