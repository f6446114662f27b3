// Package errors provides structured error handling for the driftmap bridge.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Sentinel errors shared by the bridge packages. Match them with [Is].
var (
	// ErrEngineNotReady is returned when a manager or image operation is
	// attempted before the native map style is attached. Retry once the
	// style is ready.
	ErrEngineNotReady = stderrors.New("driftmap: engine not ready")

	// ErrUseAfterDispose is returned for any operation on a removed symbol node.
	ErrUseAfterDispose = stderrors.New("driftmap: use after dispose")

	// ErrRasterization is returned when an icon cannot be rasterized.
	ErrRasterization = stderrors.New("driftmap: rasterization failed")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// New returns an error that formats as the given text.
func New(text string) error { return stderrors.New(text) }

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error { return stderrors.Join(errs...) }

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindEngine indicates a native map engine failure or an engine that is not ready.
	KindEngine
	// KindLifecycle indicates a symbol node lifecycle violation.
	KindLifecycle
	// KindRaster indicates an icon rasterization failure.
	KindRaster
	// KindPlatform indicates a platform channel or native bridge error.
	KindPlatform
	// KindParsing indicates an event parsing failure.
	KindParsing
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindEngine:
		return "engine"
	case KindLifecycle:
		return "lifecycle"
	case KindRaster:
		return "raster"
	case KindPlatform:
		return "platform"
	case KindParsing:
		return "parsing"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// MapError represents a structured error raised by the symbol bridge.
type MapError struct {
	// Op is the operation that failed (e.g., "symbol.Applier.Insert").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// ImageID is the style image involved, if any.
	ImageID string
	// Channel is the platform channel name, if applicable.
	Channel string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *MapError) Error() string {
	switch {
	case e.Channel != "":
		return fmt.Sprintf("%s [%s] channel=%s: %v", e.Op, e.Kind, e.Channel, e.Err)
	case e.ImageID != "":
		return fmt.Sprintf("%s [%s] image=%s: %v", e.Op, e.Kind, e.ImageID, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *MapError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "symbol.Node.handleGesture").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to parse event data.
type ParseError struct {
	// Channel is the platform channel that received the event.
	Channel string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from channel %s: got %T", e.DataType, e.Channel, e.Got)
}

// ErrorHandler receives errors reported by the bridge.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *MapError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
