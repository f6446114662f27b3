package platform

import "errors"

var (
	// ErrChannelNotFound indicates a call for an unregistered method channel.
	ErrChannelNotFound = errors.New("platform: channel not found")

	// ErrChannelNotRegistered indicates an event for an unregistered event channel.
	ErrChannelNotRegistered = errors.New("platform: event channel not registered")

	// ErrMethodNotFound indicates the method is not implemented by the receiver.
	ErrMethodNotFound = errors.New("platform: method not implemented")

	// ErrInvalidArguments indicates malformed call arguments or results.
	ErrInvalidArguments = errors.New("platform: invalid arguments")

	// ErrPlatformUnavailable indicates no native bridge is installed.
	ErrPlatformUnavailable = errors.New("platform: unavailable")

	// ErrDisposed is returned by a style used after Dispose.
	ErrDisposed = errors.New("platform: style disposed")
)

// ChannelError is an error returned by native code.
type ChannelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *ChannelError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// NewChannelError creates a ChannelError.
func NewChannelError(code, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}
