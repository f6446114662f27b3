package platform

import "github.com/go-drift/driftmap/pkg/errors"

// Stream is a typed view of an EventChannel. Each listener receives every
// parsed event; payloads that fail to parse are reported and dropped.
type Stream[T any] struct {
	channel *EventChannel
	parser  func(data any) (T, error)
}

// NewStream wraps channel with parser.
func NewStream[T any](channel *EventChannel, parser func(data any) (T, error)) *Stream[T] {
	return &Stream[T]{channel: channel, parser: parser}
}

// Listen subscribes handler and returns a function that unsubscribes it.
func (s *Stream[T]) Listen(handler func(T)) (unsubscribe func()) {
	name := s.channel.Name()
	sub := s.channel.Listen(EventHandler{
		OnEvent: func(data any) {
			val, err := s.parser(data)
			if err != nil {
				errors.Report(&errors.MapError{
					Op:      "platform.Stream.parse",
					Kind:    errors.KindParsing,
					Channel: name,
					Err:     err,
				})
				return
			}
			handler(val)
		},
		OnError: func(err error) {
			reportChannel("platform.Stream.error", name, err)
		},
	})
	return sub.Cancel
}
