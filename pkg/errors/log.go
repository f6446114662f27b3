package errors

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	stderrLogger     zerolog.Logger
	stderrLoggerOnce sync.Once
)

func defaultLogger() *zerolog.Logger {
	stderrLoggerOnce.Do(func() {
		stderrLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Str("component", "driftmap").Logger()
	})
	return &stderrLogger
}

// LogHandler is an ErrorHandler that writes structured log events.
type LogHandler struct {
	// Verbose enables stack traces in the output.
	Verbose bool
	// Logger receives the events. Nil logs to stderr with a console writer.
	Logger *zerolog.Logger
}

func (h *LogHandler) logger() *zerolog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return defaultLogger()
}

// HandleError logs a MapError at error level.
func (h *LogHandler) HandleError(err *MapError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().
		Str("op", err.Op).
		Stringer("kind", err.Kind).
		Err(err.Err)
	if err.Channel != "" {
		ev = ev.Str("channel", err.Channel)
	}
	if err.ImageID != "" {
		ev = ev.Str("image", err.ImageID)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("driftmap error")
}

// HandlePanic logs a recovered panic.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().Interface("value", err.Value)
	if err.Op != "" {
		ev = ev.Str("op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("driftmap panic")
}
