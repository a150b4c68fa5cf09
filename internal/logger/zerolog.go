package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// AppName tags every entry written by the adapters below.
const AppName = "xla"

// DefaultComponent replaces an empty component name.
const DefaultComponent = "app"

type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("app", AppName).
		Logger()

	return &ZerologAdapter{logger: logger}
}

// NewConsoleLogger writes human-readable lines to stderr, leaving stdout to
// command output. The app tag is implied on a terminal and left out.
func NewConsoleLogger(level zerolog.Level) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{
		Out:           os.Stderr,
		TimeFormat:    time.TimeOnly,
		FieldsExclude: []string{"app"},
	}
	return NewZerolog(consoleWriter, level)
}

// NewNop discards everything.
func NewNop() *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.Nop()}
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	z.emit(z.logger.Info(), component, fields).Msg(message)
}

// Error logs err under "<operation> failed" when fields carry an
// "operation" string, and "operation failed" otherwise.
func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	message := "operation failed"
	if op, ok := fields["operation"].(string); ok && op != "" {
		message = op + " failed"
	}
	z.emit(z.logger.Error(), component, fields).Err(err).Msg(message)
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	z.emit(z.logger.Warn(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	z.emit(z.logger.Debug(), component, fields).Msg(message)
}

func (z *ZerologAdapter) emit(event *zerolog.Event, component string, fields map[string]interface{}) *zerolog.Event {
	if component == "" {
		component = DefaultComponent
	}
	event = event.Str("component", component)
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	return event
}
