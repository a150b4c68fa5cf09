package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the component-scoped structured logger used outside the kernels.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

// ParseLevel maps a configuration string to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		return zerolog.InfoLevel, nil
	}
	return lvl, nil
}

// New builds a logger for the given format: "console" writes human-readable
// lines to stderr, "json" writes one JSON object per line to w.
func New(format string, w io.Writer, level zerolog.Level) (Logger, error) {
	switch format {
	case "", "console":
		return NewConsoleLogger(level), nil
	case "json":
		if w == nil {
			w = os.Stderr
		}
		return NewZerolog(w, level), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}
