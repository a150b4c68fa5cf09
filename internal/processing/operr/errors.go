// Package operr holds the error conditions shared by the processing kernels.
// Kernels wrap one of these sentinels with the offending value so callers can
// branch with errors.Is and still show a descriptive message.
package operr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter          = errors.New("invalid parameter")
	ErrInvalidKernelSize         = errors.New("invalid kernel size")
	ErrInvalidStructuringElement = errors.New("invalid structuring element")
	ErrInvalidIterationCount     = errors.New("invalid iteration count")
	ErrInvalidOrder              = errors.New("invalid filter order")
	ErrUnsupportedOperation      = errors.New("unsupported operation")
	ErrComputationFailure        = errors.New("computation failure")
)

// Wrap annotates a sentinel with a formatted detail.
func Wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// Parameter reports an out-of-range numeric argument.
func Parameter(name string, value interface{}, want string) error {
	return fmt.Errorf("%w: %s=%v, want %s", ErrInvalidParameter, name, value, want)
}
