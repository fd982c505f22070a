package tiff

import (
	"errors"
	"fmt"
)

// ErrUnsupported marks a valid TIFF this package cannot read directly.
var ErrUnsupported = errors.New("unsupported TIFF layout")

func errUnsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}
