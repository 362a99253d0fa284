package clipboard

import (
	"errors"

	sysclip "github.com/atotto/clipboard"
)

// ErrSystemUnavailable is returned when no system clipboard tool is present.
var ErrSystemUnavailable = errors.New("system clipboard unavailable")

// SystemAvailable reports whether text can be written to the OS clipboard.
func SystemAvailable() bool {
	return !sysclip.Unsupported
}

// WriteSystem places text on the OS clipboard. It does not touch the
// in-process Coordinator.
func WriteSystem(text string) error {
	if sysclip.Unsupported {
		return ErrSystemUnavailable
	}
	return sysclip.WriteAll(text)
}
