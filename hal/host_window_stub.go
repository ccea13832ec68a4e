//go:build !cgo

package hal

import "errors"

// WindowConfig sizes the desktop window.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	Scale  int
}

func RunWindow(_ func(h HAL) func() error, _ WindowConfig) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1, or use -headless)")
}
