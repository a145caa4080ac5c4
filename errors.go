package st7735s

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a caller passes a value the controller
	// cannot accept, such as ColorModeNone or an out-of-range window.
	ErrInvalidArgument = errors.New("st7735s: invalid argument")
	// ErrColorModeUnset is returned by pixel writes before SetColorMode succeeded.
	ErrColorModeUnset = errors.New("st7735s: color mode not set")
	// ErrNoResetPin is returned by Reset when the device has no reset line.
	ErrNoResetPin = errors.New("st7735s: no reset pin")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("st7735s: closed")
)

// BusError is a transport failure: a GPIO write or SPI transaction that did not
// complete. The driver never retries it.
type BusError struct {
	Op  string // e.g. "connect", "command", "data", "reset"
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("st7735s: %s: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// SizeMismatchError is returned by WritePixels when the buffer length does not
// match the window and color mode currently programmed on the controller.
// Nothing is sent to the panel in that case.
type SizeMismatchError struct {
	Expected int
	Actual   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("st7735s: pixel buffer is %d bytes, want %d", e.Actual, e.Expected)
}
