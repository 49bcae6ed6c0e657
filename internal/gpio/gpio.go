// Package gpio abstracts the GPIO character device behind a small Chip/Line
// interface. The real implementation uses the Linux GPIO character device;
// the fake implementation allows testing without hardware.
package gpio

import "errors"

// ErrUnsupported is returned by the real chip on platforms without a GPIO
// character device.
var ErrUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Pull selects the input bias of a requested line.
type Pull int

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "pull-up"
	case PullDown:
		return "pull-down"
	default:
		return "none"
	}
}

// EdgeHandler receives every edge event on every input line of a chip.
// It runs on the event goroutine of the chip and must not block.
type EdgeHandler func(offset int, rising bool)

// Line is a single requested GPIO line.
type Line interface {
	// Value returns the current raw level (0 or 1).
	Value() (int, error)

	// SetValue drives an output line.
	SetValue(v int) error

	// Close releases the line.
	Close() error
}

// Chip hands out lines and routes their edge events to one handler.
type Chip interface {
	// InstallEdgeHandler sets the handler that receives edges of all input
	// lines. Installing again replaces the previous handler.
	InstallEdgeHandler(h EdgeHandler)

	// RequestInput requests offset as an input with both-edge detection.
	RequestInput(offset int, pull Pull) (Line, error)

	// RequestOutput requests offset as an output driven to initial.
	RequestOutput(offset int, initial int) (Line, error)

	// Close releases the chip. Lines should be closed first.
	Close() error
}

// Default chip and pin assignments (BCM numbering).
const (
	DefaultChip = "gpiochip0"

	PinButton    = 17
	PinBuzzer    = 18
	PinLEDRed    = 22
	PinLEDGreen  = 23
	PinLEDBlue   = 24
	PinIndicator = 25
)
