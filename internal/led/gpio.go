package led

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/sweeney/desk-alarm/internal/gpio"
)

// DefaultThreshold is the channel level at and above which a GPIO LED
// channel is switched on.
const DefaultThreshold = 64

// GPIOStrip drives a common RGB LED from three digital outputs. Each
// channel is either fully on or off.
type GPIOStrip struct {
	lines     [3]gpio.Line
	activeLow bool

	// Threshold is compared against each channel value on Show.
	Threshold uint8

	mu    sync.Mutex
	color Color
	shown [3]int
}

// NewGPIOStrip requests the red, green and blue pins as outputs, all off.
func NewGPIOStrip(chip gpio.Chip, pins [3]int, activeLow bool) (*GPIOStrip, error) {
	s := &GPIOStrip{activeLow: activeLow, Threshold: DefaultThreshold}
	off := s.level(false)
	for i, pin := range pins {
		l, err := chip.RequestOutput(pin, off)
		if err != nil {
			for _, prev := range s.lines[:i] {
				prev.Close()
			}
			return nil, errors.Wrapf(err, "request led pin %d", pin)
		}
		s.lines[i] = l
		s.shown[i] = off
	}
	return s, nil
}

func (s *GPIOStrip) level(on bool) int {
	if on != s.activeLow {
		return 1
	}
	return 0
}

// SetColor stages c for the next Show.
func (s *GPIOStrip) SetColor(c Color) {
	s.mu.Lock()
	s.color = c
	s.mu.Unlock()
}

// Show writes the staged colour, touching only channels that changed.
func (s *GPIOStrip) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := [3]int{
		s.level(s.color.R >= s.Threshold),
		s.level(s.color.G >= s.Threshold),
		s.level(s.color.B >= s.Threshold),
	}
	var err error
	for i, v := range want {
		if v == s.shown[i] {
			continue
		}
		if werr := s.lines[i].SetValue(v); werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		s.shown[i] = v
	}
	return err
}

// Close switches the LED off and releases the pins.
func (s *GPIOStrip) Close() error {
	s.SetColor(Off)
	err := s.Show()
	for _, l := range s.lines {
		err = multierr.Append(err, l.Close())
	}
	return err
}
