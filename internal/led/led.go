// Package led drives the RGB status light and the press indicator.
package led

import (
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGB colour.
type Color struct {
	R, G, B uint8
}

// Status colours.
var (
	Off    = Color{}
	Red    = Color{R: 255}
	Yellow = Color{R: 255, G: 255}
	Green  = Color{G: 255}
	Blue   = Color{B: 255}
)

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(cc colorful.Color) Color {
	r, g, b := cc.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Hex returns the colour as "#rrggbb".
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// Scale dims c to level/255 of its brightness.
func (c Color) Scale(level uint8) Color {
	return fromColorful(Off.colorful().BlendRgb(c.colorful(), float64(level)/255))
}

// Pulse timing: the level climbs one step every pulseStep from 0 to
// pulsePeak and falls back again.
const (
	pulseStep = 5 * time.Millisecond
	pulsePeak = 129
)

// PulsePeriod is the length of one full pulse.
const PulsePeriod = 2 * pulsePeak * pulseStep

// PulseLevel returns the triangle-wave level at elapsed time into a pulse.
func PulseLevel(elapsed time.Duration) uint8 {
	if elapsed < 0 {
		elapsed = 0
	}
	step := int(elapsed/pulseStep) % (2 * pulsePeak)
	if step <= pulsePeak {
		return uint8(step)
	}
	return uint8(2*pulsePeak - step)
}

// Pulse returns base dimmed to the pulse level at elapsed.
func Pulse(base Color, elapsed time.Duration) Color {
	return base.Scale(PulseLevel(elapsed))
}

// Strip is the LED collaborator: SetColor fills every pixel, Show latches.
type Strip interface {
	SetColor(c Color)
	Show() error
}
