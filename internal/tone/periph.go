package tone

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// PeriphOutput drives a buzzer from a hardware PWM pin through periph.io.
type PeriphOutput struct {
	pin gpio.PinIO

	mu  sync.Mutex
	cfg PWMConfig
}

// NewPeriphOutput initialises the host drivers and claims the named pin,
// e.g. "GPIO18". The pin starts low.
func NewPeriphOutput(pinName string) (*PeriphOutput, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "init periph host")
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, errors.Errorf("no pwm pin found for %q", pinName)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, errors.Wrapf(err, "drive %s low", pinName)
	}
	return &PeriphOutput{pin: pin}, nil
}

// Configure records the divider and wrap used by the next SetLevel.
func (o *PeriphOutput) Configure(cfg PWMConfig) error {
	o.mu.Lock()
	o.cfg = cfg
	o.mu.Unlock()
	return nil
}

// SetLevel converts a compare level into a periph duty cycle.
func (o *PeriphOutput) SetLevel(level uint32) error {
	o.mu.Lock()
	cfg := o.cfg
	o.mu.Unlock()

	if level == 0 || cfg.Top == 0 {
		return errors.Wrap(o.pin.Out(gpio.Low), "silence pwm")
	}
	if level > cfg.Top {
		level = cfg.Top
	}
	duty := gpio.Duty(uint64(level) * uint64(gpio.DutyMax) / uint64(cfg.Top))
	freq := physic.Frequency(cfg.Frequency(SysClock) * float64(physic.Hertz))
	return errors.Wrapf(o.pin.PWM(duty, freq), "pwm %s at %s", duty, freq)
}

// Close silences and releases the pin.
func (o *PeriphOutput) Close() error {
	return multierr.Append(
		errors.Wrap(o.pin.Out(gpio.Low), "silence pwm"),
		errors.Wrap(o.pin.Halt(), "halt pwm"),
	)
}
