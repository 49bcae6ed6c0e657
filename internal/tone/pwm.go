package tone

// SysClock is the PWM peripheral input clock in Hz.
const SysClock = 125000000

// PWMConfig is a PWM slice setting. Div is a fixed-point divider with four
// fractional bits; the counter wraps at Top.
type PWMConfig struct {
	Div uint32
	Top uint32
}

// CalcDivTop picks a divider and wrap value so that the output runs at
// freq. The divider never drops below 16 (1.0) and Top stays below 60000.
func CalcDivTop(freq uint32, sysClock uint32) PWMConfig {
	if freq == 0 {
		return PWMConfig{}
	}
	count := uint64(sysClock) * 16 / uint64(freq)
	div := count / 60000
	if div < 16 {
		div = 16
	}
	return PWMConfig{Div: uint32(div), Top: uint32(count / div)}
}

// Frequency returns the output frequency produced by c.
func (c PWMConfig) Frequency(sysClock uint32) float64 {
	if c.Div == 0 || c.Top == 0 {
		return 0
	}
	return float64(sysClock) * 16 / (float64(c.Div) * float64(c.Top))
}

// HalfDuty is the counter level giving a 50% duty cycle.
func (c PWMConfig) HalfDuty() uint32 {
	return c.Top / 2
}

// Output is a PWM-capable pin.
type Output interface {
	// Configure sets divider and wrap.
	Configure(cfg PWMConfig) error

	// SetLevel sets the compare level. Zero silences the output.
	SetLevel(level uint32) error
}
