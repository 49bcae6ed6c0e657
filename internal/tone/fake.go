package tone

import "sync"

// FakeOutput is a test double that records everything written to it.
type FakeOutput struct {
	mu      sync.Mutex
	configs []PWMConfig
	levels  []uint32

	// ConfigureError, if set, is returned by Configure.
	ConfigureError error
}

// NewFakeOutput creates a FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Configure records cfg.
func (f *FakeOutput) Configure(cfg PWMConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConfigureError != nil {
		return f.ConfigureError
	}
	f.configs = append(f.configs, cfg)
	return nil
}

// SetLevel records level.
func (f *FakeOutput) SetLevel(level uint32) error {
	f.mu.Lock()
	f.levels = append(f.levels, level)
	f.mu.Unlock()
	return nil
}

// Configs returns every configuration applied, in order.
func (f *FakeOutput) Configs() []PWMConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PWMConfig(nil), f.configs...)
}

// Levels returns every level written, in order.
func (f *FakeOutput) Levels() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.levels...)
}

// Level returns the most recent level, or 0 if none was written.
func (f *FakeOutput) Level() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.levels) == 0 {
		return 0
	}
	return f.levels[len(f.levels)-1]
}

// Sounding reports whether the output is currently driven.
func (f *FakeOutput) Sounding() bool {
	return f.Level() != 0
}
