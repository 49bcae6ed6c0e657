package led

import "sync"

// FakeStrip is a test double that records shown colours.
type FakeStrip struct {
	mu     sync.Mutex
	staged Color
	shown  []Color
}

// NewFakeStrip creates a FakeStrip.
func NewFakeStrip() *FakeStrip {
	return &FakeStrip{}
}

func (f *FakeStrip) SetColor(c Color) {
	f.mu.Lock()
	f.staged = c
	f.mu.Unlock()
}

func (f *FakeStrip) Show() error {
	f.mu.Lock()
	f.shown = append(f.shown, f.staged)
	f.mu.Unlock()
	return nil
}

// Current returns the last shown colour.
func (f *FakeStrip) Current() Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.shown) == 0 {
		return Off
	}
	return f.shown[len(f.shown)-1]
}

// Shown returns every shown colour, in order.
func (f *FakeStrip) Shown() []Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Color(nil), f.shown...)
}
