package display

import "sync"

// Text is one DrawText call.
type Text struct {
	Font Font
	Text string
	X, Y int
}

// FakeSink is a test double that records drawn text per frame.
type FakeSink struct {
	mu      sync.Mutex
	working []Text
	frames  [][]Text
	clears  int

	// SendError, if set, is returned by SendBuffer.
	SendError error
}

// NewFakeSink creates an empty FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

func (f *FakeSink) Clear() {
	f.mu.Lock()
	f.working = nil
	f.clears++
	f.mu.Unlock()
}

func (f *FakeSink) DrawText(font Font, text string, x, y int) {
	f.mu.Lock()
	f.working = append(f.working, Text{Font: font, Text: text, X: x, Y: y})
	f.mu.Unlock()
}

func (f *FakeSink) SendBuffer() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendError != nil {
		return f.SendError
	}
	f.frames = append(f.frames, append([]Text(nil), f.working...))
	return nil
}

// Frames returns the number of frames sent.
func (f *FakeSink) Frames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

// LastFrame returns the text of the most recently sent frame.
func (f *FakeSink) LastFrame() []Text {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return nil
	}
	return append([]Text(nil), f.frames[len(f.frames)-1]...)
}

// LastStrings returns only the strings of the last frame, in draw order.
func (f *FakeSink) LastStrings() []string {
	var out []string
	for _, t := range f.LastFrame() {
		out = append(out, t.Text)
	}
	return out
}

// Clears returns the number of Clear calls.
func (f *FakeSink) Clears() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clears
}
