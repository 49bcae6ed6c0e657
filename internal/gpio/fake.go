package gpio

import (
	"fmt"
	"sync"
)

// FakeChip is a test double that holds scripted line levels and lets tests
// inject edge events.
type FakeChip struct {
	mu      sync.Mutex
	handler EdgeHandler
	levels  map[int]int
	inputs  map[int]Pull
	outputs map[int]bool
	writes  map[int][]int

	// Installs counts InstallEdgeHandler calls.
	Installs int

	// RequestError, if set for an offset, is returned by RequestInput or
	// RequestOutput for that offset.
	RequestError map[int]error

	// ReadError, if set, is returned by every Value call.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeChip creates an empty FakeChip. Every line reads 0 until set.
func NewFakeChip() *FakeChip {
	return &FakeChip{
		levels:       make(map[int]int),
		inputs:       make(map[int]Pull),
		outputs:      make(map[int]bool),
		writes:       make(map[int][]int),
		RequestError: make(map[int]error),
	}
}

// InstallEdgeHandler records the handler.
func (f *FakeChip) InstallEdgeHandler(h EdgeHandler) {
	f.mu.Lock()
	f.handler = h
	f.Installs++
	f.mu.Unlock()
}

// RequestInput registers offset as an input.
func (f *FakeChip) RequestInput(offset int, pull Pull) (Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.RequestError[offset]; err != nil {
		return nil, err
	}
	if _, busy := f.inputs[offset]; busy || f.outputs[offset] {
		return nil, fmt.Errorf("fake: pin %d busy", offset)
	}
	f.inputs[offset] = pull
	return &fakeLine{chip: f, offset: offset}, nil
}

// RequestOutput registers offset as an output driven to initial.
func (f *FakeChip) RequestOutput(offset int, initial int) (Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.RequestError[offset]; err != nil {
		return nil, err
	}
	if _, busy := f.inputs[offset]; busy || f.outputs[offset] {
		return nil, fmt.Errorf("fake: pin %d busy", offset)
	}
	f.outputs[offset] = true
	f.levels[offset] = initial
	f.writes[offset] = append(f.writes[offset], initial)
	return &fakeLine{chip: f, offset: offset, output: true}, nil
}

// Close marks the chip as closed.
func (f *FakeChip) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// SetLevel changes the level of offset without raising an edge.
func (f *FakeChip) SetLevel(offset, v int) {
	f.mu.Lock()
	f.levels[offset] = v
	f.mu.Unlock()
}

// Edge sets the level of offset and delivers the matching edge to the
// installed handler, as the kernel would.
func (f *FakeChip) Edge(offset int, rising bool) {
	v := 0
	if rising {
		v = 1
	}
	f.SetLevel(offset, v)
	f.Trigger(offset, rising)
}

// Trigger delivers an edge without changing the level, modelling a bounce
// that has already settled back by the time the line is sampled.
func (f *FakeChip) Trigger(offset int, rising bool) {
	f.mu.Lock()
	h := f.handler
	_, isInput := f.inputs[offset]
	f.mu.Unlock()
	if h != nil && isInput {
		h(offset, rising)
	}
}

// Level returns the current level of offset.
func (f *FakeChip) Level(offset int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levels[offset]
}

// Writes returns every value driven onto offset, including the initial one.
func (f *FakeChip) Writes(offset int) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.writes[offset]...)
}

// InputPull reports the bias requested for offset and whether it is held
// as an input.
func (f *FakeChip) InputPull(offset int) (Pull, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.inputs[offset]
	return p, ok
}

// Held reports whether offset is currently requested.
func (f *FakeChip) Held(offset int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, in := f.inputs[offset]
	return in || f.outputs[offset]
}

type fakeLine struct {
	chip   *FakeChip
	offset int
	output bool
	closed bool
}

func (l *fakeLine) Value() (int, error) {
	l.chip.mu.Lock()
	defer l.chip.mu.Unlock()
	if l.chip.ReadError != nil {
		return 0, l.chip.ReadError
	}
	return l.chip.levels[l.offset], nil
}

func (l *fakeLine) SetValue(v int) error {
	l.chip.mu.Lock()
	defer l.chip.mu.Unlock()
	if !l.output {
		return fmt.Errorf("fake: pin %d is not an output", l.offset)
	}
	l.chip.levels[l.offset] = v
	l.chip.writes[l.offset] = append(l.chip.writes[l.offset], v)
	return nil
}

func (l *fakeLine) Close() error {
	l.chip.mu.Lock()
	defer l.chip.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	delete(l.chip.inputs, l.offset)
	delete(l.chip.outputs, l.offset)
	return nil
}
