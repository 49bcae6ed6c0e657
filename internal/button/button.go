// Package button turns noisy edge events on GPIO input lines into a stable
// pressed state and an exactly-once press counter.
//
// All buttons of a chip share one Registry. The registry installs a single
// edge dispatcher on the chip and demultiplexes events by pin. A raw edge
// arms a one-shot debounce timer for its direction unless one is already
// pending; when the timer fires the line is resampled and only a level that
// is still present is trusted.
package button

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sweeney/desk-alarm/internal/gpio"
	"github.com/sweeney/desk-alarm/internal/timer"
)

// MaxPin is the highest pin the debounced bitmask can track.
const MaxPin = 63

// DefaultDebounce is used when a Config leaves Debounce at zero.
const DefaultDebounce = 50 * time.Millisecond

var (
	// ErrInvalidPin is returned for pins outside 0..MaxPin.
	ErrInvalidPin = errors.New("button: invalid pin")

	// ErrPinInUse is returned when a pin is registered twice.
	ErrPinInUse = errors.New("button: pin already registered")
)

// Edge selects which debounced transition counts as a press.
type Edge int

const (
	PressOnRise Edge = iota
	PressOnFall
)

func (e Edge) String() string {
	switch e {
	case PressOnRise:
		return "rise"
	case PressOnFall:
		return "fall"
	default:
		return "unknown"
	}
}

// Config describes one debounced input.
type Config struct {
	Pin      int
	Debounce time.Duration
	Edge     Edge
	Pull     gpio.Pull
	Enabled  bool
}

func (c Config) validate() error {
	if c.Pin < 0 || c.Pin > MaxPin {
		return errors.Wrapf(ErrInvalidPin, "pin %d", c.Pin)
	}
	if c.Debounce < 0 {
		return errors.Errorf("button: negative debounce %v", c.Debounce)
	}
	if c.Edge != PressOnRise && c.Edge != PressOnFall {
		return errors.Errorf("button: unknown edge %d", c.Edge)
	}
	return nil
}

type record struct {
	pin      int
	line     gpio.Line
	debounce time.Duration
	edge     Edge

	enabled      atomic.Bool
	count        atomic.Uint64
	lastReported atomic.Uint64
	pendingHigh  atomic.Bool
	pendingLow   atomic.Bool
}

// Registry owns every debounced input of one chip.
type Registry struct {
	chip   gpio.Chip
	sched  timer.Scheduler
	logger *zap.SugaredLogger

	install sync.Once

	// mu serialises writers of pins; readers load the map lock-free.
	mu   sync.Mutex
	pins atomic.Pointer[map[int]*record]

	levels atomic.Uint64
}

// NewRegistry creates an empty registry. Nothing is installed on the chip
// until the first successful Register.
func NewRegistry(chip gpio.Chip, sched timer.Scheduler, logger *zap.SugaredLogger) *Registry {
	r := &Registry{chip: chip, sched: sched, logger: logger}
	empty := map[int]*record{}
	r.pins.Store(&empty)
	return r
}

// Register configures cfg.Pin as a debounced input. On error the returned
// Button is inert: it reports no presses and its methods are no-ops.
func (r *Registry) Register(cfg Config) (*Button, error) {
	if err := cfg.validate(); err != nil {
		r.logger.Warnw("button not registered", "pin", cfg.Pin, "error", err)
		return &Button{pin: cfg.Pin}, err
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookup(cfg.Pin) != nil {
		err := errors.Wrapf(ErrPinInUse, "pin %d", cfg.Pin)
		r.logger.Warnw("button not registered", "pin", cfg.Pin, "error", err)
		return &Button{pin: cfg.Pin}, err
	}

	r.install.Do(func() {
		r.chip.InstallEdgeHandler(r.dispatch)
	})

	line, err := r.chip.RequestInput(cfg.Pin, cfg.Pull)
	if err != nil {
		r.logger.Errorw("button line request failed", "pin", cfg.Pin, "error", err)
		return &Button{pin: cfg.Pin}, err
	}

	v, err := line.Value()
	if err != nil {
		r.logger.Errorw("button initial read failed", "pin", cfg.Pin, "error", err)
		return &Button{pin: cfg.Pin}, multierr.Append(err, line.Close())
	}
	if v == 1 {
		r.setLevel(cfg.Pin)
	} else {
		r.clearLevel(cfg.Pin)
	}

	rec := &record{
		pin:      cfg.Pin,
		line:     line,
		debounce: cfg.Debounce,
		edge:     cfg.Edge,
	}
	rec.enabled.Store(cfg.Enabled)

	next := r.copyPins()
	next[cfg.Pin] = rec
	r.pins.Store(&next)

	r.logger.Infow("button registered",
		"pin", cfg.Pin,
		"edge", cfg.Edge,
		"pull", cfg.Pull,
		"debounce", cfg.Debounce,
		"enabled", cfg.Enabled,
	)
	return &Button{reg: r, pin: cfg.Pin, rec: rec}, nil
}

// Close releases every registered line.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for pin, rec := range *r.pins.Load() {
		rec.enabled.Store(false)
		err = multierr.Append(err, errors.Wrapf(rec.line.Close(), "close button pin %d", pin))
	}
	empty := map[int]*record{}
	r.pins.Store(&empty)
	return err
}

func (r *Registry) lookup(pin int) *record {
	return (*r.pins.Load())[pin]
}

func (r *Registry) copyPins() map[int]*record {
	cur := *r.pins.Load()
	next := make(map[int]*record, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	return next
}

// dispatch runs on the chip's event goroutine for every edge of every pin.
func (r *Registry) dispatch(pin int, rising bool) {
	rec := r.lookup(pin)
	if rec == nil || !rec.enabled.Load() {
		return
	}

	pending := &rec.pendingLow
	if rising {
		pending = &rec.pendingHigh
	}
	if !pending.CompareAndSwap(false, true) {
		return
	}

	_, err := r.sched.AfterFunc(rec.debounce, func() { r.settle(rec, rising) })
	if err != nil {
		pending.Store(false)
		r.logger.Warnw("debounce timer not scheduled", "pin", pin, "rising", rising, "error", err)
	}
}

// settle resamples rec after the debounce window. A record that was
// closed, or replaced by a new registration of the same pin, while its
// timer was outstanding is left alone.
func (r *Registry) settle(rec *record, high bool) {
	pending := &rec.pendingLow
	if high {
		pending = &rec.pendingHigh
	}
	defer pending.Store(false)

	if r.lookup(rec.pin) != rec {
		return
	}
	pin := rec.pin

	v, err := rec.line.Value()
	if err != nil {
		r.logger.Warnw("debounce resample failed", "pin", pin, "error", err)
		return
	}

	switch {
	case high && v == 1:
		if r.setLevel(pin) && rec.edge == PressOnRise && rec.enabled.Load() {
			rec.count.Inc()
		}
	case !high && v == 0:
		if r.clearLevel(pin) && rec.edge == PressOnFall && rec.enabled.Load() {
			rec.count.Inc()
		}
	}
}

// setLevel sets the debounced bit of pin and reports whether it changed.
func (r *Registry) setLevel(pin int) bool {
	bit := uint64(1) << uint(pin)
	for {
		old := r.levels.Load()
		if old&bit != 0 {
			return false
		}
		if r.levels.CompareAndSwap(old, old|bit) {
			return true
		}
	}
}

// clearLevel clears the debounced bit of pin and reports whether it changed.
func (r *Registry) clearLevel(pin int) bool {
	bit := uint64(1) << uint(pin)
	for {
		old := r.levels.Load()
		if old&bit == 0 {
			return false
		}
		if r.levels.CompareAndSwap(old, old&^bit) {
			return true
		}
	}
}

func (r *Registry) level(pin int) bool {
	return r.levels.Load()&(uint64(1)<<uint(pin)) != 0
}

// Button is a handle to one registered input.
type Button struct {
	reg *Registry
	pin int
	rec *record
}

// Pin returns the configured pin.
func (b *Button) Pin() int {
	return b.pin
}

// IsPressed returns the last debounced state, honouring the press edge.
func (b *Button) IsPressed() bool {
	if b.rec == nil {
		return false
	}
	high := b.reg.level(b.pin)
	if b.rec.edge == PressOnRise {
		return high
	}
	return !high
}

// PressedTotal returns the number of presses since registration or the
// last ClearPressedTotal.
func (b *Button) PressedTotal() uint64 {
	if b.rec == nil {
		return 0
	}
	return b.rec.count.Load()
}

// ClearPressedTotal resets the counter and the since-last-check snapshot.
func (b *Button) ClearPressedTotal() {
	if b.rec == nil {
		return
	}
	b.rec.count.Store(0)
	b.rec.lastReported.Store(0)
}

// PressedSinceLastCheck returns the presses counted since the previous
// call and advances the snapshot.
func (b *Button) PressedSinceLastCheck() uint64 {
	if b.rec == nil {
		return 0
	}
	now := b.rec.count.Load()
	prev := b.rec.lastReported.Swap(now)
	if now < prev {
		return 0
	}
	return now - prev
}

// Enable resumes edge processing.
func (b *Button) Enable() {
	if b.rec != nil {
		b.rec.enabled.Store(true)
	}
}

// Disable stops edge processing without releasing the line.
func (b *Button) Disable() {
	if b.rec != nil {
		b.rec.enabled.Store(false)
	}
}

// Enabled reports whether edges are being processed.
func (b *Button) Enabled() bool {
	return b.rec != nil && b.rec.enabled.Load()
}

// Close unregisters the button and releases its line.
func (b *Button) Close() error {
	if b.rec == nil {
		return nil
	}
	r := b.reg
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookup(b.pin) != b.rec {
		return nil
	}
	b.rec.enabled.Store(false)
	next := r.copyPins()
	delete(next, b.pin)
	r.pins.Store(&next)
	r.clearLevel(b.pin)

	return errors.Wrapf(b.rec.line.Close(), "close button pin %d", b.pin)
}
