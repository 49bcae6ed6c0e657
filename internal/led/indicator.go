package led

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/desk-alarm/internal/gpio"
	"github.com/sweeney/desk-alarm/internal/timer"
)

// IndicatorPulse is how long the indicator lights per accepted press.
const IndicatorPulse = 10 * time.Millisecond

// Indicator is a single LED flashed briefly to acknowledge a press.
type Indicator struct {
	line   gpio.Line
	sched  timer.Scheduler
	logger *zap.SugaredLogger

	mu      sync.Mutex
	pending timer.Timer
	gen     uint64
}

// NewIndicator requests pin as an output, initially off.
func NewIndicator(chip gpio.Chip, pin int, sched timer.Scheduler, logger *zap.SugaredLogger) (*Indicator, error) {
	l, err := chip.RequestOutput(pin, 0)
	if err != nil {
		return nil, err
	}
	return &Indicator{line: l, sched: sched, logger: logger}, nil
}

// Flash turns the indicator on and schedules it off after IndicatorPulse.
// A flash during a running pulse restarts the pulse. It does not block.
func (i *Indicator) Flash() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.cancelLocked()
	if err := i.line.SetValue(1); err != nil {
		i.logger.Warnw("indicator on failed", "error", err)
		return
	}
	gen := i.gen
	t, err := i.sched.AfterFunc(IndicatorPulse, func() { i.expire(gen) })
	if err != nil {
		// No timer to turn it off later; drop the flash instead of
		// leaving the light on.
		i.logger.Warnw("indicator timer not scheduled", "error", err)
		i.offLocked()
		return
	}
	i.pending = t
}

// cancelLocked stops the outstanding off timer. A callback already past
// Stop sees a newer generation and does nothing.
func (i *Indicator) cancelLocked() {
	if i.pending != nil {
		i.pending.Stop()
		i.pending = nil
	}
	i.gen++
}

func (i *Indicator) expire(gen uint64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if gen != i.gen {
		return
	}
	i.pending = nil
	i.offLocked()
}

func (i *Indicator) offLocked() {
	if err := i.line.SetValue(0); err != nil {
		i.logger.Warnw("indicator off failed", "error", err)
	}
}

// Close turns the indicator off and releases the pin.
func (i *Indicator) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cancelLocked()
	i.offLocked()
	return i.line.Close()
}
