//go:build linux

package gpio

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
)

const consumer = "desk-alarm"

// RealChip drives an actual GPIO chip via the Linux GPIO character device.
type RealChip struct {
	chip *gpiocdev.Chip

	mu      sync.RWMutex
	handler EdgeHandler
}

// NewRealChip opens the named chip, e.g. "gpiochip0".
func NewRealChip(name string) (*RealChip, error) {
	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, errors.Wrapf(err, "open gpio chip %s", name)
	}
	return &RealChip{chip: chip}, nil
}

// InstallEdgeHandler sets the shared edge handler.
func (c *RealChip) InstallEdgeHandler(h EdgeHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *RealChip) dispatch(evt gpiocdev.LineEvent) {
	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()
	if h == nil {
		return
	}
	h(evt.Offset, evt.Type == gpiocdev.LineEventRisingEdge)
}

// RequestInput requests offset as a both-edge input.
func (c *RealChip) RequestInput(offset int, pull Pull) (Line, error) {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(c.dispatch),
	}
	switch pull {
	case PullUp:
		opts = append(opts, gpiocdev.WithPullUp)
	case PullDown:
		opts = append(opts, gpiocdev.WithPullDown)
	}

	l, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "request input pin %d", offset)
	}
	return &realLine{line: l, offset: offset}, nil
}

// RequestOutput requests offset as an output.
func (c *RealChip) RequestOutput(offset int, initial int) (Line, error) {
	l, err := c.chip.RequestLine(offset, gpiocdev.AsOutput(initial))
	if err != nil {
		return nil, errors.Wrapf(err, "request output pin %d", offset)
	}
	return &realLine{line: l, offset: offset, output: true}, nil
}

// Close releases the chip.
func (c *RealChip) Close() error {
	return errors.Wrap(c.chip.Close(), "close chip")
}

type realLine struct {
	line   *gpiocdev.Line
	offset int
	output bool
}

func (l *realLine) Value() (int, error) {
	v, err := l.line.Value()
	if err != nil {
		return 0, errors.Wrapf(err, "read pin %d", l.offset)
	}
	return v, nil
}

func (l *realLine) SetValue(v int) error {
	return errors.Wrapf(l.line.SetValue(v), "write pin %d", l.offset)
}

// Close returns outputs to a pulled-down input before release so that
// nothing is left driven across a reboot.
func (l *realLine) Close() error {
	var err error
	if l.output {
		err = multierr.Append(err, errors.Wrapf(
			l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown),
			"reconfigure pin %d", l.offset))
	}
	err = multierr.Append(err, errors.Wrapf(l.line.Close(), "close pin %d", l.offset))
	return err
}
