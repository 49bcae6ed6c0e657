package tone

import (
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/sweeney/desk-alarm/internal/timer"
)

const (
	startDelay = time.Millisecond

	// Each note sounds for 90% of its length and is silent for the rest.
	onPerMs  = 900 * time.Microsecond
	offPerMs = 100 * time.Microsecond
)

// Sequencer plays one melody at a time on an Output. All timing is driven
// by one-shot callbacks from a timer.Scheduler; PlayMelody and StopMelody
// return immediately.
type Sequencer struct {
	out    Output
	sched  timer.Scheduler
	logger *zap.SugaredLogger

	mu       sync.Mutex
	notes    []Note
	idx      int
	wholeMs  uint
	delayOff uint
	gen      uint64
	current  timer.Timer

	done atomic.Bool
}

// NewSequencer returns an idle sequencer.
func NewSequencer(out Output, sched timer.Scheduler, logger *zap.SugaredLogger) *Sequencer {
	s := &Sequencer{out: out, sched: sched, logger: logger}
	s.done.Store(true)
	return s
}

// PlayMelody starts m from its first note, replacing anything playing.
// A non-zero tempo overrides m.Tempo.
func (s *Sequencer) PlayMelody(m Melody, tempo uint) error {
	if tempo == 0 {
		tempo = m.Tempo
	}
	if tempo == 0 {
		return ErrZeroTempo
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.gen++
	s.notes = m.Notes
	s.idx = 0
	s.wholeMs = WholeNoteMs(tempo)
	s.delayOff = 0
	s.done.Store(false)

	return s.scheduleLocked(startDelay)
}

// StopMelody cancels playback and silences the output. It is safe to call
// at any time, any number of times.
func (s *Sequencer) StopMelody() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.gen++
	if err := s.out.SetLevel(0); err != nil {
		s.logger.Warnw("silence output failed", "error", err)
	}
	s.notes = nil
	s.idx = 0
	s.delayOff = 0
	s.done.Store(true)
}

// IsDone reports whether the melody finished or was stopped.
func (s *Sequencer) IsDone() bool {
	return s.done.Load()
}

func (s *Sequencer) cancelLocked() {
	if s.current != nil {
		s.current.Stop()
		s.current = nil
	}
}

func (s *Sequencer) scheduleLocked(d time.Duration) error {
	gen := s.gen
	t, err := s.sched.AfterFunc(d, func() { s.advance(gen) })
	if err != nil {
		// Without a timer the melody cannot continue; treat it as finished.
		s.current = nil
		s.done.Store(true)
		s.logger.Warnw("melody step not scheduled", "note", s.idx, "error", err)
		return err
	}
	s.current = t
	return nil
}

// advance is the timer callback. A callback from an earlier PlayMelody or
// one that lost a race with StopMelody carries a stale generation and does
// nothing.
func (s *Sequencer) advance(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.done.Load() {
		return
	}
	s.current = nil

	if s.idx >= len(s.notes) || s.notes[s.idx].Duration == 0 {
		s.done.Store(true)
		return
	}

	if s.delayOff == 0 {
		ms := s.playToneLocked()
		if ms == 0 {
			s.done.Store(true)
			return
		}
		s.delayOff = ms
		s.scheduleLocked(time.Duration(ms) * onPerMs)
		return
	}

	if err := s.out.SetLevel(0); err != nil {
		s.logger.Warnw("silence output failed", "note", s.idx, "error", err)
	}
	off := s.delayOff
	s.delayOff = 0
	s.idx++
	s.scheduleLocked(time.Duration(off) * offPerMs)
}

// playToneLocked starts the current note and returns its length in ms.
func (s *Sequencer) playToneLocked() uint {
	n := s.notes[s.idx]
	ms := NoteMs(n.Duration, s.wholeMs)

	if n.Frequency == 0 {
		if err := s.out.SetLevel(0); err != nil {
			s.logger.Warnw("silence output failed", "note", s.idx, "error", err)
		}
		return ms
	}

	cfg := CalcDivTop(uint32(n.Frequency), SysClock)
	if err := s.out.Configure(cfg); err != nil {
		s.logger.Warnw("pwm configure failed", "note", s.idx, "frequency", n.Frequency, "error", err)
		return ms
	}
	if err := s.out.SetLevel(cfg.HalfDuty()); err != nil {
		s.logger.Warnw("pwm level failed", "note", s.idx, "frequency", n.Frequency, "error", err)
	}
	return ms
}
