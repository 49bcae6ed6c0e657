package tone

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/sweeney/desk-alarm/internal/timer"
)

func newTestSequencer(t *testing.T) (*Sequencer, *FakeOutput, *timer.Manual) {
	t.Helper()
	out := NewFakeOutput()
	sched := timer.NewManual()
	return NewSequencer(out, sched, zaptest.NewLogger(t).Sugar()), out, sched
}

var twoNotes = Melody{
	Tempo: 120,
	Notes: []Note{{440, 4}, {0, 8}, End},
}

func TestSequencerIdleIsDone(t *testing.T) {
	s, _, _ := newTestSequencer(t)
	if !s.IsDone() {
		t.Error("new sequencer should report done")
	}
}

func TestSequencerTimeline(t *testing.T) {
	s, out, sched := newTestSequencer(t)

	if err := s.PlayMelody(twoNotes, 0); err != nil {
		t.Fatalf("PlayMelody: %v", err)
	}
	if s.IsDone() {
		t.Fatal("done immediately after PlayMelody")
	}
	if out.Sounding() {
		t.Error("output driven before first tick")
	}

	sched.Advance(time.Millisecond)
	if !out.Sounding() {
		t.Fatal("first note not sounding after first tick")
	}
	cfgs := out.Configs()
	if len(cfgs) != 1 || cfgs[0] != CalcDivTop(440, SysClock) {
		t.Errorf("configs: got %+v", cfgs)
	}
	if out.Level() != cfgs[0].HalfDuty() {
		t.Errorf("level: got %d, want %d", out.Level(), cfgs[0].HalfDuty())
	}

	// 500ms quarter note: 450ms on, 50ms off.
	sched.Advance(449 * time.Millisecond)
	if !out.Sounding() {
		t.Error("note cut short")
	}
	sched.Advance(time.Millisecond)
	if out.Sounding() {
		t.Error("articulation gap missing")
	}

	// 250ms eighth rest, then the sentinel.
	sched.Advance(50*time.Millisecond + 250*time.Millisecond - time.Millisecond)
	if s.IsDone() {
		t.Error("done before rest elapsed")
	}
	sched.Advance(time.Millisecond)
	if !s.IsDone() {
		t.Error("not done after sentinel")
	}
	if sched.Pending() != 0 {
		t.Errorf("pending timers after completion: %d", sched.Pending())
	}

	want := []time.Duration{
		time.Millisecond,
		450 * time.Millisecond, 50 * time.Millisecond,
		225 * time.Millisecond, 25 * time.Millisecond,
	}
	if len(sched.Scheduled) != len(want) {
		t.Fatalf("scheduled: got %v, want %v", sched.Scheduled, want)
	}
	for i := range want {
		if sched.Scheduled[i] != want[i] {
			t.Errorf("step %d: got %v, want %v", i, sched.Scheduled[i], want[i])
		}
	}
}

func TestSequencerCompletesWithinNominalLength(t *testing.T) {
	m := Melody{
		Tempo: 144,
		Notes: []Note{{659, 8}, {494, 16}, {523, -8}, {0, 4}, {587, 2}, End},
	}
	s, _, sched := newTestSequencer(t)
	s.PlayMelody(m, 0)

	sched.Advance(m.Length(0) + 2*time.Millisecond)
	if !s.IsDone() {
		t.Errorf("not done within %v", m.Length(0))
	}
}

func TestSequencerEndOfSliceWithoutSentinel(t *testing.T) {
	s, _, sched := newTestSequencer(t)
	s.PlayMelody(Melody{Tempo: 120, Notes: []Note{{440, 8}}}, 0)
	sched.RunUntilIdle(100)
	if !s.IsDone() {
		t.Error("not done at end of notes")
	}
}

func TestSequencerEmptyMelody(t *testing.T) {
	s, out, sched := newTestSequencer(t)
	s.PlayMelody(Melody{Tempo: 120}, 0)
	sched.RunUntilIdle(10)
	if !s.IsDone() {
		t.Error("empty melody should finish on first tick")
	}
	if len(out.Configs()) != 0 {
		t.Error("empty melody configured the output")
	}
}

func TestSequencerTempoOverride(t *testing.T) {
	s, _, sched := newTestSequencer(t)
	s.PlayMelody(twoNotes, 240)
	sched.FireNext()
	sched.FireNext()
	if got, want := sched.Scheduled[1], 225*time.Millisecond; got != want {
		t.Errorf("first note on-time at tempo 240: got %v, want %v", got, want)
	}
}

func TestSequencerZeroTempo(t *testing.T) {
	s, _, sched := newTestSequencer(t)
	err := s.PlayMelody(Melody{Notes: []Note{{440, 4}}}, 0)
	if !errors.Is(err, ErrZeroTempo) {
		t.Errorf("got %v, want ErrZeroTempo", err)
	}
	if sched.Pending() != 0 {
		t.Error("timer scheduled for zero tempo")
	}
	if !s.IsDone() {
		t.Error("should still report done")
	}
}

func TestSequencerStopAtAnyPosition(t *testing.T) {
	m := Melody{Tempo: 120, Notes: []Note{{440, 4}, {0, 8}, {523, 4}, End}}

	for steps := 0; steps < 6; steps++ {
		s, out, sched := newTestSequencer(t)
		s.PlayMelody(m, 0)
		for i := 0; i < steps; i++ {
			sched.FireNext()
		}

		s.StopMelody()
		if !s.IsDone() {
			t.Errorf("step %d: not done after stop", steps)
		}
		if out.Sounding() {
			t.Errorf("step %d: output still driven after stop", steps)
		}
		if sched.Pending() != 0 {
			t.Errorf("step %d: %d timers still pending after stop", steps, sched.Pending())
		}

		s.StopMelody()
		if !s.IsDone() || out.Sounding() {
			t.Errorf("step %d: second stop changed state", steps)
		}
	}
}

// A callback that was already in flight when StopMelody ran must do
// nothing.
func TestSequencerStaleCallbackIsNoop(t *testing.T) {
	s, out, sched := newTestSequencer(t)
	s.PlayMelody(twoNotes, 0)
	gen := s.gen

	s.StopMelody()
	levels := len(out.Levels())

	s.advance(gen)
	if len(out.Levels()) != levels {
		t.Error("stale callback wrote to the output")
	}
	if sched.Pending() != 0 {
		t.Error("stale callback scheduled a timer")
	}
	if !s.IsDone() {
		t.Error("stale callback cleared done")
	}
}

func TestSequencerRestartReplacesPlayback(t *testing.T) {
	s, _, sched := newTestSequencer(t)
	s.PlayMelody(twoNotes, 0)
	sched.FireNext()

	s.PlayMelody(Melody{Tempo: 120, Notes: []Note{{880, 2}, End}}, 0)
	if sched.Pending() != 1 {
		t.Errorf("pending after restart: got %d, want 1", sched.Pending())
	}
	if s.IsDone() {
		t.Error("done right after restart")
	}
	sched.RunUntilIdle(20)
	if !s.IsDone() {
		t.Error("restarted melody did not finish")
	}
}

func TestSequencerPoolExhaustion(t *testing.T) {
	s, _, sched := newTestSequencer(t)
	sched.Limit = 1
	sched.AfterFunc(time.Hour, func() {})

	if err := s.PlayMelody(twoNotes, 0); !errors.Is(err, timer.ErrPoolExhausted) {
		t.Errorf("got %v, want ErrPoolExhausted", err)
	}
	if !s.IsDone() {
		t.Error("melody without a timer should report done")
	}
}

func TestSequencerConfigureErrorKeepsTiming(t *testing.T) {
	s, out, sched := newTestSequencer(t)
	out.ConfigureError = errors.New("simulated pwm fault")
	s.PlayMelody(twoNotes, 0)

	sched.Advance(twoNotes.Length(0) + time.Millisecond)
	if !s.IsDone() {
		t.Error("melody should still run to completion")
	}
}
