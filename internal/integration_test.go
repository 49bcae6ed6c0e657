package internal

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/sweeney/desk-alarm/internal/api"
	"github.com/sweeney/desk-alarm/internal/button"
	"github.com/sweeney/desk-alarm/internal/command"
	"github.com/sweeney/desk-alarm/internal/display"
	"github.com/sweeney/desk-alarm/internal/gpio"
	"github.com/sweeney/desk-alarm/internal/led"
	"github.com/sweeney/desk-alarm/internal/mqtt"
	"github.com/sweeney/desk-alarm/internal/notify"
	"github.com/sweeney/desk-alarm/internal/status"
	"github.com/sweeney/desk-alarm/internal/timer"
	"github.com/sweeney/desk-alarm/internal/tone"
)

const (
	pinButton    = 17
	pinIndicator = 25
)

// rig wires the real button, sequencer, router and state machine to fake
// hardware, with a manual scheduler standing in for hardware timers.
type rig struct {
	t       *testing.T
	chip    *gpio.FakeChip
	sched   *timer.Manual
	out     *tone.FakeOutput
	seq     *tone.Sequencer
	sink    *display.FakeSink
	strip   *led.FakeStrip
	router  *api.Router
	pub     *mqtt.FakePublisher
	tracker *status.Tracker
	btn     *button.Button
	machine *notify.Machine
	now     time.Time
}

func newRig(t *testing.T) *rig {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()
	r := &rig{
		t:     t,
		chip:  gpio.NewFakeChip(),
		sched: timer.NewManual(),
		out:   tone.NewFakeOutput(),
		sink:  display.NewFakeSink(),
		strip: led.NewFakeStrip(),
		pub:   mqtt.NewFakePublisher(),
		now:   time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
	}
	r.pub.Connected = true
	r.tracker = status.NewTracker(r.now, status.Config{})

	reg := button.NewRegistry(r.chip, r.sched, logger)
	t.Cleanup(func() { reg.Close() })
	btn, err := reg.Register(button.Config{
		Pin:     pinButton,
		Edge:    button.PressOnRise,
		Pull:    gpio.PullDown,
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.btn = btn

	ind, err := led.NewIndicator(r.chip, pinIndicator, r.sched, logger)
	if err != nil {
		t.Fatalf("NewIndicator: %v", err)
	}

	r.seq = tone.NewSequencer(r.out, r.sched, logger)
	box := command.NewMailbox()
	r.router = api.NewRouter(box, logger)

	r.machine = notify.New(notify.Config{Location: time.UTC}, notify.Deps{
		Display:   r.sink,
		LED:       r.strip,
		Player:    r.seq,
		Presses:   btn,
		Source:    box,
		Conn:      r.pub,
		Indicator: ind,
		Observer: func(tr notify.Transition) {
			r.tracker.Observe(tr)
			if err := r.pub.Publish(tr); err != nil {
				t.Errorf("publish: %v", err)
			}
		},
		Logger: logger,
	})
	return r
}

// request sends a raw command over the TCP framing and checks the body.
func (r *rig) request(line, wantBody string) {
	r.t.Helper()
	resp := string(r.router.Handle([]byte(line)))
	if !strings.HasSuffix(resp, wantBody) {
		r.t.Fatalf("%q: got %q, want body %s", line, resp, wantBody)
	}
}

// step advances wall and timer time by d and runs one loop iteration.
func (r *rig) step(d time.Duration) {
	r.sched.Advance(d)
	r.now = r.now.Add(d)
	r.machine.Step(r.now)
}

// press models a clean press and release, each settling for the debounce.
func (r *rig) press() {
	r.chip.Edge(pinButton, true)
	r.sched.Advance(button.DefaultDebounce)
	r.chip.Edge(pinButton, false)
	r.sched.Advance(button.DefaultDebounce)
}

func (r *rig) events() []string {
	var out []string
	for _, p := range r.pub.Payloads {
		var payload mqtt.Payload
		if err := json.Unmarshal(p, &payload); err != nil {
			r.t.Fatalf("unmarshal %s: %v", p, err)
		}
		out = append(out, payload.Notification.Event)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestIntegrationAlarmDismissedByButton(t *testing.T) {
	r := newRig(t)

	r.request("GET /api/alarm?position=42&melody=R HTTP/1.1", api.BodySuccess)
	r.step(10 * time.Millisecond)

	if r.machine.State() != notify.Alarm {
		t.Fatalf("state: got %v, want %v", r.machine.State(), notify.Alarm)
	}
	// The first note is scheduled one tick after PlayMelody.
	if len(r.out.Configs()) != 0 {
		t.Error("no note should sound before the first tick")
	}
	r.sched.Advance(time.Millisecond)
	if len(r.out.Configs()) == 0 {
		t.Error("melody should have started on the buzzer")
	}
	if got := r.strip.Current(); got != led.Green {
		t.Errorf("LED: got %+v, want green", got)
	}
	lines := r.sink.LastStrings()
	if !strings.Contains(strings.Join(lines, "|"), "Rick Roll") {
		t.Errorf("display: got %v, want the melody title", lines)
	}

	r.press()
	r.step(10 * time.Millisecond)

	if r.machine.State() != notify.Idle {
		t.Fatalf("state: got %v, want %v", r.machine.State(), notify.Idle)
	}
	if !r.seq.IsDone() {
		t.Error("sequencer should be stopped")
	}
	if r.out.Sounding() {
		t.Error("buzzer should be silent after dismissal")
	}
	if got := r.strip.Current(); got != led.Off {
		t.Errorf("LED: got %+v, want off", got)
	}

	writes := r.chip.Writes(pinIndicator)
	if len(writes) < 2 || writes[len(writes)-1] != 1 {
		t.Errorf("indicator writes: got %v, want a flash", writes)
	}
	r.sched.Advance(led.IndicatorPulse)
	if r.chip.Level(pinIndicator) != 0 {
		t.Error("indicator should turn off after its pulse")
	}

	if got, want := r.events(), []string{"ALARM_ON", "ALARM_OFF"}; !equal(got, want) {
		t.Errorf("events: got %v, want %v", got, want)
	}
	if r.pub.Transitions[1].Reason != notify.ReasonButton {
		t.Errorf("reason: got %q, want %q", r.pub.Transitions[1].Reason, notify.ReasonButton)
	}
}

func TestIntegrationAlarmEndsWithMelody(t *testing.T) {
	r := newRig(t)

	r.request("GET /api/alarm?position=1234&melody=D HTTP/1.1", api.BodySuccess)
	r.step(10 * time.Millisecond)
	if r.machine.State() != notify.Alarm {
		t.Fatalf("state: got %v, want %v", r.machine.State(), notify.Alarm)
	}

	r.sched.RunUntilIdle(100000)
	if !r.seq.IsDone() {
		t.Fatal("melody should have run to completion")
	}
	r.step(10 * time.Millisecond)

	if r.machine.State() != notify.Idle {
		t.Fatalf("state: got %v, want %v", r.machine.State(), notify.Idle)
	}
	if r.pub.Transitions[1].Reason != notify.ReasonMelodyDone {
		t.Errorf("reason: got %q, want %q", r.pub.Transitions[1].Reason, notify.ReasonMelodyDone)
	}
	if r.out.Sounding() {
		t.Error("buzzer should be silent")
	}
}

func TestIntegrationBounceDoesNotDismiss(t *testing.T) {
	r := newRig(t)

	r.request("GET /api/login?username=Ronaldinho HTTP/1.1", api.BodySuccess)
	r.step(10 * time.Millisecond)

	// Edges that settle back before the debounce resample are noise.
	for i := 0; i < 5; i++ {
		r.chip.Trigger(pinButton, true)
	}
	r.sched.Advance(button.DefaultDebounce)
	r.step(10 * time.Millisecond)

	if r.machine.State() != notify.Login {
		t.Fatalf("state: got %v, want %v", r.machine.State(), notify.Login)
	}
	if r.btn.PressedTotal() != 0 {
		t.Errorf("presses: got %d, want 0", r.btn.PressedTotal())
	}

	r.press()
	r.step(10 * time.Millisecond)
	if r.machine.State() != notify.Idle {
		t.Fatalf("state: got %v, want %v", r.machine.State(), notify.Idle)
	}
	if r.btn.PressedTotal() != 1 {
		t.Errorf("presses: got %d, want 1", r.btn.PressedTotal())
	}
}

func TestIntegrationDeskErrorNeedsClear(t *testing.T) {
	r := newRig(t)

	r.request("GET /api/error HTTP/1.1", api.BodySuccess)
	r.step(10 * time.Millisecond)

	r.press()
	r.step(time.Minute)
	if r.machine.State() != notify.DeskError {
		t.Fatalf("button and time must not clear a desk error, got %v", r.machine.State())
	}
	if got := r.strip.Current(); got != led.Red {
		t.Errorf("LED: got %+v, want red", got)
	}

	r.request("GET /api/errend HTTP/1.1", api.BodySuccess)
	r.step(10 * time.Millisecond)
	if r.machine.State() != notify.Idle {
		t.Fatalf("state: got %v, want %v", r.machine.State(), notify.Idle)
	}

	if got, want := r.events(), []string{"DESK_ERROR_ON", "DESK_ERROR_OFF"}; !equal(got, want) {
		t.Errorf("events: got %v, want %v", got, want)
	}
	if r.pub.Transitions[1].Reason != notify.ReasonCleared {
		t.Errorf("reason: got %q, want %q", r.pub.Transitions[1].Reason, notify.ReasonCleared)
	}
}

func TestIntegrationMQTTCommandTimesOut(t *testing.T) {
	r := newRig(t)

	if got := mqtt.HandleCommand(r.router, []byte("/api/prealarm")); got != api.BodySuccess {
		t.Fatalf("HandleCommand: got %q, want %q", got, api.BodySuccess)
	}
	r.step(10 * time.Millisecond)
	if r.machine.State() != notify.PreAlarm {
		t.Fatalf("state: got %v, want %v", r.machine.State(), notify.PreAlarm)
	}

	r.step(notify.DefaultTimeout - 20*time.Millisecond)
	if r.machine.State() != notify.PreAlarm {
		t.Fatalf("dismissed early: %v", r.machine.State())
	}
	r.step(20 * time.Millisecond)
	if r.machine.State() != notify.Idle {
		t.Fatalf("state: got %v, want %v", r.machine.State(), notify.Idle)
	}
	if r.pub.Transitions[1].Reason != notify.ReasonTimeout {
		t.Errorf("reason: got %q, want %q", r.pub.Transitions[1].Reason, notify.ReasonTimeout)
	}
}

func TestIntegrationRejectedCommandsChangeNothing(t *testing.T) {
	r := newRig(t)

	r.request("GET /api/alarm?position=0&melody=D HTTP/1.1", api.BodyAlarmInvalid)
	r.request("GET /api/login HTTP/1.1", api.BodyNoUsername)
	r.request("GET /nope HTTP/1.1", api.BodyNotFound)
	r.step(10 * time.Millisecond)

	if r.machine.State() != notify.Idle {
		t.Errorf("state: got %v, want %v", r.machine.State(), notify.Idle)
	}
	if len(r.pub.Transitions) != 0 {
		t.Errorf("transitions: got %d, want 0", len(r.pub.Transitions))
	}
}

func TestIntegrationStatusAfterSession(t *testing.T) {
	r := newRig(t)

	r.request("GET /api/login?username=Ronaldinho HTTP/1.1", api.BodySuccess)
	r.step(10 * time.Millisecond)
	r.request("GET /api/logout HTTP/1.1", api.BodySuccess)
	r.step(10 * time.Millisecond)
	r.press()
	r.step(10 * time.Millisecond)
	r.tracker.SetPresses(r.btn.PressedTotal())

	var got status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(r.tracker.Snapshot()), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	s := got.Status
	if s.State != "idle" {
		t.Errorf("state: got %q, want idle", s.State)
	}
	if s.Shown["login"] != 1 || s.Shown["logout"] != 1 {
		t.Errorf("shown: got %v", s.Shown)
	}
	if s.Dismissed["button"] != 1 {
		t.Errorf("dismissed: got %v", s.Dismissed)
	}
	if s.ButtonPresses != 1 {
		t.Errorf("button_presses: got %d, want 1", s.ButtonPresses)
	}
	if got, want := r.events(), []string{"LOGIN_ON", "LOGOUT_ON", "LOGOUT_OFF"}; !equal(got, want) {
		t.Errorf("events: got %v, want %v", got, want)
	}
}
