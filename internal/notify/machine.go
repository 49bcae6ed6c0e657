package notify

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/desk-alarm/internal/command"
	"github.com/sweeney/desk-alarm/internal/display"
	"github.com/sweeney/desk-alarm/internal/led"
	"github.com/sweeney/desk-alarm/internal/melody"
)

// DefaultTimeout is how long PreAlarm, Login and Logout stay up without a
// press.
const DefaultTimeout = 10 * time.Second

// DefaultFooter is drawn at the bottom of every notification.
const DefaultFooter = "Group 7"

// Config holds the tunables of a Machine.
type Config struct {
	// Timeout dismisses PreAlarm, Login and Logout.
	Timeout time.Duration

	// Location is used for the idle clock. Nil means UTC.
	Location *time.Location

	// Footer replaces DefaultFooter when non-empty.
	Footer string

	// Tempo overrides every melody's tempo when non-zero.
	Tempo uint
}

// Deps are the collaborators of a Machine. Conn, Indicator and Observer
// are optional.
type Deps struct {
	Display   display.Sink
	LED       led.Strip
	Player    Player
	Presses   Presses
	Source    Source
	Conn      Conn
	Indicator Indicator
	Observer  func(Transition)
	Logger    *zap.SugaredLogger
}

// Machine is the notification state machine. It is driven by calling Step
// from a single polling goroutine; none of its methods block.
type Machine struct {
	cfg  Config
	deps Deps

	state     State
	cmd       command.Command
	title     string
	enteredAt time.Time
	activeSeq uint64
	lastSeq   uint64

	idleDrawn  bool
	lastClock  time.Time
	connDown   bool
	connDownAt time.Time
}

// New returns a Machine in Idle.
func New(cfg Config, deps Deps) *Machine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Footer == "" {
		cfg.Footer = DefaultFooter
	}
	return &Machine{cfg: cfg, deps: deps, state: Idle}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Current returns the current state and the command that caused it.
func (m *Machine) Current() (State, command.Command) {
	return m.state, m.cmd
}

// Step runs one poll cycle at now: it reads presses, accepts a newly
// posted command, applies the dismissal rule of the current state and
// renders.
func (m *Machine) Step(now time.Time) {
	presses := m.deps.Presses.PressedSinceLastCheck()

	if e, ok := m.deps.Source.Peek(); ok {
		switch {
		case e.Seq > m.lastSeq:
			m.lastSeq = e.Seq
			// Presses made before the command arrived must not dismiss it.
			presses = 0
			m.accept(e, now)
		case e.Seq < m.activeSeq || m.state == Idle:
			// Left over from a command that was overtaken.
			m.deps.Source.Clear(e.Seq)
		}
	}

	if m.state != Idle {
		if presses > 0 && m.deps.Indicator != nil {
			m.deps.Indicator.Flash()
		}
		if reason, ok := m.dismissal(presses, now); ok {
			m.dismiss(reason, now)
		}
	}

	m.render(now)
}

func (m *Machine) dismissal(presses uint64, now time.Time) (Reason, bool) {
	switch m.state {
	case DeskError:
		// Only an explicit clear command ends a desk error.
		return "", false
	case PreAlarm, Login, Logout:
		if presses > 0 {
			return ReasonButton, true
		}
		if now.Sub(m.enteredAt) >= m.cfg.Timeout {
			return ReasonTimeout, true
		}
	case Alarm:
		if presses > 0 {
			return ReasonButton, true
		}
		if m.deps.Player.IsDone() {
			return ReasonMelodyDone, true
		}
	}
	return "", false
}

func (m *Machine) accept(e command.Entry, now time.Time) {
	cmd := e.Command
	log := m.deps.Logger.With("kind", cmd.Kind, "seq", e.Seq)

	if cmd.Kind == command.DeskErrorEnd {
		m.deps.Source.Clear(e.Seq)
		if m.state == DeskError {
			m.dismiss(ReasonCleared, now)
		} else {
			log.Debugw("error end ignored", "state", m.state)
		}
		return
	}

	next, ok := stateFor(cmd.Kind)
	if !ok {
		m.deps.Source.Clear(e.Seq)
		return
	}

	from := m.state
	if from == Alarm {
		m.deps.Player.StopMelody()
	}

	m.state = next
	m.cmd = cmd
	m.title = ""
	m.enteredAt = now
	m.activeSeq = e.Seq
	m.idleDrawn = false

	if next == Alarm {
		entry := melody.Lookup(cmd.Melody)
		m.title = entry.Title
		if err := m.deps.Player.PlayMelody(entry.Melody, m.cfg.Tempo); err != nil {
			log.Warnw("melody not started", "melody", entry.Title, "error", err)
		}
	}

	m.setLED(colorFor(next))
	log.Infow("notification shown", "from", from, "to", next)
	m.notify(Transition{At: now, From: from, To: next, Reason: ReasonCommand, Command: cmd, MelodyTitle: m.title})
}

func (m *Machine) dismiss(reason Reason, now time.Time) {
	from := m.state
	cmd := m.cmd

	m.deps.Player.StopMelody()
	m.deps.Source.Clear(m.activeSeq)

	m.deps.Display.Clear()
	m.send()
	m.setLED(led.Off)

	m.state = Idle
	m.cmd = command.Command{}
	m.title = ""
	m.activeSeq = 0
	m.idleDrawn = false

	m.deps.Logger.Infow("notification dismissed", "state", from, "reason", reason)
	m.notify(Transition{At: now, From: from, To: Idle, Reason: reason, Command: cmd})
}

func (m *Machine) notify(t Transition) {
	if m.deps.Observer != nil {
		m.deps.Observer(t)
	}
}

func colorFor(s State) led.Color {
	switch s {
	case DeskError:
		return led.Red
	case PreAlarm:
		return led.Yellow
	case Alarm:
		return led.Green
	default:
		return led.Off
	}
}

func (m *Machine) setLED(c led.Color) {
	m.deps.LED.SetColor(c)
	if err := m.deps.LED.Show(); err != nil {
		m.deps.Logger.Warnw("led update failed", "error", err)
	}
}

func (m *Machine) send() {
	if err := m.deps.Display.SendBuffer(); err != nil {
		m.deps.Logger.Warnw("display update failed", "error", err)
	}
}

// positionText renders an alarm position in at most four characters.
func positionText(pos int) string {
	s := strconv.Itoa(pos)
	if len(s) > 4 {
		s = s[:4]
	}
	return s
}
