// Package notify implements the notification state machine: it turns
// pending commands and button presses into what the display, the LED and
// the buzzer present, and returns to the idle clock on dismissal.
package notify

import (
	"time"

	"github.com/sweeney/desk-alarm/internal/command"
	"github.com/sweeney/desk-alarm/internal/tone"
)

// State is the notification currently presented.
type State int

const (
	Idle State = iota
	DeskError
	PreAlarm
	Alarm
	Login
	Logout
)

var stateNames = [...]string{
	Idle:      "idle",
	DeskError: "desk_error",
	PreAlarm:  "pre_alarm",
	Alarm:     "alarm",
	Login:     "login",
	Logout:    "logout",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// stateFor maps a command to the state it presents. DeskErrorEnd and None
// do not present anything.
func stateFor(k command.Kind) (State, bool) {
	switch k {
	case command.DeskError:
		return DeskError, true
	case command.PreAlarm:
		return PreAlarm, true
	case command.Alarm:
		return Alarm, true
	case command.Login:
		return Login, true
	case command.Logout:
		return Logout, true
	default:
		return Idle, false
	}
}

// Reason explains a transition.
type Reason string

const (
	ReasonCommand    Reason = "command"
	ReasonButton     Reason = "button"
	ReasonTimeout    Reason = "timeout"
	ReasonMelodyDone Reason = "melody_done"
	ReasonCleared    Reason = "cleared"
)

// Transition describes one state change.
type Transition struct {
	At      time.Time
	From    State
	To      State
	Reason  Reason
	Command command.Command

	// MelodyTitle is set when entering Alarm.
	MelodyTitle string
}

// Player plays alarm melodies.
type Player interface {
	PlayMelody(m tone.Melody, tempo uint) error
	StopMelody()
	IsDone() bool
}

// Presses reports local button presses.
type Presses interface {
	PressedSinceLastCheck() uint64
}

// Source is the pending-command slot.
type Source interface {
	Peek() (command.Entry, bool)
	Clear(seq uint64) bool
}

// Conn reports whether the command uplink is connected.
type Conn interface {
	IsConnected() bool
}

// Indicator acknowledges a press.
type Indicator interface {
	Flash()
}
