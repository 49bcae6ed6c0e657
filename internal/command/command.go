// Package command defines the notification commands and the single-slot
// mailbox that carries them from asynchronous sources (network, demo
// harness) to the notification loop.
package command

import "go.uber.org/atomic"

// Kind discriminates commands.
type Kind int

const (
	None Kind = iota
	DeskError
	DeskErrorEnd
	PreAlarm
	Alarm
	Login
	Logout
)

var kindNames = [...]string{
	None:         "none",
	DeskError:    "desk_error",
	DeskErrorEnd: "desk_error_end",
	PreAlarm:     "pre_alarm",
	Alarm:        "alarm",
	Login:        "login",
	Logout:       "logout",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// MaxUsername is the longest display name kept for Login.
const MaxUsername = 10

// Command is one pending command. Position and Melody are only meaningful
// for Alarm, Username only for Login.
type Command struct {
	Kind     Kind
	Position int
	Melody   byte
	Username string
}

// TruncateUsername cuts name to MaxUsername bytes.
func TruncateUsername(name string) string {
	if len(name) > MaxUsername {
		return name[:MaxUsername]
	}
	return name
}

// Entry is a posted command together with its sequence number.
type Entry struct {
	Seq     uint64
	Command Command
}

// Mailbox holds at most one pending command. A new Post replaces whatever
// is pending (last write wins, no queueing). It is safe for concurrent use
// without locks.
type Mailbox struct {
	slot atomic.Pointer[Entry]
	seq  atomic.Uint64
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Post stores cmd as the pending command and returns its sequence number.
func (m *Mailbox) Post(cmd Command) uint64 {
	if cmd.Kind == Login {
		cmd.Username = TruncateUsername(cmd.Username)
	}
	e := &Entry{Seq: m.seq.Inc(), Command: cmd}
	for {
		old := m.slot.Load()
		if old != nil && old.Seq > e.Seq {
			// A later Post already landed.
			return e.Seq
		}
		if m.slot.CompareAndSwap(old, e) {
			return e.Seq
		}
	}
}

// Peek returns the pending command, if any, without consuming it.
func (m *Mailbox) Peek() (Entry, bool) {
	e := m.slot.Load()
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

// Clear removes the pending command only if it is still the one numbered
// seq, so a command posted after the caller's Peek is never lost.
func (m *Mailbox) Clear(seq uint64) bool {
	e := m.slot.Load()
	if e == nil || e.Seq != seq {
		return false
	}
	return m.slot.CompareAndSwap(e, nil)
}
