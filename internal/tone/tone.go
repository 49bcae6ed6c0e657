// Package tone plays melodies on a PWM output without blocking the caller.
//
// A melody is a slice of notes. Each note's duration is a signed note
// value: N plays for 1/N of a whole note and -N plays a dotted 1/N (one and
// a half times as long). A zero duration ends the melody.
package tone

import (
	"errors"
	"time"
)

// ErrZeroTempo is returned when neither the melody nor the caller supplies
// a tempo.
var ErrZeroTempo = errors.New("tone: zero tempo")

// Note is one tone or rest. A zero Frequency is a rest.
type Note struct {
	Frequency uint16
	Duration  int16
}

// End is the sentinel note that terminates a melody.
var End = Note{}

// Melody is an immutable note sequence with its default tempo in beats per
// minute.
type Melody struct {
	Notes []Note
	Tempo uint
}

// WholeNoteMs returns the length of a whole note in milliseconds.
func WholeNoteMs(tempo uint) uint {
	if tempo == 0 {
		return 0
	}
	return 240000 / tempo
}

// NoteMs returns how long a note of the given duration value lasts when a
// whole note takes wholeMs. It returns 0 for the sentinel.
func NoteMs(duration int16, wholeMs uint) uint {
	switch {
	case duration > 0:
		return wholeMs / uint(duration)
	case duration < 0:
		return (3 * wholeMs / uint(-int32(duration))) / 2
	default:
		return 0
	}
}

// Length returns the nominal playing time of m at tempo, or at m.Tempo
// when tempo is zero.
func (m Melody) Length(tempo uint) time.Duration {
	if tempo == 0 {
		tempo = m.Tempo
	}
	whole := WholeNoteMs(tempo)
	var total uint
	for _, n := range m.Notes {
		if n.Duration == 0 {
			break
		}
		total += NoteMs(n.Duration, whole)
	}
	return time.Duration(total) * time.Millisecond
}
