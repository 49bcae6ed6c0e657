// Package melody holds the alarm melodies selectable by a one-character
// code.
package melody

import "github.com/sweeney/desk-alarm/internal/tone"

// Entry is one selectable alarm melody.
type Entry struct {
	Code   byte
	Title  string
	Melody tone.Melody
}

// None is played for any unknown code: a single silent whole note that
// keeps the alarm on screen for four seconds.
var None = Entry{
	Title:  "None",
	Melody: tone.Melody{Tempo: 60, Notes: []tone.Note{{Frequency: rest, Duration: 1}, tone.End}},
}

var table = []Entry{
	{Code: 'B', Title: "Breeze", Melody: breeze},
	{Code: 'E', Title: "Fur Elise", Melody: furElise},
	{Code: 'M', Title: "Mario", Melody: mario},
	{Code: 'Z', Title: "Zelda", Melody: zelda},
	{Code: 'D', Title: "DOOM", Melody: doom},
	{Code: 'R', Title: "Rick Roll", Melody: rickRoll},
	{Code: 'N', Title: "Nokia", Melody: nokia},
	{Code: 'K', Title: "Korobeiniki", Melody: korobeiniki},
	{Code: 'P', Title: "Pink Panther", Melody: pinkPanther},
}

// Lookup returns the entry for code. Codes are case-sensitive; anything
// not in the table yields None.
func Lookup(code byte) Entry {
	for _, e := range table {
		if e.Code == code {
			return e
		}
	}
	return None
}

// All returns every selectable entry in table order.
func All() []Entry {
	return append([]Entry(nil), table...)
}
