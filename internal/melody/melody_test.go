package melody

import (
	"testing"
	"time"

	"github.com/sweeney/desk-alarm/internal/tone"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		code  byte
		title string
	}{
		{'B', "Breeze"},
		{'E', "Fur Elise"},
		{'M', "Mario"},
		{'Z', "Zelda"},
		{'D', "DOOM"},
		{'R', "Rick Roll"},
		{'N', "Nokia"},
		{'K', "Korobeiniki"},
		{'P', "Pink Panther"},
		{'d', "None"},
		{'X', "None"},
		{0, "None"},
	}
	for _, tt := range tests {
		if got := Lookup(tt.code).Title; got != tt.title {
			t.Errorf("code %q: got %q, want %q", tt.code, got, tt.title)
		}
	}
}

func TestTableIsWellFormed(t *testing.T) {
	seen := map[byte]bool{}
	for _, e := range append(All(), None) {
		if e.Code != 0 && seen[e.Code] {
			t.Errorf("duplicate code %q", e.Code)
		}
		seen[e.Code] = true

		if e.Melody.Tempo == 0 {
			t.Errorf("%s: zero tempo", e.Title)
		}
		notes := e.Melody.Notes
		if len(notes) == 0 || notes[len(notes)-1] != tone.End {
			t.Errorf("%s: not terminated by the sentinel", e.Title)
		}
		for i, note := range notes[:len(notes)-1] {
			if note.Duration == 0 {
				t.Errorf("%s: sentinel at %d before end", e.Title, i)
			}
		}
		if l := e.Melody.Length(0); l <= 0 || l > 30*time.Second {
			t.Errorf("%s: implausible length %v", e.Title, l)
		}
	}
	if len(All()) != 9 {
		t.Errorf("entries: got %d, want 9", len(All()))
	}
}

func TestNoneIsSilent(t *testing.T) {
	for _, note := range None.Melody.Notes {
		if note.Frequency != 0 {
			t.Fatalf("None plays %d Hz", note.Frequency)
		}
	}
	if got := None.Melody.Length(0); got != 4*time.Second {
		t.Errorf("None length: got %v, want 4s", got)
	}
}
