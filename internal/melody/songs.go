package melody

import "github.com/sweeney/desk-alarm/internal/tone"

type n = tone.Note

var breeze = tone.Melody{Tempo: 100, Notes: []n{
	{Frequency: c5, Duration: 8}, {Frequency: e5, Duration: 8}, {Frequency: g5, Duration: 8}, {Frequency: c6, Duration: 4}, {Frequency: rest, Duration: 8}, {Frequency: g5, Duration: 8}, {Frequency: c6, Duration: 2},
	tone.End,
}}

var furElise = tone.Melody{Tempo: 80, Notes: []n{
	{Frequency: e5, Duration: 16}, {Frequency: ds5, Duration: 16}, {Frequency: e5, Duration: 16}, {Frequency: ds5, Duration: 16}, {Frequency: e5, Duration: 16}, {Frequency: b4, Duration: 16}, {Frequency: d5, Duration: 16}, {Frequency: c5, Duration: 16},
	{Frequency: a4, Duration: -8}, {Frequency: c4, Duration: 16}, {Frequency: e4, Duration: 16}, {Frequency: a4, Duration: 16},
	{Frequency: b4, Duration: -8}, {Frequency: e4, Duration: 16}, {Frequency: gs4, Duration: 16}, {Frequency: b4, Duration: 16},
	{Frequency: c5, Duration: 8}, {Frequency: rest, Duration: 16}, {Frequency: e4, Duration: 16}, {Frequency: e5, Duration: 16}, {Frequency: ds5, Duration: 16},
	{Frequency: e5, Duration: 16}, {Frequency: ds5, Duration: 16}, {Frequency: e5, Duration: 16}, {Frequency: b4, Duration: 16}, {Frequency: d5, Duration: 16}, {Frequency: c5, Duration: 16},
	{Frequency: a4, Duration: -8}, {Frequency: c4, Duration: 16}, {Frequency: e4, Duration: 16}, {Frequency: a4, Duration: 16},
	{Frequency: b4, Duration: -8}, {Frequency: e4, Duration: 16}, {Frequency: c5, Duration: 16}, {Frequency: b4, Duration: 16},
	{Frequency: a4, Duration: 4},
	tone.End,
}}

var mario = tone.Melody{Tempo: 200, Notes: []n{
	{Frequency: e5, Duration: 8}, {Frequency: e5, Duration: 8}, {Frequency: rest, Duration: 8}, {Frequency: e5, Duration: 8}, {Frequency: rest, Duration: 8}, {Frequency: c5, Duration: 8}, {Frequency: e5, Duration: 8},
	{Frequency: g5, Duration: 4}, {Frequency: rest, Duration: 4}, {Frequency: g4, Duration: 8}, {Frequency: rest, Duration: 4},
	{Frequency: c5, Duration: -4}, {Frequency: g4, Duration: 8}, {Frequency: rest, Duration: 4}, {Frequency: e4, Duration: -4},
	{Frequency: a4, Duration: 4}, {Frequency: b4, Duration: 4}, {Frequency: as4, Duration: 8}, {Frequency: a4, Duration: 4},
	{Frequency: g4, Duration: -8}, {Frequency: e5, Duration: -8}, {Frequency: g5, Duration: -8}, {Frequency: a5, Duration: 4}, {Frequency: f5, Duration: 8}, {Frequency: g5, Duration: 8},
	{Frequency: rest, Duration: 8}, {Frequency: e5, Duration: 4}, {Frequency: c5, Duration: 8}, {Frequency: d5, Duration: 8}, {Frequency: b4, Duration: -4},
	tone.End,
}}

var zelda = tone.Melody{Tempo: 108, Notes: []n{
	{Frequency: e4, Duration: 2}, {Frequency: g4, Duration: 4},
	{Frequency: d4, Duration: 2}, {Frequency: c4, Duration: 8}, {Frequency: d4, Duration: 8},
	{Frequency: e4, Duration: 2}, {Frequency: g4, Duration: 4},
	{Frequency: d4, Duration: -2},
	{Frequency: e4, Duration: 2}, {Frequency: g4, Duration: 4},
	{Frequency: d5, Duration: 2}, {Frequency: c5, Duration: 4},
	{Frequency: g4, Duration: 2}, {Frequency: f4, Duration: 8}, {Frequency: e4, Duration: 8},
	{Frequency: d4, Duration: -2},
	tone.End,
}}

var doom = tone.Melody{Tempo: 225, Notes: []n{
	{Frequency: e2, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: e3, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: d3, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: e2, Duration: 8},
	{Frequency: c3, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: as2, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: b2, Duration: 8}, {Frequency: c3, Duration: 8},
	{Frequency: e2, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: e3, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: d3, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: e2, Duration: 8},
	{Frequency: c3, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: e2, Duration: 8}, {Frequency: as2, Duration: -2},
	tone.End,
}}

var rickRoll = tone.Melody{Tempo: 114, Notes: []n{
	{Frequency: d5, Duration: -4}, {Frequency: e5, Duration: -4}, {Frequency: a4, Duration: 4}, {Frequency: e5, Duration: -4}, {Frequency: fs5, Duration: -4}, {Frequency: a5, Duration: 16}, {Frequency: g5, Duration: 16}, {Frequency: fs5, Duration: 8},
	{Frequency: d5, Duration: -4}, {Frequency: e5, Duration: -4}, {Frequency: a4, Duration: 2}, {Frequency: a4, Duration: 16}, {Frequency: a4, Duration: 16}, {Frequency: b4, Duration: 16}, {Frequency: d5, Duration: 8}, {Frequency: d5, Duration: 16},
	{Frequency: d5, Duration: -4}, {Frequency: e5, Duration: -4}, {Frequency: a4, Duration: 4}, {Frequency: e5, Duration: -4}, {Frequency: fs5, Duration: -4}, {Frequency: a5, Duration: 16}, {Frequency: g5, Duration: 16}, {Frequency: fs5, Duration: 8},
	{Frequency: d5, Duration: -4}, {Frequency: e5, Duration: -4}, {Frequency: a4, Duration: 2}, {Frequency: a4, Duration: 16}, {Frequency: a4, Duration: 16}, {Frequency: b4, Duration: 16}, {Frequency: d5, Duration: 8}, {Frequency: d5, Duration: 16},
	tone.End,
}}

var nokia = tone.Melody{Tempo: 180, Notes: []n{
	{Frequency: e5, Duration: 8}, {Frequency: d5, Duration: 8}, {Frequency: fs4, Duration: 4}, {Frequency: gs4, Duration: 4},
	{Frequency: cs5, Duration: 8}, {Frequency: b4, Duration: 8}, {Frequency: d4, Duration: 4}, {Frequency: e4, Duration: 4},
	{Frequency: b4, Duration: 8}, {Frequency: a4, Duration: 8}, {Frequency: cs4, Duration: 4}, {Frequency: e4, Duration: 4},
	{Frequency: a4, Duration: 2},
	tone.End,
}}

var korobeiniki = tone.Melody{Tempo: 144, Notes: []n{
	{Frequency: e5, Duration: 4}, {Frequency: b4, Duration: 8}, {Frequency: c5, Duration: 8}, {Frequency: d5, Duration: 4}, {Frequency: c5, Duration: 8}, {Frequency: b4, Duration: 8},
	{Frequency: a4, Duration: 4}, {Frequency: a4, Duration: 8}, {Frequency: c5, Duration: 8}, {Frequency: e5, Duration: 4}, {Frequency: d5, Duration: 8}, {Frequency: c5, Duration: 8},
	{Frequency: b4, Duration: -4}, {Frequency: c5, Duration: 8}, {Frequency: d5, Duration: 4}, {Frequency: e5, Duration: 4},
	{Frequency: c5, Duration: 4}, {Frequency: a4, Duration: 4}, {Frequency: a4, Duration: 8}, {Frequency: a4, Duration: 4}, {Frequency: b4, Duration: 8}, {Frequency: c5, Duration: 8},
	{Frequency: d5, Duration: -4}, {Frequency: f5, Duration: 8}, {Frequency: a5, Duration: 4}, {Frequency: g5, Duration: 8}, {Frequency: f5, Duration: 8},
	{Frequency: e5, Duration: -4}, {Frequency: c5, Duration: 8}, {Frequency: e5, Duration: 4}, {Frequency: d5, Duration: 8}, {Frequency: c5, Duration: 8},
	{Frequency: b4, Duration: 4}, {Frequency: b4, Duration: 8}, {Frequency: c5, Duration: 8}, {Frequency: d5, Duration: 4}, {Frequency: e5, Duration: 4},
	{Frequency: c5, Duration: 4}, {Frequency: a4, Duration: 4}, {Frequency: a4, Duration: 4}, {Frequency: rest, Duration: 4},
	tone.End,
}}

var pinkPanther = tone.Melody{Tempo: 120, Notes: []n{
	{Frequency: rest, Duration: 2}, {Frequency: rest, Duration: 4}, {Frequency: rest, Duration: 8}, {Frequency: ds4, Duration: 8},
	{Frequency: e4, Duration: -4}, {Frequency: rest, Duration: 8}, {Frequency: fs4, Duration: 8}, {Frequency: g4, Duration: -4}, {Frequency: rest, Duration: 8}, {Frequency: ds4, Duration: 8},
	{Frequency: e4, Duration: -8}, {Frequency: fs4, Duration: 8}, {Frequency: g4, Duration: -8}, {Frequency: c5, Duration: 8}, {Frequency: b4, Duration: -8}, {Frequency: e4, Duration: 8}, {Frequency: g4, Duration: -8}, {Frequency: b4, Duration: 8},
	{Frequency: as4, Duration: 2}, {Frequency: a4, Duration: -16}, {Frequency: g4, Duration: -16}, {Frequency: e4, Duration: -16}, {Frequency: d4, Duration: -16},
	{Frequency: e4, Duration: 2},
	tone.End,
}}
