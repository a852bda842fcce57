// Package midifile writes planned tones as Standard MIDI Files.
package midifile

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/fretdrill/fretdrill/tone"
)

const (
	// TicksPerQuarter is the resolution of the written files.
	TicksPerQuarter = 960
	Channel         = 0
	Velocity        = 100
)

type (
	event struct {
		tick uint32
		on   bool
		key  uint8
	}

	note struct {
		key        uint8
		start, end uint32
	}
)

// Ticks converts seconds to ticks at the given tempo.
func Ticks(seconds, tempo float64) uint32 {
	if seconds <= 0 {
		return 0
	}
	return uint32(math.Round(seconds * tempo / 60 * TicksPerQuarter))
}

// New builds a format 1 file with a tempo track and one note track holding
// the plan. Tones outside the MIDI key range are left out. A tone that is
// struck again while it still sounds is released at the repeat, and repeats
// starting on the same tick are merged. A tempo of zero or less means
// tone.DefaultTempo.
func New(plan []tone.ToneRequest, tempo float64) (*smf.SMF, error) {
	if tempo <= 0 {
		tempo = tone.DefaultTempo
	}
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(tempo))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	notes := make([]note, 0, len(plan))
	held := make(map[uint8]int) // key -> index of its latest note
	for _, r := range sortedByStart(plan) {
		key := r.Note().MIDI()
		if key < 0 || key > 127 {
			continue
		}
		n := note{uint8(key), Ticks(r.Start, tempo), 0}
		n.end = max(Ticks(r.End(), tempo), n.start+1)
		if i, ok := held[n.key]; ok && notes[i].end > n.start {
			if notes[i].start == n.start {
				notes[i].end = max(notes[i].end, n.end)
				continue
			}
			// a key can only sound once, so the re-strike releases it
			notes[i].end = n.start
		}
		held[n.key] = len(notes)
		notes = append(notes, n)
	}
	events := make([]event, 0, 2*len(notes))
	for _, n := range notes {
		events = append(events, event{n.start, true, n.key}, event{n.end, false, n.key})
	}
	// note offs go first so that a repeated key is released before it is struck again
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var track smf.Track
	var last uint32
	for _, e := range events {
		var msg midi.Message
		if e.on {
			msg = midi.NoteOn(Channel, e.key, Velocity)
		} else {
			msg = midi.NoteOff(Channel, e.key)
		}
		track.Add(e.tick-last, msg)
		last = e.tick
	}
	track.Close(0)
	if err := sm.Add(track); err != nil {
		return nil, fmt.Errorf("error adding note track: %w", err)
	}
	return sm, nil
}

func sortedByStart(plan []tone.ToneRequest) []tone.ToneRequest {
	ret := append([]tone.ToneRequest(nil), plan...)
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Start < ret[j].Start })
	return ret
}

// Write writes the plan to w as a Standard MIDI File.
func Write(w io.Writer, plan []tone.ToneRequest, tempo float64) error {
	sm, err := New(plan, tempo)
	if err != nil {
		return err
	}
	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// WriteFile writes the plan to the named file.
func WriteFile(path string, plan []tone.ToneRequest, tempo float64) error {
	sm, err := New(plan, tempo)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}
