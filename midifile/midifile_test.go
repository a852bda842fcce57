package midifile_test

import (
	"bytes"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/fretdrill/fretdrill"
	"github.com/fretdrill/fretdrill/midifile"
	"github.com/fretdrill/fretdrill/tone"
)

func TestTicks(t *testing.T) {
	tests := []struct {
		seconds, tempo float64
		want           uint32
	}{
		{0.5, 120, 960},
		{1, 60, 960},
		{0.1, 120, 192},
		{-1, 120, 0},
	}
	for _, tt := range tests {
		if got := midifile.Ticks(tt.seconds, tt.tempo); got != tt.want {
			t.Errorf("Ticks(%v, %v) = %v, want %v", tt.seconds, tt.tempo, got, tt.want)
		}
	}
}

func TestWrite(t *testing.T) {
	root := fretdrill.Note{Pitch: fretdrill.A, Octave: 4}
	degrees := []fretdrill.ScaleDegree{fretdrill.Root, fretdrill.Third, fretdrill.Fifth}
	plan, err := tone.PlanSequence(root, fretdrill.Minor, degrees, 120)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := midifile.Write(&buf, plan, 120); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	sm, err := smf.ReadFrom(&buf)
	if err != nil {
		t.Fatalf("cannot read back the file: %v", err)
	}
	if len(sm.Tracks) != 2 {
		t.Fatalf("file has %v tracks, want 2", len(sm.Tracks))
	}
	if tc := sm.TempoChanges(); len(tc) == 0 || tc[0].BPM != 120 {
		t.Fatalf("tempo changes = %v, want 120 BPM", tc)
	}
	var keys []uint8
	var ticks []uint32
	var abs uint32
	for _, ev := range sm.Tracks[1] {
		abs += ev.Delta
		var ch, key, vel uint8
		if midi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
			if ch != midifile.Channel || vel != midifile.Velocity {
				t.Errorf("note %v on channel %v velocity %v", key, ch, vel)
			}
			keys = append(keys, key)
			ticks = append(ticks, abs)
		}
	}
	wantKeys := []uint8{69, 72, 76} // A4 C5 E5
	if len(keys) != len(wantKeys) {
		t.Fatalf("read %v notes, want %v", keys, wantKeys)
	}
	for i := range keys {
		if keys[i] != wantKeys[i] {
			t.Errorf("note %v = %v, want %v", i, keys[i], wantKeys[i])
		}
		if want := midifile.Ticks(plan[i].Start, 120); ticks[i] != want {
			t.Errorf("note %v at tick %v, want %v", i, ticks[i], want)
		}
	}
}

func TestRepeatedKeyIsNeverHeldTwice(t *testing.T) {
	root := fretdrill.Note{Pitch: fretdrill.C, Octave: 4}
	plan := tone.PlanRun(root, fretdrill.Major, 120)
	var buf bytes.Buffer
	if err := midifile.Write(&buf, plan, 120); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	sm, err := smf.ReadFrom(&buf)
	if err != nil {
		t.Fatalf("cannot read back the file: %v", err)
	}
	held := map[uint8]uint32{} // key -> tick of its note on
	var releases []uint32      // note off ticks of C5
	var abs uint32
	starts := 0
	for _, ev := range sm.Tracks[1] {
		abs += ev.Delta
		var ch, key, vel uint8
		msg := midi.Message(ev.Message)
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			if on, ok := held[key]; ok {
				t.Fatalf("key %v struck at tick %v while held since tick %v", key, abs, on)
			}
			held[key] = abs
			starts++
		case msg.GetNoteEnd(&ch, &key):
			if _, ok := held[key]; !ok {
				t.Fatalf("key %v released at tick %v without being held", key, abs)
			}
			delete(held, key)
			if key == 72 {
				releases = append(releases, abs)
			}
		}
	}
	if len(held) != 0 {
		t.Errorf("keys still held at the end: %v", held)
	}
	if starts != len(plan) {
		t.Errorf("read %v note starts, want %v", starts, len(plan))
	}
	// the run reaches C5 twice in a row, at plan indices 7 and 8
	want := []uint32{midifile.Ticks(plan[8].Start, 120), midifile.Ticks(plan[8].End(), 120)}
	if len(releases) != 2 || releases[0] != want[0] || releases[1] != want[1] {
		t.Errorf("C5 released at ticks %v, want %v", releases, want)
	}
}
