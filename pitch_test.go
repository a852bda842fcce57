package fretdrill_test

import (
	"errors"
	"math"
	"testing"

	"github.com/fretdrill/fretdrill"
)

func TestFrequency(t *testing.T) {
	tests := []struct {
		octave, root, semitones int
		want                    float64
	}{
		{4, int(fretdrill.A), 0, 440},
		{5, int(fretdrill.A), 0, 880},
		{3, int(fretdrill.A), 0, 220},
		{4, int(fretdrill.C), 9, 440},
		{3, int(fretdrill.A), 12, 440},
	}
	for _, tt := range tests {
		if got := fretdrill.Frequency(tt.octave, tt.root, tt.semitones); got != tt.want {
			t.Errorf("Frequency(%v, %v, %v) = %v, want %v", tt.octave, tt.root, tt.semitones, got, tt.want)
		}
	}
	// middle C
	if got := fretdrill.Frequency(4, int(fretdrill.C), 0); math.Abs(got-261.6256) > 1e-3 {
		t.Errorf("Frequency of C4 = %v, want about 261.6256", got)
	}
}

func TestFrequencyIsReproducible(t *testing.T) {
	for o := 0; o < 8; o++ {
		for r := 0; r < fretdrill.NumPitchClasses; r++ {
			a := fretdrill.Frequency(o, r, 7)
			b := fretdrill.Frequency(o, r, 7)
			if math.Float64bits(a) != math.Float64bits(b) {
				t.Fatalf("Frequency(%v, %v, 7) not bit-identical: %v vs %v", o, r, a, b)
			}
		}
	}
}

func TestFrequencyMonotonic(t *testing.T) {
	for r := 0; r < fretdrill.NumPitchClasses; r++ {
		prev := 0.0
		for s := 0; s < 12; s++ {
			f := fretdrill.Frequency(4, r, s)
			if f <= prev {
				t.Errorf("Frequency(4, %v, %v) = %v, not above %v", r, s, f, prev)
			}
			prev = f
		}
	}
}

func TestReferenceFrequency(t *testing.T) {
	if got := fretdrill.ReferenceFrequency(fretdrill.A); got != 440 {
		t.Errorf("ReferenceFrequency(A) = %v, want 440", got)
	}
	for p := fretdrill.C; p < fretdrill.NumPitchClasses; p++ {
		if got, want := fretdrill.ReferenceFrequency(p), fretdrill.Frequency(4, int(p), 0); got != want {
			t.Errorf("ReferenceFrequency(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestParseNote(t *testing.T) {
	tests := []struct {
		in   string
		want fretdrill.Note
	}{
		{"A", fretdrill.Note{Pitch: fretdrill.A, Octave: 4}},
		{"C#5", fretdrill.Note{Pitch: fretdrill.CSharp, Octave: 5}},
		{"Bb3", fretdrill.Note{Pitch: fretdrill.ASharp, Octave: 3}},
		{"Cb4", fretdrill.Note{Pitch: fretdrill.B, Octave: 3}},
		{"B#4", fretdrill.Note{Pitch: fretdrill.C, Octave: 5}},
		{"E2", fretdrill.Note{Pitch: fretdrill.E, Octave: 2}},
		{"C-1", fretdrill.Note{Pitch: fretdrill.C, Octave: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := fretdrill.ParseNote(tt.in)
			if err != nil {
				t.Fatalf("ParseNote(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseNote(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	for _, bad := range []string{"", "H", "c4", "C##4", "C4x", "#"} {
		if _, err := fretdrill.ParseNote(bad); !errors.Is(err, fretdrill.ErrUnparseableNote) {
			t.Errorf("ParseNote(%q) error = %v, want ErrUnparseableNote", bad, err)
		}
	}
}

func TestParsePitchClass(t *testing.T) {
	if p, err := fretdrill.ParsePitchClass("Db"); err != nil || p != fretdrill.CSharp {
		t.Errorf("ParsePitchClass(Db) = %v, %v; want C#", p, err)
	}
	if _, err := fretdrill.ParsePitchClass("D4"); err == nil {
		t.Error("ParsePitchClass accepted an octave")
	}
}

func TestNoteTranspose(t *testing.T) {
	e2 := fretdrill.Note{Pitch: fretdrill.E, Octave: 2}
	if got, want := e2.Transpose(12), (fretdrill.Note{Pitch: fretdrill.E, Octave: 3}); got != want {
		t.Errorf("E2+12 = %v, want %v", got, want)
	}
	if got, want := e2.Transpose(8), (fretdrill.Note{Pitch: fretdrill.C, Octave: 3}); got != want {
		t.Errorf("E2+8 = %v, want %v", got, want)
	}
	c0 := fretdrill.Note{Pitch: fretdrill.C, Octave: 0}
	if got, want := c0.Transpose(-1), (fretdrill.Note{Pitch: fretdrill.B, Octave: -1}); got != want {
		t.Errorf("C0-1 = %v, want %v", got, want)
	}
	if got := (fretdrill.Note{Pitch: fretdrill.C, Octave: 4}).MIDI(); got != 60 {
		t.Errorf("MIDI of C4 = %v, want 60", got)
	}
}

func TestPitchClassText(t *testing.T) {
	for p := fretdrill.C; p < fretdrill.NumPitchClasses; p++ {
		b, err := p.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) failed: %v", p, err)
		}
		var q fretdrill.PitchClass
		if err := q.UnmarshalText(b); err != nil || q != p {
			t.Fatalf("UnmarshalText(%s) = %v, %v; want %v", b, q, err, p)
		}
	}
}
