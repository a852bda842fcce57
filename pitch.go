package fretdrill

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// PitchClass is one of the 12 notes of the chromatic scale, independent of
// octave. C is 0 and B is 11; every value handed out by this package is
// normalized into that range.
type PitchClass int

const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
	NumPitchClasses = 12
)

// Note is a pitch class at a given octave, using scientific pitch notation
// (A4 = 440 Hz, C4 = middle C).
type Note struct {
	Pitch  PitchClass
	Octave int
}

const (
	// ReferenceOctave is assumed when a note name carries no octave.
	ReferenceOctave = 4
	a4Frequency     = 440.0
	c0ToA4          = 9 + 4*12 // semitones from C0 to A4
)

var ErrUnparseableNote = errors.New("unparseable note")

var pitchNames = [NumPitchClasses]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var naturals = map[byte]PitchClass{'C': C, 'D': D, 'E': E, 'F': F, 'G': G, 'A': A, 'B': B}

var (
	noteRe  = regexp.MustCompile(`^([A-G])([#b]?)(-?\d*)$`)
	pitchRe = regexp.MustCompile(`^([A-G])([#b]?)$`)
)

// pitchTable holds the octave 4 frequency of every pitch class. It is derived
// from Frequency so that the table and the formula can never disagree.
var pitchTable = func() (t [NumPitchClasses]float64) {
	for i := range t {
		t[i] = Frequency(ReferenceOctave, i, 0)
	}
	return
}()

// Frequency returns the equal-temperament frequency of the note that lies
// semitones above the pitch class rootIndex (C = 0) in the given octave. The
// computation is exactly 440 * 2^((octave*12 + rootIndex + semitones - 57)/12),
// so identical arguments always give bit-identical results.
func Frequency(octave, rootIndex, semitones int) float64 {
	semitonesFromC0 := octave*12 + rootIndex + semitones
	return a4Frequency * math.Pow(2, float64(semitonesFromC0-c0ToA4)/12)
}

// ReferenceFrequency returns the frequency of p in octave 4.
func ReferenceFrequency(p PitchClass) float64 {
	return pitchTable[p.normalize()]
}

func (p PitchClass) normalize() PitchClass {
	return ((p % NumPitchClasses) + NumPitchClasses) % NumPitchClasses
}

// Valid reports whether p is one of the 12 pitch classes.
func (p PitchClass) Valid() bool { return p >= 0 && p < NumPitchClasses }

func (p PitchClass) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PitchClass(%d)", int(p))
	}
	return pitchNames[p]
}

// ParsePitchClass parses a note name without octave, e.g. "C#" or "Db".
func ParsePitchClass(s string) (PitchClass, error) {
	if !pitchRe.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableNote, s)
	}
	n, err := ParseNote(s)
	if err != nil {
		return 0, err
	}
	return n.Pitch, nil
}

func (p PitchClass) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid pitch class %d", int(p))
	}
	return []byte(pitchNames[p]), nil
}

func (p *PitchClass) UnmarshalText(text []byte) error {
	v, err := ParsePitchClass(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParseNote parses names like "A", "C#5" or "Bb3". A missing octave means
// ReferenceOctave. Flats are folded into the enharmonic sharp.
func ParseNote(s string) (Note, error) {
	m := noteRe.FindStringSubmatch(s)
	if m == nil {
		return Note{}, fmt.Errorf("%w: %q", ErrUnparseableNote, s)
	}
	pitch := naturals[m[1][0]]
	octave := ReferenceOctave
	if m[3] != "" {
		o, err := strconv.Atoi(m[3])
		if err != nil {
			return Note{}, fmt.Errorf("%w: %q: %v", ErrUnparseableNote, s, err)
		}
		octave = o
	}
	key := octave*12 + int(pitch)
	switch m[2] {
	case "#":
		key++
	case "b":
		key--
	}
	return noteFromKey(key), nil
}

func noteFromKey(key int) Note {
	octave := key / 12
	if key < 0 && key%12 != 0 {
		octave--
	}
	return Note{Pitch: PitchClass(key - octave*12), Octave: octave}
}

// Key returns the number of semitones from C0 to n.
func (n Note) Key() int { return n.Octave*12 + int(n.Pitch.normalize()) }

// MIDI returns the MIDI note number of n (C4 = 60).
func (n Note) MIDI() int { return n.Key() + 12 }

// Frequency returns the frequency of n in Hz.
func (n Note) Frequency() float64 { return Frequency(n.Octave, int(n.Pitch.normalize()), 0) }

// Transpose returns the note semitones above n; negative values go down.
func (n Note) Transpose(semitones int) Note { return noteFromKey(n.Key() + semitones) }

func (n Note) String() string { return fmt.Sprintf("%v%d", n.Pitch, n.Octave) }

func (n Note) MarshalText() ([]byte, error) {
	if !n.Pitch.Valid() {
		return nil, fmt.Errorf("invalid pitch class %d", int(n.Pitch))
	}
	return []byte(n.String()), nil
}

func (n *Note) UnmarshalText(text []byte) error {
	v, err := ParseNote(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}
