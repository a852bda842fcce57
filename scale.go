package fretdrill

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

type (
	// ScaleType selects the interval table of a scale.
	ScaleType int

	// ScaleDegree is an ordinal position within a diatonic scale. Root is 0
	// and Seventh is 6; it doubles as the index into Intervals.
	ScaleDegree int

	// Intervals are the semitone offsets of the seven degrees of a scale,
	// strictly increasing and starting from 0.
	Intervals [NumDegrees]int
)

const (
	Major ScaleType = iota
	Minor
	Pentatonic
	Blues
	NumScaleTypes
)

const (
	Root ScaleDegree = iota
	Second
	Third
	Fourth
	Fifth
	Sixth
	Seventh
	NumDegrees = 7
)

var ErrInvalidDegree = errors.New("invalid scale degree")

var scaleNames = [NumScaleTypes]string{"major", "minor", "pentatonic", "blues"}

var degreeNames = [NumDegrees]string{"Root", "2nd", "3rd", "4th", "5th", "6th", "7th"}

var (
	majorIntervals = Intervals{0, 2, 4, 5, 7, 9, 11}
	minorIntervals = Intervals{0, 2, 3, 5, 7, 8, 10}
)

// runs are the ascending-then-descending practice runs played by PlayScale.
// Unlike Intervals they may reach the octave (12).
var runs = [NumScaleTypes][]int{
	Major:      {0, 2, 4, 5, 7, 9, 11, 12, 12, 11, 9, 7, 5, 4, 2, 0},
	Minor:      {0, 2, 3, 5, 7, 8, 10, 12, 12, 10, 8, 7, 5, 3, 2, 0},
	Pentatonic: {0, 2, 4, 7, 9, 12, 9, 7, 4, 2, 0},
	Blues:      {0, 3, 5, 6, 7, 10, 12, 10, 7, 6, 5, 3, 0},
}

// fold returns the case-folded form of s. Casers keep state, so a fresh one
// is made per call.
func fold(s string) string { return cases.Fold().String(s) }

func (t ScaleType) String() string {
	if t < 0 || t >= NumScaleTypes {
		return fmt.Sprintf("ScaleType(%d)", int(t))
	}
	return scaleNames[t]
}

// ParseScaleType matches name case-insensitively. Unknown names are not an
// error: they select Major, the same table every unknown type falls back to.
func ParseScaleType(name string) ScaleType {
	name = fold(strings.TrimSpace(name))
	for i, n := range scaleNames {
		if n == name {
			return ScaleType(i)
		}
	}
	return Major
}

func (t ScaleType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ScaleType) UnmarshalText(text []byte) error {
	*t = ParseScaleType(string(text))
	return nil
}

// IntervalsFor returns the seven-degree interval table of t. Only major and
// minor define one; every other type uses the major table.
func IntervalsFor(t ScaleType) Intervals {
	if t == Minor {
		return minorIntervals
	}
	return majorIntervals
}

// Run returns the practice run of t: the scale up to the octave and back
// down again, as semitone offsets from the root.
func Run(t ScaleType) []int {
	if t < 0 || t >= NumScaleTypes {
		t = Major
	}
	return append([]int(nil), runs[t]...)
}

// PitchAt returns the pitch class semitoneOffset semitones above root. It is
// total: negative offsets go down and any offset wraps modulo 12.
func PitchAt(root PitchClass, semitoneOffset int) PitchClass {
	return PitchClass(int(root) + semitoneOffset).normalize()
}

// DegreeToSemitone returns the semitone offset of degree d in scale type t.
func DegreeToSemitone(t ScaleType, d ScaleDegree) (int, error) {
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDegree, int(d))
	}
	return IntervalsFor(t)[d], nil
}

// Scale returns the seven pitch classes of the scale starting at root.
func Scale(root PitchClass, t ScaleType) (ret [NumDegrees]PitchClass) {
	for i, s := range IntervalsFor(t) {
		ret[i] = PitchAt(root, s)
	}
	return
}

func (d ScaleDegree) Valid() bool { return d >= 0 && d < NumDegrees }

func (d ScaleDegree) String() string {
	if !d.Valid() {
		return fmt.Sprintf("ScaleDegree(%d)", int(d))
	}
	return degreeNames[d]
}

// ParseScaleDegree accepts the names used by String ("Root", "2nd", ...)
// case-insensitively, as well as the bare numbers 1 to 7.
func ParseScaleDegree(s string) (ScaleDegree, error) {
	f := fold(strings.TrimSpace(s))
	for i, n := range degreeNames {
		if fold(n) == f || f == fmt.Sprint(i+1) {
			return ScaleDegree(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDegree, s)
}

func (d ScaleDegree) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDegree, int(d))
	}
	return []byte(degreeNames[d]), nil
}

func (d *ScaleDegree) UnmarshalText(text []byte) error {
	v, err := ParseScaleDegree(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDegrees parses a comma separated list such as "Root,3rd,5th".
func ParseDegrees(list string) ([]ScaleDegree, error) {
	var ret []ScaleDegree
	for _, f := range strings.Split(list, ",") {
		if strings.TrimSpace(f) == "" {
			continue
		}
		d, err := ParseScaleDegree(f)
		if err != nil {
			return nil, err
		}
		ret = append(ret, d)
	}
	return ret, nil
}
