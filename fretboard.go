package fretdrill

import (
	"errors"
	"fmt"
	"sort"
)

type (
	// Tuning lists the open strings of an instrument from the lowest string
	// to the highest.
	Tuning []Note

	// Cell addresses one position on the fretboard. String 0 is the lowest
	// string of the tuning; fret 0 is the open string.
	Cell struct {
		String int
		Fret   int
	}

	// Mark describes how an annotated cell should be drawn. Order is the
	// index of the first occurrence of Degree in the selected degree list,
	// which the renderer uses for its colour and label. Root is set for the
	// cells holding the root of the scale.
	Mark struct {
		Order  int
		Degree ScaleDegree
		Pitch  PitchClass
		Root   bool
	}

	// Annotation holds a Mark for every cell that plays a selected degree.
	// Cells that are absent are drawn without a marker.
	Annotation map[Cell]Mark
)

// MaxFret is the highest fret of the board. Frets run from 0 to MaxFret,
// both inclusive.
const MaxFret = 12

var ErrNoPosition = errors.New("no such fretboard position")

// StandardTuning is E2 A2 D3 G3 B3 E4.
var StandardTuning = Tuning{{E, 2}, {A, 2}, {D, 3}, {G, 3}, {B, 3}, {E, 4}}

// NoteAt returns the pitch class sounded by the given string and fret.
// Fret -1, which the renderer uses for its label lane, and every other
// position off the board give ErrNoPosition.
func NoteAt(tuning Tuning, str, fret int) (PitchClass, error) {
	n, err := tuning.SoundingNote(str, fret)
	if err != nil {
		return 0, err
	}
	return n.Pitch, nil
}

// SoundingNote returns the note, including its octave, sounded by the given
// string and fret.
func (t Tuning) SoundingNote(str, fret int) (Note, error) {
	if str < 0 || str >= len(t) || fret < 0 || fret > MaxFret {
		return Note{}, fmt.Errorf("%w: string %d, fret %d", ErrNoPosition, str, fret)
	}
	return t[str].Transpose(fret), nil
}

func (t Tuning) String() string {
	s := ""
	for i, n := range t {
		if i > 0 {
			s += " "
		}
		s += n.String()
	}
	return s
}

// DegreeForNote returns the lowest degree of the scale whose pitch class is
// note. ok is false when the note is not in the scale.
func DegreeForNote(root PitchClass, t ScaleType, note PitchClass) (d ScaleDegree, ok bool) {
	offset := int(note.normalize() - root.normalize())
	offset = ((offset % NumPitchClasses) + NumPitchClasses) % NumPitchClasses
	for i, s := range IntervalsFor(t) {
		if s == offset {
			return ScaleDegree(i), true
		}
	}
	return 0, false
}

// Annotate marks every cell of the board, frets 0 to MaxFret, that sounds one
// of the selected degrees of the scale. Degrees outside the selection are
// left out even when they belong to the scale, as are invalid degrees in
// selected.
func Annotate(tuning Tuning, root PitchClass, t ScaleType, selected []ScaleDegree) Annotation {
	order := make(map[ScaleDegree]int, len(selected))
	for i, d := range selected {
		if !d.Valid() {
			continue
		}
		if _, ok := order[d]; !ok {
			order[d] = i
		}
	}
	ret := make(Annotation)
	for s := range tuning {
		for f := 0; f <= MaxFret; f++ {
			pc, err := NoteAt(tuning, s, f)
			if err != nil {
				continue
			}
			d, ok := DegreeForNote(root, t, pc)
			if !ok {
				continue
			}
			o, ok := order[d]
			if !ok {
				continue
			}
			ret[Cell{String: s, Fret: f}] = Mark{Order: o, Degree: d, Pitch: pc, Root: d == Root}
		}
	}
	return ret
}

// Cells returns the annotated cells ordered by string, then fret.
func (a Annotation) Cells() []Cell {
	ret := make([]Cell, 0, len(a))
	for c := range a {
		ret = append(ret, c)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].String != ret[j].String {
			return ret[i].String < ret[j].String
		}
		return ret[i].Fret < ret[j].Fret
	})
	return ret
}
