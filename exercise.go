package fretdrill

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Exercise is a practice task: a key and the scale degrees to find on the
// board. The playback and fretboard code accept any degree list; Validate
// checks the stricter shape that generated exercises have.
type Exercise struct {
	Root    PitchClass    `yaml:"root" json:"root_note"`
	Scale   ScaleType     `yaml:"scale,omitempty" json:"scale,omitempty"`
	Degrees []ScaleDegree `yaml:"degrees,flow" json:"scale_positions"`
}

var ErrInvalidExercise = errors.New("invalid exercise")

// Validate reports whether the exercise has a valid root and a non-empty,
// strictly increasing list of valid degrees that starts with Root.
func (e *Exercise) Validate() error {
	if !e.Root.Valid() {
		return fmt.Errorf("%w: root %d out of range", ErrInvalidExercise, int(e.Root))
	}
	if len(e.Degrees) == 0 {
		return fmt.Errorf("%w: no degrees", ErrInvalidExercise)
	}
	if e.Degrees[0] != Root {
		return fmt.Errorf("%w: first degree is %v, not Root", ErrInvalidExercise, e.Degrees[0])
	}
	for i, d := range e.Degrees {
		if !d.Valid() {
			return fmt.Errorf("%w: %w", ErrInvalidExercise, ErrInvalidDegree)
		}
		if i > 0 && d <= e.Degrees[i-1] {
			return fmt.Errorf("%w: degree %v does not ascend from %v", ErrInvalidExercise, d, e.Degrees[i-1])
		}
	}
	return nil
}

// Copy makes a deep copy of the exercise.
func (e *Exercise) Copy() Exercise {
	return Exercise{Root: e.Root, Scale: e.Scale, Degrees: append([]ScaleDegree(nil), e.Degrees...)}
}

func (e Exercise) String() string {
	return fmt.Sprintf("%v %v %v", e.Root, e.Scale, e.Degrees)
}

// RandomExercise draws a root uniformly and walks up from Root in steps of
// one to three degrees until three or four degrees are chosen. The walk ends
// early when it reaches the 7th, so the degrees never repeat. A nil r uses the
// global generator.
func RandomExercise(r *rand.Rand, t ScaleType) Exercise {
	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}
	ex := Exercise{Root: PitchClass(intN(NumPitchClasses)), Scale: t, Degrees: []ScaleDegree{Root}}
	count := 3 + intN(2)
	cur := Root
	for len(ex.Degrees) < count && cur < Seventh {
		cur = min(cur+ScaleDegree(1+intN(3)), Seventh)
		ex.Degrees = append(ex.Degrees, cur)
	}
	return ex
}
