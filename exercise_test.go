package fretdrill_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/fretdrill/fretdrill"
)

func TestExerciseValidate(t *testing.T) {
	tests := []struct {
		name    string
		degrees []fretdrill.ScaleDegree
		ok      bool
	}{
		{"triad", []fretdrill.ScaleDegree{fretdrill.Root, fretdrill.Third, fretdrill.Fifth}, true},
		{"root only", []fretdrill.ScaleDegree{fretdrill.Root}, true},
		{"empty", nil, false},
		{"no root", []fretdrill.ScaleDegree{fretdrill.Second, fretdrill.Third}, false},
		{"descending", []fretdrill.ScaleDegree{fretdrill.Root, fretdrill.Fifth, fretdrill.Third}, false},
		{"repeat", []fretdrill.ScaleDegree{fretdrill.Root, fretdrill.Third, fretdrill.Third}, false},
		{"out of range", []fretdrill.ScaleDegree{fretdrill.Root, 8}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := fretdrill.Exercise{Root: fretdrill.D, Degrees: tt.degrees}
			err := ex.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if !tt.ok && !errors.Is(err, fretdrill.ErrInvalidExercise) {
				t.Fatalf("Validate error = %v, want ErrInvalidExercise", err)
			}
		})
	}
}

func TestRandomExercise(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		ex := fretdrill.RandomExercise(r, fretdrill.Minor)
		if err := ex.Validate(); err != nil {
			t.Fatalf("generated exercise %v is invalid: %v", ex, err)
		}
		if l := len(ex.Degrees); l < 2 || l > 4 {
			t.Fatalf("generated exercise %v has %v degrees", ex, l)
		}
		if len(ex.Degrees) < 3 && ex.Degrees[len(ex.Degrees)-1] != fretdrill.Seventh {
			t.Fatalf("generated exercise %v stopped early before the 7th", ex)
		}
		for j := 1; j < len(ex.Degrees); j++ {
			if step := ex.Degrees[j] - ex.Degrees[j-1]; step > 3 {
				t.Fatalf("generated exercise %v steps by %v", ex, step)
			}
		}
		if ex.Scale != fretdrill.Minor {
			t.Fatalf("generated exercise has scale %v", ex.Scale)
		}
	}
}

func TestExerciseYAML(t *testing.T) {
	src := "root: F#\nscale: minor\ndegrees: [Root, 3rd, 5th]\n"
	var ex fretdrill.Exercise
	if err := yaml.Unmarshal([]byte(src), &ex); err != nil {
		t.Fatalf("cannot unmarshal exercise: %v", err)
	}
	if ex.Root != fretdrill.FSharp || ex.Scale != fretdrill.Minor || len(ex.Degrees) != 3 || ex.Degrees[2] != fretdrill.Fifth {
		t.Fatalf("unmarshaled exercise to unexpected result: %+v", ex)
	}
	out, err := yaml.Marshal(ex)
	if err != nil {
		t.Fatalf("cannot marshal exercise: %v", err)
	}
	if string(out) != src {
		t.Fatalf("marshaled exercise = %q, want %q", out, src)
	}
}
