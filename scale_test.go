package fretdrill_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fretdrill/fretdrill"
)

var allScaleTypes = []fretdrill.ScaleType{fretdrill.Major, fretdrill.Minor, fretdrill.Pentatonic, fretdrill.Blues}

func TestRootMapsToItself(t *testing.T) {
	for _, st := range allScaleTypes {
		if got := fretdrill.IntervalsFor(st)[0]; got != 0 {
			t.Errorf("IntervalsFor(%v)[0] = %v, want 0", st, got)
		}
		for r := fretdrill.C; r < fretdrill.NumPitchClasses; r++ {
			if got := fretdrill.PitchAt(r, 0); got != r {
				t.Errorf("PitchAt(%v, 0) = %v", r, got)
			}
		}
	}
}

func TestScaleDegreesDistinct(t *testing.T) {
	for _, st := range allScaleTypes {
		for r := fretdrill.C; r < fretdrill.NumPitchClasses; r++ {
			seen := map[fretdrill.PitchClass]bool{}
			for _, p := range fretdrill.Scale(r, st) {
				if seen[p] {
					t.Errorf("scale %v %v repeats %v", r, st, p)
				}
				seen[p] = true
			}
		}
	}
}

func TestDegreeRoundTrip(t *testing.T) {
	for _, st := range allScaleTypes {
		for r := fretdrill.C; r < fretdrill.NumPitchClasses; r++ {
			for d := fretdrill.Root; d < fretdrill.NumDegrees; d++ {
				s, err := fretdrill.DegreeToSemitone(st, d)
				if err != nil {
					t.Fatalf("DegreeToSemitone(%v, %v) failed: %v", st, d, err)
				}
				got, ok := fretdrill.DegreeForNote(r, st, fretdrill.PitchAt(r, s))
				if !ok || got != d {
					t.Errorf("DegreeForNote(%v, %v, PitchAt(%v, %v)) = %v, %v; want %v", r, st, r, s, got, ok, d)
				}
			}
		}
	}
}

func TestCMajor(t *testing.T) {
	want := [7]fretdrill.PitchClass{fretdrill.C, fretdrill.D, fretdrill.E, fretdrill.F, fretdrill.G, fretdrill.A, fretdrill.B}
	if got := fretdrill.Scale(fretdrill.C, fretdrill.Major); got != want {
		t.Errorf("C major = %v, want %v", got, want)
	}
	if got := fretdrill.IntervalsFor(fretdrill.Major); got != (fretdrill.Intervals{0, 2, 4, 5, 7, 9, 11}) {
		t.Errorf("major intervals = %v", got)
	}
}

func TestFallbackToMajor(t *testing.T) {
	major := fretdrill.IntervalsFor(fretdrill.Major)
	for _, st := range []fretdrill.ScaleType{fretdrill.Pentatonic, fretdrill.Blues, fretdrill.ScaleType(42)} {
		if got := fretdrill.IntervalsFor(st); got != major {
			t.Errorf("IntervalsFor(%v) = %v, want major %v", st, got, major)
		}
	}
	if got := fretdrill.ParseScaleType("Dorian"); got != fretdrill.Major {
		t.Errorf("ParseScaleType(Dorian) = %v, want major", got)
	}
	if got := fretdrill.ParseScaleType(" MINOR "); got != fretdrill.Minor {
		t.Errorf("ParseScaleType(MINOR) = %v, want minor", got)
	}
}

func TestPitchAtWraps(t *testing.T) {
	tests := []struct {
		root   fretdrill.PitchClass
		offset int
		want   fretdrill.PitchClass
	}{
		{fretdrill.A, 3, fretdrill.C},
		{fretdrill.C, -1, fretdrill.B},
		{fretdrill.G, 24, fretdrill.G},
		{fretdrill.D, -25, fretdrill.CSharp},
	}
	for _, tt := range tests {
		if got := fretdrill.PitchAt(tt.root, tt.offset); got != tt.want {
			t.Errorf("PitchAt(%v, %v) = %v, want %v", tt.root, tt.offset, got, tt.want)
		}
	}
}

func TestInvalidDegree(t *testing.T) {
	for _, d := range []fretdrill.ScaleDegree{-1, 7, 100} {
		if _, err := fretdrill.DegreeToSemitone(fretdrill.Major, d); !errors.Is(err, fretdrill.ErrInvalidDegree) {
			t.Errorf("DegreeToSemitone(%d) error = %v, want ErrInvalidDegree", d, err)
		}
	}
}

func TestParseDegrees(t *testing.T) {
	got, err := fretdrill.ParseDegrees("Root, 3rd,5TH,7")
	if err != nil {
		t.Fatalf("ParseDegrees failed: %v", err)
	}
	want := []fretdrill.ScaleDegree{fretdrill.Root, fretdrill.Third, fretdrill.Fifth, fretdrill.Seventh}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseDegrees = %v, want %v", got, want)
	}
	if _, err := fretdrill.ParseDegrees("Root,8th"); !errors.Is(err, fretdrill.ErrInvalidDegree) {
		t.Fatalf("ParseDegrees(8th) error = %v, want ErrInvalidDegree", err)
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		st   fretdrill.ScaleType
		want []int
	}{
		{fretdrill.Major, []int{0, 2, 4, 5, 7, 9, 11, 12, 12, 11, 9, 7, 5, 4, 2, 0}},
		{fretdrill.Minor, []int{0, 2, 3, 5, 7, 8, 10, 12, 12, 10, 8, 7, 5, 3, 2, 0}},
		{fretdrill.Pentatonic, []int{0, 2, 4, 7, 9, 12, 9, 7, 4, 2, 0}},
		{fretdrill.Blues, []int{0, 3, 5, 6, 7, 10, 12, 10, 7, 6, 5, 3, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.st.String(), func(t *testing.T) {
			got := fretdrill.Run(tt.st)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Run = %v, want %v", got, tt.want)
			}
			got[0] = 99
			if fretdrill.Run(tt.st)[0] != 0 {
				t.Fatal("Run returned shared storage")
			}
		})
	}
}
