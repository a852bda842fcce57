package tone

import (
	"fmt"

	"github.com/fretdrill/fretdrill"
)

// ToneRequest is one planned tone. Key counts semitones from C0, Start is in
// seconds from the instant the plan is scheduled and Duration is the length
// of the envelope.
type ToneRequest struct {
	Key       int
	Frequency float64
	Start     float64
	Duration  float64
}

// Note returns the note the request plays.
func (r ToneRequest) Note() fretdrill.Note {
	return fretdrill.Note{Pitch: fretdrill.C}.Transpose(r.Key)
}

// End returns the time the envelope of the request reaches zero.
func (r ToneRequest) End() float64 { return r.Start + r.Duration }

// SequenceNoteDuration returns the length of a sequence note at the given tempo,
// 60/(tempo*1.5) seconds. A tempo of zero or less means the default tempo.
func (c Config) SequenceNoteDuration(tempo float64) float64 {
	if tempo <= 0 {
		tempo = c.Tempo
	}
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	return 60 / (tempo * 1.5)
}

// PlanOffsets plans one tone for each semitone offset above root. The notes
// overlap: note i starts at LeadIn + i*Spacing*noteDuration.
func (c Config) PlanOffsets(root fretdrill.Note, offsets []int, tempo float64) []ToneRequest {
	c = c.withDefaults()
	d := c.SequenceNoteDuration(tempo)
	ret := make([]ToneRequest, len(offsets))
	for i, s := range offsets {
		n := root.Transpose(s)
		ret[i] = ToneRequest{
			Key:       n.Key(),
			Frequency: n.Frequency(),
			Start:     c.LeadIn + float64(i)*d*c.Spacing,
			Duration:  d,
		}
	}
	return ret
}

// PlanSequence plans the selected degrees of a scale, in the order given. It
// fails without planning anything if any degree is invalid.
func (c Config) PlanSequence(root fretdrill.Note, t fretdrill.ScaleType, degrees []fretdrill.ScaleDegree, tempo float64) ([]ToneRequest, error) {
	offsets := make([]int, len(degrees))
	for i, d := range degrees {
		s, err := fretdrill.DegreeToSemitone(t, d)
		if err != nil {
			return nil, fmt.Errorf("cannot plan degree %d of the sequence: %w", i, err)
		}
		offsets[i] = s
	}
	return c.PlanOffsets(root, offsets, tempo), nil
}

// PlanRun plans the practice run of the scale, up to the octave and back.
func (c Config) PlanRun(root fretdrill.Note, t fretdrill.ScaleType, tempo float64) []ToneRequest {
	return c.PlanOffsets(root, fretdrill.Run(t), tempo)
}

// PlanSequence plans a sequence with the default configuration.
func PlanSequence(root fretdrill.Note, t fretdrill.ScaleType, degrees []fretdrill.ScaleDegree, tempo float64) ([]ToneRequest, error) {
	return DefaultConfig().PlanSequence(root, t, degrees, tempo)
}

// PlanRun plans a practice run with the default configuration.
func PlanRun(root fretdrill.Note, t fretdrill.ScaleType, tempo float64) []ToneRequest {
	return DefaultConfig().PlanRun(root, t, tempo)
}
