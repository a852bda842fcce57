package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/fretdrill/fretdrill"
	"github.com/fretdrill/fretdrill/synth"
	"github.com/fretdrill/fretdrill/tone"
)

type (
	// action is something the command can play. plan mirrors what play
	// schedules, for the exports and for knowing how long playback lasts.
	action struct {
		plan     []tone.ToneRequest
		tempo    float64
		sequence bool
		play     func(s *tone.Session) bool
	}

	selection struct {
		sequence, run bool
		degree, note  string
	}
)

var errAmbiguous = errors.New("choose only one of -p, -run, -degree and -note")

// selectAction returns nil when nothing was selected.
func selectAction(ex fretdrill.Exercise, octave int, cfg tone.Config, sel selection) (*action, error) {
	n := 0
	for _, b := range []bool{sel.sequence, sel.run, sel.degree != "", sel.note != ""} {
		if b {
			n++
		}
	}
	if n > 1 {
		return nil, errAmbiguous
	}
	root := fretdrill.Note{Pitch: ex.Root, Octave: octave}
	tempo := cfg.Tempo
	if tempo <= 0 {
		tempo = tone.DefaultTempo
	}
	single := func(n fretdrill.Note) []tone.ToneRequest {
		d := cfg.NoteDuration
		if d <= 0 {
			d = tone.DefaultNoteDuration
		}
		return []tone.ToneRequest{{Key: n.Key(), Frequency: n.Frequency(), Duration: d}}
	}
	switch {
	case sel.sequence:
		plan, err := cfg.PlanSequence(root, ex.Scale, ex.Degrees, tempo)
		if err != nil {
			return nil, err
		}
		return &action{plan: plan, tempo: tempo, sequence: true, play: func(s *tone.Session) bool {
			return s.PlaySequence(root, ex.Scale, ex.Degrees, tempo)
		}}, nil
	case sel.run:
		return &action{plan: cfg.PlanRun(root, ex.Scale, tempo), tempo: tempo, sequence: true, play: func(s *tone.Session) bool {
			return s.PlayScale(root, ex.Scale, tempo)
		}}, nil
	case sel.degree != "":
		d, err := fretdrill.ParseScaleDegree(sel.degree)
		if err != nil {
			return nil, err
		}
		semitone, err := fretdrill.DegreeToSemitone(ex.Scale, d)
		if err != nil {
			return nil, err
		}
		return &action{plan: single(root.Transpose(semitone)), tempo: tempo, play: func(s *tone.Session) bool {
			s.PlayDegree(root, ex.Scale, d, cfg.NoteDuration)
			return true
		}}, nil
	case sel.note != "":
		nt, err := fretdrill.ParseNote(sel.note)
		if err != nil {
			return nil, fmt.Errorf("invalid note: %w", err)
		}
		return &action{plan: single(nt), tempo: tempo, play: func(s *tone.Session) bool {
			s.PlayNoteName(sel.note, cfg.NoteDuration)
			return true
		}}, nil
	}
	return nil, nil
}

// length returns how long the action sounds, including the stop margin and,
// for sequences, the grace period after the last note.
func (a *action) length(cfg tone.Config) float64 {
	end := 0.0
	for _, r := range a.plan {
		end = math.Max(end, r.End())
	}
	margin := cfg.StopMargin
	if margin <= 0 {
		margin = tone.DefaultStopMargin
	}
	end += margin
	if a.sequence {
		grace := cfg.Grace
		if grace <= 0 {
			grace = tone.DefaultGrace
		}
		end += grace
	}
	return end
}

// renderOffline plays the action on a fresh graph and renders it to a
// buffer, without a sound card.
func renderOffline(act *action, cfg tone.Config, sampleRate int) fretdrill.AudioBuffer {
	graph := synth.NewGraph(sampleRate)
	session := tone.NewSession(func() (tone.Context, error) { return graph, nil }, cfg)
	defer session.Close()
	act.play(session)
	buf := make(fretdrill.AudioBuffer, int(math.Ceil(act.length(cfg)*float64(graph.SampleRate()))))
	graph.Render(buf)
	return buf
}
