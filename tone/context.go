package tone

import (
	"fmt"
	"strings"
)

type (
	// Node is a vertex of the audio graph. Connect routes the output of the
	// node into dst; Disconnect removes every outgoing connection.
	Node interface {
		Connect(dst Node)
		Disconnect()
	}

	// Oscillator produces a periodic waveform between its start and stop
	// times. Ended is closed once the stop time has passed on the audio
	// clock; stopping at a time already in the past ends it immediately.
	Oscillator interface {
		Node
		Start(at float64)
		Stop(at float64)
		Ended() <-chan struct{}
	}

	// Gain multiplies its input by an automatable value. The automation
	// methods follow the usual semantics: a ramp runs from the previous
	// event to the given time, and an exponential ramp holds its start value
	// when that value is zero or has a different sign than the target.
	Gain interface {
		Node
		SetValue(v float64)
		SetValueAtTime(v, at float64)
		LinearRampToValueAtTime(v, at float64)
		ExponentialRampToValueAtTime(v, at float64)
	}

	// Context is the sink surface the scheduler needs. CurrentTime is the
	// audio clock in seconds. Timer returns a channel that is closed once the
	// audio clock reaches at.
	Context interface {
		CurrentTime() float64
		NewOscillator(freq float64, w Waveform) Oscillator
		NewGain() Gain
		Destination() Node
		Timer(at float64) <-chan struct{}
	}

	// Waveform selects the shape of an oscillator.
	Waveform int
)

const (
	Triangle Waveform = iota
	Sine
	Square
	Sawtooth
	NumWaveforms
)

var waveformNames = [NumWaveforms]string{"triangle", "sine", "square", "sawtooth"}

func (w Waveform) String() string {
	if w < 0 || w >= NumWaveforms {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// ParseWaveform matches the names returned by String, ignoring case.
func ParseWaveform(s string) (Waveform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range waveformNames {
		if n == s {
			return Waveform(i), nil
		}
	}
	return Triangle, fmt.Errorf("unknown waveform %q", s)
}

func (w Waveform) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *Waveform) UnmarshalText(text []byte) error {
	v, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}
