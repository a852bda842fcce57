package tone

import "log/slog"

// Config holds the timing and level constants of the scheduler. Zero fields
// are replaced by the defaults below when a Session is created, so a partial
// Config is fine.
type Config struct {
	Peak       float64 // envelope peak, reached Attack seconds after the start
	Attack     float64
	Floor      float64 // target of the exponential decay
	DecayEnd   float64 // fraction of the duration where the decay reaches Floor
	StopMargin float64 // oscillators stop this long after the envelope ends

	MasterGain float64 // level of the gain shared by the notes of a sequence
	LeadIn     float64 // delay before the first note of a sequence
	Spacing    float64 // note onset distance, as a fraction of the note duration
	Grace      float64 // delay after the last sequence note before the busy flag drops

	NoteDuration float64 // used when a play call passes a zero duration
	Tempo        float64 // used when a play call passes a zero tempo
	Waveform     Waveform

	Logger *slog.Logger
}

const (
	DefaultPeak         = 0.7
	DefaultAttack       = 0.02
	DefaultFloor        = 0.01
	DefaultDecayEnd     = 0.9
	DefaultStopMargin   = 0.1
	DefaultMasterGain   = 0.7
	DefaultLeadIn       = 0.1
	DefaultSpacing      = 0.8
	DefaultGrace        = 0.1
	DefaultNoteDuration = 0.5
	DefaultTempo        = 120
)

// DefaultConfig returns the configuration used for every zero field.
func DefaultConfig() Config {
	return Config{
		Peak:         DefaultPeak,
		Attack:       DefaultAttack,
		Floor:        DefaultFloor,
		DecayEnd:     DefaultDecayEnd,
		StopMargin:   DefaultStopMargin,
		MasterGain:   DefaultMasterGain,
		LeadIn:       DefaultLeadIn,
		Spacing:      DefaultSpacing,
		Grace:        DefaultGrace,
		NoteDuration: DefaultNoteDuration,
		Tempo:        DefaultTempo,
		Waveform:     Triangle,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	def := func(v *float64, dv float64) {
		if *v <= 0 {
			*v = dv
		}
	}
	def(&c.Peak, d.Peak)
	def(&c.Attack, d.Attack)
	def(&c.Floor, d.Floor)
	def(&c.DecayEnd, d.DecayEnd)
	def(&c.StopMargin, d.StopMargin)
	def(&c.MasterGain, d.MasterGain)
	def(&c.LeadIn, d.LeadIn)
	def(&c.Spacing, d.Spacing)
	def(&c.Grace, d.Grace)
	def(&c.NoteDuration, d.NoteDuration)
	def(&c.Tempo, d.Tempo)
	if c.Waveform < 0 || c.Waveform >= NumWaveforms {
		c.Waveform = Triangle
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Envelope schedules the amplitude envelope of a tone on g: silence at
// start, a linear attack to Peak, an exponential decay to Floor that ends at
// DecayEnd of the duration, and a linear release to zero at start+duration.
func (c Config) Envelope(g Gain, start, duration float64) {
	g.SetValueAtTime(0, start)
	g.LinearRampToValueAtTime(c.Peak, start+c.Attack)
	g.ExponentialRampToValueAtTime(c.Floor, start+duration*c.DecayEnd)
	g.LinearRampToValueAtTime(0, start+duration)
}
