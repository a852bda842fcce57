package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fretdrill/fretdrill"
	"github.com/fretdrill/fretdrill/tone"
)

// Settings holds all configuration options.
type Settings struct {
	// Instrument
	Tuning []fretdrill.Note    `yaml:"tuning,flow"`
	Octave int                 `yaml:"octave"` // octave of the root note when playing
	Scale  fretdrill.ScaleType `yaml:"scale"`  // scale type of generated exercises

	// Playback
	Tempo        float64       `yaml:"tempo"`
	NoteDuration float64       `yaml:"note_duration"`
	Peak         float64       `yaml:"peak"`
	MasterGain   float64       `yaml:"master_gain"`
	LeadIn       float64       `yaml:"lead_in"`
	Grace        float64       `yaml:"grace"`
	Waveform     tone.Waveform `yaml:"waveform"`
	SampleRate   int           `yaml:"sample_rate"`

	LogLevel string `yaml:"log_level"` // debug, info, warn or error
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Tuning:       append([]fretdrill.Note(nil), fretdrill.StandardTuning...),
		Octave:       fretdrill.ReferenceOctave,
		Scale:        fretdrill.Major,
		Tempo:        tone.DefaultTempo,
		NoteDuration: tone.DefaultNoteDuration,
		Peak:         tone.DefaultPeak,
		MasterGain:   tone.DefaultMasterGain,
		LeadIn:       tone.DefaultLeadIn,
		Grace:        tone.DefaultGrace,
		Waveform:     tone.Triangle,
		SampleRate:   fretdrill.DefaultSampleRate,
		LogLevel:     "info",
	}
}

// Load reads settings from a YAML file. A missing file gives the defaults;
// keys absent from the file keep their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}
	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("could not parse settings %v: %w", path, err)
	}
	return settings, nil
}

// Save writes settings to a YAML file, creating its directory if needed.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToneConfig converts the playback settings to a tone.Config.
func (s *Settings) ToneConfig(logger *slog.Logger) tone.Config {
	cfg := tone.DefaultConfig()
	cfg.Tempo = s.Tempo
	cfg.NoteDuration = s.NoteDuration
	cfg.Peak = s.Peak
	cfg.MasterGain = s.MasterGain
	cfg.LeadIn = s.LeadIn
	cfg.Grace = s.Grace
	cfg.Waveform = s.Waveform
	cfg.Logger = logger
	return cfg
}

// Instrument returns the configured tuning, or the standard tuning if none
// is set.
func (s *Settings) Instrument() fretdrill.Tuning {
	if len(s.Tuning) == 0 {
		return fretdrill.StandardTuning
	}
	return fretdrill.Tuning(s.Tuning)
}

// Level parses LogLevel, falling back to info.
func (s *Settings) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// LoadExercise reads an exercise from a YAML file and validates it.
func LoadExercise(path string) (fretdrill.Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fretdrill.Exercise{}, err
	}
	var ex fretdrill.Exercise
	if err := yaml.Unmarshal(data, &ex); err != nil {
		return fretdrill.Exercise{}, fmt.Errorf("could not parse exercise %v: %w", path, err)
	}
	if err := ex.Validate(); err != nil {
		return fretdrill.Exercise{}, fmt.Errorf("exercise %v: %w", path, err)
	}
	return ex, nil
}
