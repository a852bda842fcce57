package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fretdrill/fretdrill"
	"github.com/fretdrill/fretdrill/config"
	"github.com/fretdrill/fretdrill/fretview"
	"github.com/fretdrill/fretdrill/midifile"
	"github.com/fretdrill/fretdrill/oto"
	"github.com/fretdrill/fretdrill/synth"
	"github.com/fretdrill/fretdrill/tone"
	"github.com/fretdrill/fretdrill/version"
)

// logger is safe to use before initLogger is called.
var logger = slog.Default()

func initLogger(level slog.Level, debug bool) {
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	configPath := flag.String("config", defaultConfigPath(), "Settings file. Missing files mean default settings.")
	saveConfig := flag.Bool("save-config", false, "Write the effective settings to the settings file and exit.")
	exerciseFile := flag.String("exercise", "", "Load the exercise from a YAML file instead of generating one.")
	root := flag.String("root", "", "Root note of the exercise, e.g. A or C#. Without it, a random exercise is generated.")
	scale := flag.String("scale", "", "Scale type: major, minor, pentatonic or blues. Defaults to the settings.")
	degrees := flag.String("degrees", "Root,3rd,5th", "Comma separated scale degrees used with -root.")
	seed := flag.Uint64("seed", 0, "Seed for the random exercise; 0 picks a random seed.")
	play := flag.Bool("p", false, "Play the selected degrees of the exercise as a sequence.")
	run := flag.Bool("run", false, "Play the practice run of the scale, up to the octave and back.")
	degree := flag.String("degree", "", "Play a single degree of the scale, e.g. 5th.")
	note := flag.String("note", "", "Play a single note, e.g. E2.")
	wavOut := flag.String("w", "", "Render the playback offline to this .wav file instead of the sound card.")
	pcm := flag.Bool("c", false, "Write 16-bit signed PCM instead of float32 to the .wav file.")
	midiOut := flag.String("m", "", "Write the playback as a Standard MIDI File.")
	debug := flag.Bool("debug", false, "Enable debug logging.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load settings: %v\n", err)
		os.Exit(1)
	}
	initLogger(settings.Level(), *debug)
	if *saveConfig {
		if err := settings.Save(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "could not save settings: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	scaleType := settings.Scale
	if *scale != "" {
		scaleType = fretdrill.ParseScaleType(*scale)
	}
	var ex fretdrill.Exercise
	switch {
	case *exerciseFile != "":
		ex, err = config.LoadExercise(*exerciseFile)
	case *root != "":
		ex, err = parseExercise(*root, scaleType, *degrees)
	default:
		ex = fretdrill.RandomExercise(newRand(*seed), scaleType)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid exercise: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("exercise", "exercise", ex)
	tuning := settings.Instrument()
	view, err := fretview.New(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create fretboard view: %v\n", err)
		os.Exit(1)
	}
	board, err := view.Render(ex, tuning, fretdrill.Annotate(tuning, ex.Root, ex.Scale, ex.Degrees))
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not draw fretboard: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(board)

	cfg := settings.ToneConfig(logger)
	sampleRate := settings.SampleRate
	if sampleRate <= 0 {
		sampleRate = fretdrill.DefaultSampleRate
	}
	act, err := selectAction(ex, settings.Octave, cfg, selection{sequence: *play, run: *run, degree: *degree, note: *note})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if act == nil {
		if *wavOut != "" || *midiOut != "" {
			fmt.Fprintf(os.Stderr, "nothing to export: choose one of -p, -run, -degree or -note\n")
			os.Exit(1)
		}
		os.Exit(0)
	}
	if err := export(act, cfg, sampleRate, *wavOut, *midiOut, *pcm); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *wavOut == "" && *midiOut == "" {
		if err := playLive(act, cfg, sampleRate); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "fretdrill draws a scale exercise on a guitar fretboard and plays it.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fretdrill.yml"
	}
	return filepath.Join(dir, "fretdrill", "settings.yml")
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func parseExercise(root string, t fretdrill.ScaleType, degrees string) (fretdrill.Exercise, error) {
	pc, err := fretdrill.ParsePitchClass(strings.TrimSpace(root))
	if err != nil {
		return fretdrill.Exercise{}, err
	}
	ds, err := fretdrill.ParseDegrees(degrees)
	if err != nil {
		return fretdrill.Exercise{}, err
	}
	ex := fretdrill.Exercise{Root: pc, Scale: t, Degrees: ds}
	return ex, ex.Validate()
}

// export writes the .wav and .mid files concurrently.
func export(act *action, cfg tone.Config, sampleRate int, wavPath, midiPath string, pcm16 bool) error {
	var g errgroup.Group
	if wavPath != "" {
		g.Go(func() error {
			buf := renderOffline(act, cfg, sampleRate)
			wav, err := buf.Wav(sampleRate, pcm16)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %w", err)
			}
			if err := os.WriteFile(wavPath, wav, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %w", wavPath, err)
			}
			logger.Info("wrote wav", "path", wavPath, "seconds", buf.Duration(sampleRate))
			return nil
		})
	}
	if midiPath != "" {
		g.Go(func() error {
			if err := midifile.WriteFile(midiPath, act.plan, act.tempo); err != nil {
				return fmt.Errorf("could not write file %v: %w", midiPath, err)
			}
			logger.Info("wrote midi", "path", midiPath, "notes", len(act.plan))
			return nil
		})
	}
	return g.Wait()
}

// playLive plays the action on the sound card and waits until it is done.
func playLive(act *action, cfg tone.Config, sampleRate int) error {
	audioContext, err := oto.NewContext(sampleRate)
	if err != nil {
		return fmt.Errorf("could not acquire oto AudioContext: %w", err)
	}
	defer audioContext.Close()
	graph := synth.NewGraph(sampleRate)
	output := audioContext.Play(graph)
	defer output.Close()
	session := tone.NewSession(func() (tone.Context, error) { return graph, nil }, cfg)
	defer session.Close()
	if !act.play(session) {
		return fmt.Errorf("could not start playback")
	}
	deadline := time.Now().Add(time.Duration((act.length(cfg) + 2) * float64(time.Second)))
	for session.Active() > 0 || session.Busy() {
		if time.Now().After(deadline) {
			logger.Warn("playback did not finish in time")
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	return nil
}
