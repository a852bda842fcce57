package tone

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fretdrill/fretdrill"
)

type (
	// Session is a playback session. Create it with NewSession and dispose
	// of it with Close. All methods are safe for concurrent use.
	Session struct {
		mu     sync.Mutex
		open   func() (Context, error)
		ctx    Context
		cfg    Config
		log    *slog.Logger
		voices map[*voice]struct{}
		master Gain      // shared gain of the running sequence
		seq    *sequence // non-nil while a sequence holds the busy flag

		events    chan any
		closing   chan struct{}
		finished  chan struct{}
		closeOnce sync.Once
	}

	voice struct {
		osc  Oscillator
		gain Gain
		seq  *sequence
		last bool // last note of seq
	}

	sequence struct {
		master Gain
	}

	// events handled by the run loop
	voiceEnded   struct{ v *voice }
	graceElapsed struct{ seq *sequence }
)

const closeTimeout = 3 * time.Second

var ErrSessionClosed = errors.New("playback session closed")

// NewSession creates a session. open is called to acquire the Context the
// first time something is played, and again on the next play call if it
// failed.
func NewSession(open func() (Context, error), cfg Config) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		open:     open,
		cfg:      cfg,
		log:      cfg.Logger,
		voices:   make(map[*voice]struct{}),
		events:   make(chan any, 64),
		closing:  make(chan struct{}),
		finished: make(chan struct{}),
	}
	go s.run()
	return s
}

// Config returns the configuration of the session, with defaults filled in.
func (s *Session) Config() Config { return s.cfg }

// PlaySingle stops everything that is sounding and plays pc in the given
// octave for duration seconds. A zero duration selects the default.
func (s *Session) PlaySingle(pc fretdrill.PitchClass, octave int, duration float64) {
	s.playNote(fretdrill.Note{Pitch: pc, Octave: octave}, duration)
}

// PlayNoteName is PlaySingle for a note name such as "C#4". Names that cannot
// be parsed are ignored.
func (s *Session) PlayNoteName(name string, duration float64) {
	n, err := fretdrill.ParseNote(name)
	if err != nil {
		s.log.Warn("not playing note", "name", name, "err", err)
		return
	}
	s.playNote(n, duration)
}

// PlayDegree plays one degree of the scale on root. Like PlaySingle it
// preempts anything sounding, a running sequence included, and ignores the
// busy flag. Invalid degrees are logged and not played.
func (s *Session) PlayDegree(root fretdrill.Note, t fretdrill.ScaleType, d fretdrill.ScaleDegree, duration float64) {
	semitone, err := fretdrill.DegreeToSemitone(t, d)
	if err != nil {
		s.log.Warn("not playing degree", "root", root, "scale", t, "err", err)
		return
	}
	s.playNote(root.Transpose(semitone), duration)
}

// PlaySequence plays the selected degrees of the scale one after another
// through a shared gain. While a sequence is playing the call does nothing
// and returns false; otherwise it stops everything, schedules the notes and
// returns true. The busy flag is released a short grace period after the last
// note has ended.
func (s *Session) PlaySequence(root fretdrill.Note, t fretdrill.ScaleType, degrees []fretdrill.ScaleDegree, tempo float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != nil {
		s.log.Debug("sequence already playing, ignoring request")
		return false
	}
	plan, err := s.cfg.PlanSequence(root, t, degrees, tempo)
	if err != nil {
		s.log.Warn("not playing sequence", "root", root, "scale", t, "err", err)
		return false
	}
	return s.playPlan(plan)
}

// PlayScale plays the practice run of the scale, with the same busy
// discipline as PlaySequence.
func (s *Session) PlayScale(root fretdrill.Note, t fretdrill.ScaleType, tempo float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != nil {
		s.log.Debug("sequence already playing, ignoring request")
		return false
	}
	return s.playPlan(s.cfg.PlanRun(root, t, tempo))
}

// StopAll silences and releases every tone in flight and the shared gain of a
// running sequence. It does nothing when nothing is playing. The busy flag of
// an interrupted sequence is released through the normal completion path.
func (s *Session) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAll()
}

// Busy reports whether a sequence holds the busy flag.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq != nil
}

// Active returns the number of tones that have not ended yet.
func (s *Session) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.voices)
}

// Close stops all tones, waits for the run loop to exit and closes the
// Context if it implements io.Closer.
func (s *Session) Close() error {
	s.mu.Lock()
	s.stopAll()
	ctx := s.ctx
	s.ctx = nil
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.closing) })
	select {
	case <-s.finished:
	case <-time.After(closeTimeout):
		s.log.Warn("playback session did not finish in time")
	}
	if c, ok := ctx.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Session) playNote(n fretdrill.Note, duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAll()
	ctx, ok := s.acquire()
	if !ok {
		return
	}
	if duration <= 0 {
		duration = s.cfg.NoteDuration
	}
	req := ToneRequest{Key: n.Key(), Frequency: n.Frequency(), Duration: duration}
	s.schedule(ctx, req, ctx.CurrentTime(), ctx.Destination(), nil, false)
}

// playPlan must be called with the mutex held and the busy flag clear.
func (s *Session) playPlan(plan []ToneRequest) bool {
	if len(plan) == 0 {
		return false
	}
	s.stopAll()
	ctx, ok := s.acquire()
	if !ok {
		return false
	}
	master := ctx.NewGain()
	master.SetValue(s.cfg.MasterGain)
	master.Connect(ctx.Destination())
	seq := &sequence{master: master}
	s.master = master
	s.seq = seq
	now := ctx.CurrentTime()
	for i, r := range plan {
		s.schedule(ctx, r, now, master, seq, i == len(plan)-1)
	}
	s.log.Debug("sequence scheduled", "notes", len(plan), "at", now)
	return true
}

func (s *Session) schedule(ctx Context, r ToneRequest, base float64, dst Node, seq *sequence, last bool) {
	start := base + r.Start
	osc := ctx.NewOscillator(r.Frequency, s.cfg.Waveform)
	g := ctx.NewGain()
	s.cfg.Envelope(g, start, r.Duration)
	osc.Connect(g)
	g.Connect(dst)
	osc.Start(start)
	osc.Stop(start + r.Duration + s.cfg.StopMargin)
	v := &voice{osc: osc, gain: g, seq: seq, last: last}
	s.voices[v] = struct{}{}
	go s.watch(v)
}

func (s *Session) acquire() (Context, bool) {
	if s.ctx != nil {
		return s.ctx, true
	}
	select {
	case <-s.closing:
		s.log.Warn("cannot play", "err", ErrSessionClosed)
		return nil, false
	default:
	}
	ctx, err := s.open()
	if err != nil {
		s.log.Error("could not open audio context", "err", err)
		return nil, false
	}
	s.ctx = ctx
	return ctx, true
}

func (s *Session) stopAll() {
	if s.ctx == nil {
		return
	}
	now := s.ctx.CurrentTime()
	for v := range s.voices {
		v.osc.Stop(now)
		v.gain.Disconnect()
		v.osc.Disconnect()
		delete(s.voices, v)
	}
	if s.master != nil {
		s.master.Disconnect()
		s.master = nil
	}
}

func (s *Session) watch(v *voice) {
	select {
	case <-v.osc.Ended():
	case <-s.closing:
		return
	}
	s.send(voiceEnded{v})
}

func (s *Session) send(e any) {
	select {
	case s.events <- e:
	case <-s.closing:
	}
}

func (s *Session) run() {
	defer close(s.finished)
	for {
		select {
		case <-s.closing:
			return
		case e := <-s.events:
			s.handle(e)
		}
	}
}

func (s *Session) handle(e any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch e := e.(type) {
	case voiceEnded:
		if _, ok := s.voices[e.v]; ok {
			e.v.gain.Disconnect()
			delete(s.voices, e.v)
		}
		if e.v.last && s.ctx != nil {
			timer := s.ctx.Timer(s.ctx.CurrentTime() + s.cfg.Grace)
			go func() {
				select {
				case <-timer:
					s.send(graceElapsed{e.v.seq})
				case <-s.closing:
				}
			}()
		}
	case graceElapsed:
		e.seq.master.Disconnect()
		if s.master == e.seq.master {
			s.master = nil
		}
		if s.seq == e.seq {
			s.seq = nil
			s.log.Debug("sequence finished")
		}
	}
}
