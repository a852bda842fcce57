// Package synth is a small software audio graph: oscillators feeding gain
// nodes feeding a destination, rendered block by block against a sample
// clock. It implements tone.Context, so the scheduler can drive it either in
// real time, with an output device pulling audio from it, or offline.
package synth

import (
	"math"
	"sort"
	"sync"

	"github.com/viterin/vek/vek32"

	"github.com/fretdrill/fretdrill"
	"github.com/fretdrill/fretdrill/tone"
)

type (
	// Graph owns all nodes and the audio clock. The clock only advances when
	// audio is rendered.
	Graph struct {
		mu         sync.Mutex
		sampleRate int
		frame      int64 // frames rendered so far
		volume     float32
		oscs       []*oscillator
		timers     []timer
		dest       *destination

		mix, env, wave []float32
		paths, vals    [maxDepth][]float32 // scratch for reach, one per depth
	}

	oscillator struct {
		graph    *Graph
		freq     float64
		waveform tone.Waveform
		phase    float64
		startAt  float64
		stopAt   float64
		started  bool
		ended    chan struct{}
		done     bool
		outs     []tone.Node
	}

	gain struct {
		graph  *Graph
		value  float64
		events []automation
		outs   []tone.Node
	}

	automation struct {
		kind  automationKind
		value float64
		time  float64
	}

	automationKind int

	destination struct{}

	timer struct {
		at float64
		c  chan struct{}
	}
)

const (
	setValue automationKind = iota
	linearRamp
	exponentialRamp
)

const (
	blockSize = 64
	maxDepth  = 16 // longest chain of gains followed from an oscillator
)

// NewGraph creates a graph at the given sample rate; zero or less selects
// fretdrill.DefaultSampleRate.
func NewGraph(sampleRate int) *Graph {
	if sampleRate <= 0 {
		sampleRate = fretdrill.DefaultSampleRate
	}
	g := &Graph{
		sampleRate: sampleRate,
		volume:     1,
		dest:       &destination{},
		mix:        make([]float32, blockSize),
		env:        make([]float32, blockSize),
		wave:       make([]float32, blockSize),
	}
	for i := range g.paths {
		g.paths[i] = make([]float32, blockSize)
		g.vals[i] = make([]float32, blockSize)
	}
	return g
}

func (g *Graph) SampleRate() int { return g.sampleRate }

// SetVolume sets the output volume applied at the destination.
func (g *Graph) SetVolume(v float32) {
	g.mu.Lock()
	g.volume = v
	g.mu.Unlock()
}

func (g *Graph) CurrentTime() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now()
}

func (g *Graph) now() float64 { return float64(g.frame) / float64(g.sampleRate) }

func (g *Graph) Destination() tone.Node { return g.dest }

func (g *Graph) NewOscillator(freq float64, w tone.Waveform) tone.Oscillator {
	return &oscillator{graph: g, freq: freq, waveform: w, stopAt: math.Inf(1), ended: make(chan struct{})}
}

func (g *Graph) NewGain() tone.Gain {
	return &gain{graph: g, value: 1}
}

// Timer returns a channel that is closed once the clock reaches at. If it
// already has, the channel is returned closed.
func (g *Graph) Timer(at float64) <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := make(chan struct{})
	if at <= g.now() {
		close(c)
		return c
	}
	g.timers = append(g.timers, timer{at: at, c: c})
	return c
}

// Voices returns the number of oscillators sounding at the current time.
func (g *Graph) Voices() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	n := 0
	for _, o := range g.oscs {
		if !o.done && o.startAt <= now && now < o.stopAt {
			n++
		}
	}
	return n
}

// ReadAudio renders the graph into buf, advancing the clock by len(buf)
// frames. It implements fretdrill.AudioSource and never returns an error.
func (g *Graph) ReadAudio(buf fretdrill.AudioBuffer) error {
	g.Render(buf)
	return nil
}

// Render fills buf with the next len(buf) frames of the graph.
func (g *Graph) Render(buf fretdrill.AudioBuffer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for len(buf) > 0 {
		n := min(len(buf), blockSize)
		g.renderBlock(buf[:n])
		buf = buf[n:]
	}
}

// Advance renders and discards d seconds of audio.
func (g *Graph) Advance(d float64) {
	frames := int(math.Ceil(d * float64(g.sampleRate)))
	buf := make(fretdrill.AudioBuffer, blockSize)
	for frames > 0 {
		n := min(frames, blockSize)
		g.Render(buf[:n])
		frames -= n
	}
}

func (g *Graph) renderBlock(buf fretdrill.AudioBuffer) {
	n := len(buf)
	mix := vek32.Zeros_Into(g.mix, n)
	t0 := g.now()
	dt := 1 / float64(g.sampleRate)
	for _, o := range g.oscs {
		if o.done || o.startAt >= t0+float64(n)*dt || o.stopAt <= t0 {
			continue
		}
		o.advance(t0, n, dt, g.wave[:n])
		if !g.reach(o.outs, t0, g.env[:n], 0) {
			continue
		}
		vek32.Mul_Inplace(g.wave[:n], g.env[:n])
		vek32.Add_Inplace(mix, g.wave[:n])
	}
	vek32.MulNumber_Inplace(mix, g.volume)
	for i := range buf {
		buf[i] = [2]float32{mix[i], mix[i]}
	}
	g.frame += int64(n)
	g.expire()
}

// expire fires the ended channels and timers whose time has passed.
func (g *Graph) expire() {
	now := g.now()
	oscs := g.oscs[:0]
	for _, o := range g.oscs {
		if !o.done && o.stopAt <= now {
			o.finish()
		}
		if !o.done {
			oscs = append(oscs, o)
		}
	}
	clear(g.oscs[len(oscs):])
	g.oscs = oscs
	timers := g.timers[:0]
	for _, t := range g.timers {
		if t.at <= now {
			close(t.c)
			continue
		}
		timers = append(timers, t)
	}
	g.timers = timers
}

// reach fills dst with the total gain from the outputs outs to the
// destination over the block starting at t0, and reports whether the
// destination is reachable at all.
func (g *Graph) reach(outs []tone.Node, t0 float64, dst []float32, depth int) bool {
	found := false
	vek32.Zeros_Into(dst, len(dst))
	for _, out := range outs {
		switch out := out.(type) {
		case *destination:
			vek32.AddNumber_Inplace(dst, 1)
			found = true
		case *gain:
			if depth >= maxDepth {
				continue
			}
			path := g.paths[depth][:len(dst)]
			if !g.reach(out.outs, t0, path, depth+1) {
				continue
			}
			vals := g.vals[depth][:len(dst)]
			out.fill(vals, t0, 1/float64(g.sampleRate))
			vek32.Mul_Inplace(path, vals)
			vek32.Add_Inplace(dst, path)
			found = true
		}
	}
	return found
}

func (d *destination) Connect(tone.Node) {}
func (d *destination) Disconnect()       {}

func (o *oscillator) Connect(dst tone.Node) {
	o.graph.mu.Lock()
	o.outs = append(o.outs, dst)
	o.graph.mu.Unlock()
}

func (o *oscillator) Disconnect() {
	o.graph.mu.Lock()
	o.outs = nil
	o.graph.mu.Unlock()
}

func (o *oscillator) Start(at float64) {
	g := o.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if o.started || o.done {
		return
	}
	o.started = true
	o.startAt = max(at, g.now())
	g.oscs = append(g.oscs, o)
}

func (o *oscillator) Stop(at float64) {
	g := o.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if o.done {
		return
	}
	o.stopAt = at
	if !o.started || at <= g.now() {
		o.finish()
	}
}

func (o *oscillator) Ended() <-chan struct{} { return o.ended }

func (o *oscillator) finish() {
	o.done = true
	close(o.ended)
}

// advance writes n samples starting at t0 into out, silence outside the
// start and stop times.
func (o *oscillator) advance(t0 float64, n int, dt float64, out []float32) {
	inc := o.freq * dt
	for i := 0; i < n; i++ {
		t := t0 + float64(i)*dt
		if t < o.startAt || t >= o.stopAt {
			out[i] = 0
			continue
		}
		out[i] = float32(shape(o.waveform, o.phase))
		o.phase += inc
		o.phase -= math.Floor(o.phase)
	}
}

// shape evaluates one period of the waveform at phase p in [0, 1). Every
// shape starts at zero and rises.
func shape(w tone.Waveform, p float64) float64 {
	switch w {
	case tone.Sine:
		return math.Sin(2 * math.Pi * p)
	case tone.Square:
		if p < 0.5 {
			return 1
		}
		return -1
	case tone.Sawtooth:
		q := p + 0.5
		return 2*(q-math.Floor(q)) - 1
	default:
		q := p + 0.25
		return 1 - 4*math.Abs(q-math.Floor(q)-0.5)
	}
}

func (a *gain) Connect(dst tone.Node) {
	a.graph.mu.Lock()
	a.outs = append(a.outs, dst)
	a.graph.mu.Unlock()
}

func (a *gain) Disconnect() {
	a.graph.mu.Lock()
	a.outs = nil
	a.graph.mu.Unlock()
}

func (a *gain) SetValue(v float64) {
	a.graph.mu.Lock()
	a.value = v
	a.graph.mu.Unlock()
}

func (a *gain) SetValueAtTime(v, at float64) { a.insert(automation{setValue, v, at}) }

func (a *gain) LinearRampToValueAtTime(v, at float64) { a.insert(automation{linearRamp, v, at}) }

func (a *gain) ExponentialRampToValueAtTime(v, at float64) {
	a.insert(automation{exponentialRamp, v, at})
}

// Value returns the automated value at time t.
func (a *gain) Value(t float64) float64 {
	a.graph.mu.Lock()
	defer a.graph.mu.Unlock()
	return a.valueAt(t)
}

func (a *gain) insert(e automation) {
	a.graph.mu.Lock()
	defer a.graph.mu.Unlock()
	a.events = append(a.events, e)
	sort.SliceStable(a.events, func(i, j int) bool { return a.events[i].time < a.events[j].time })
}

func (a *gain) fill(dst []float32, t0, dt float64) {
	for i := range dst {
		dst[i] = float32(a.valueAt(t0 + float64(i)*dt))
	}
}

func (a *gain) valueAt(t float64) float64 {
	v0, t0 := a.value, 0.0
	for _, e := range a.events {
		if e.time <= t {
			v0, t0 = e.value, e.time
			continue
		}
		switch e.kind {
		case linearRamp:
			return v0 + (e.value-v0)*(t-t0)/(e.time-t0)
		case exponentialRamp:
			if v0 == 0 || (v0 > 0) != (e.value > 0) {
				return v0
			}
			return v0 * math.Pow(e.value/v0, (t-t0)/(e.time-t0))
		}
		return v0
	}
	return v0
}

// Peak returns the largest absolute sample value in buf.
func Peak(buf fretdrill.AudioBuffer) float32 {
	if len(buf) == 0 {
		return 0
	}
	flat := make([]float32, 0, 2*len(buf))
	for _, f := range buf {
		flat = append(flat, f[0], f[1])
	}
	vek32.Abs_Inplace(flat)
	return vek32.Max(flat)
}
