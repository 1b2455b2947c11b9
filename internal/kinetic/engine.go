// SPDX-License-Identifier: MIT
package kinetic

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"kinetic/internal/analysis"
	"kinetic/internal/frames"
)

// Control-loop tuning. These interact: widening the beat edge without
// raising dwell times makes the character twitchy.
const (
	// beatEdge is the fraction of the beat cycle on each side of the
	// downbeat treated as on-beat for transition triggering.
	beatEdge = 0.1

	// bassTrigger opens the transition window off-beat when the low
	// end hits hard enough.
	bassTrigger = 0.6

	// Sequence-mode levels.
	emoteHigh    = 0.7
	impactBass   = 0.8
	footworkBars = 12

	// longHoldMs is the dwell at which entering a node engages the
	// transition lock.
	longHoldMs = 500

	// maxHistory bounds the transition history ring.
	maxHistory = 50

	// predictHorizonMs stamps how far ahead the lookahead projection
	// claims to see.
	predictHorizonMs = 100

	// confidentBPM gates tempo adoption: detections below this
	// confidence never touch the playback tempo.
	confidentBPM = 0.5
)

// Options configure a new engine. Zero values select the defaults.
type Options struct {
	// BPM is the initial playback tempo. Defaults to 120.
	BPM float64

	// AutoBPM adopts the detected tempo whenever a beat lands and the
	// estimate is confident.
	AutoBPM bool

	// Seed fixes the frame-selection randomness. 0 seeds from the
	// clock at construction.
	Seed int64

	// Clock supplies monotonic milliseconds. Defaults to wall time
	// since construction. Tests inject their own.
	Clock func() int64

	// Graph overrides the default node table.
	Graph *Graph

	// LookaheadMs and FeedRate size the analysis window.
	LookaheadMs int
	FeedRate    int
}

// Engine converts an audio-sample stream into discrete, musically
// quantized animation decisions. FeedAudio and Update belong to the
// tick loop, feed before update; the guard lets control calls and
// telemetry snapshots land from other goroutines between ticks. Nothing
// here blocks. Returned state and telemetry are value snapshots.
type Engine struct {
	mu sync.RWMutex

	graph   *Graph
	catalog *frames.Catalog

	lookahead  *analysis.LookaheadBuffer
	bpm        *analysis.BPMDetector
	transients *analysis.TransientDetector

	rng       *rand.Rand
	clock     func() int64
	sessionID string

	targetBPM float64
	detected  analysis.Estimate
	autoBPM   bool

	st            State
	predicted     analysis.Sample
	lastCrossMs   int64
	transientHits uint64
	history       []Transition
}

// New constructs an engine at idle with an empty frame catalog.
func New(opts Options) *Engine {
	graph := opts.Graph
	if graph == nil {
		graph = DefaultGraph()
	}
	if opts.BPM <= 0 {
		opts.BPM = analysis.DefaultBPM
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	clock := opts.Clock
	if clock == nil {
		start := time.Now()
		clock = func() int64 { return time.Since(start).Milliseconds() }
	}

	return &Engine{
		graph:      graph,
		catalog:    frames.BuildCatalog(nil),
		lookahead:  analysis.NewLookaheadBuffer(opts.LookaheadMs, opts.FeedRate),
		bpm:        analysis.NewBPMDetector(),
		transients: analysis.NewTransientDetector(),
		rng:        rand.New(rand.NewSource(seed)),
		clock:      clock,
		sessionID:  uuid.NewString(),
		targetBPM:  analysis.ClampBPM(opts.BPM),
		autoBPM:    opts.AutoBPM,
		detected:   analysis.Estimate{BPM: analysis.DefaultBPM},
		st: State{
			Node:               NodeIdle,
			TransitionStyle:    StyleSmooth,
			TransitionProgress: 1,
		},
		history: make([]Transition, 0, maxHistory),
	}
}

// FeedAudio ingests one analysis tick of band energies. Values outside
// [0,1] are clamped, never rejected. Beat detection always runs so
// telemetry can show the detected tempo; the playback tempo only moves
// when AutoBPM is on and the estimate is confident.
func (e *Engine) FeedAudio(bass, mid, high float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	s := analysis.NewSample(bass, mid, high, now)
	e.lookahead.Push(s)

	if e.transients.Detect(s.Mid + s.High) {
		e.transientHits++
	}

	if e.bpm.DetectBeat(s.Bass, now) {
		e.detected = e.bpm.Estimate()
		if e.autoBPM && e.detected.Confidence > confidentBPM {
			e.targetBPM = e.detected.BPM
		}
	}
}

// LoadFramePool replaces the catalog wholesale. A nil or empty list
// yields an empty catalog: selections miss and the character freezes on
// its current frame. When nothing is showing yet, the current node's
// rule seeds the first frame so a fresh engine has something to draw.
func (e *Engine) LoadFramePool(list []frames.Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.catalog = frames.BuildCatalog(list)

	if e.st.Frame.ID == "" {
		if node, ok := e.graph.Node(e.st.Node); ok {
			if f, ok := node.Select(e.catalog, e.rng); ok {
				e.st.Frame = f
				e.st.SourceFrame = f
				e.st.TransitionProgress = 1
			}
		}
	}
}

// Update advances the control loop by dt seconds and returns a state
// snapshot. Deterministic given the clock, the seed and the fed audio.
func (e *Engine) Update(dt float64) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()

	beatDur := 60000.0 / e.targetBPM
	e.st.BeatPos = math.Mod(float64(now), beatDur) / beatDur

	if e.st.TransitionProgress < 1 {
		e.st.TransitionProgress = math.Min(1, e.st.TransitionProgress+e.st.TransitionStyle.Speed()*dt)
	}

	if e.st.Locked && now >= e.st.LockReleaseMs {
		e.st.Locked = false
	}

	// Nothing fed yet: stay put. The renderer keeps whatever it has.
	cur, ok := e.lookahead.Latest()
	if !ok {
		return e.st
	}
	e.predicted = e.lookahead.PredictEnergy(predictHorizonMs)

	e.st.SequenceMode = e.deriveMode(cur)

	onBeat := e.st.BeatPos < beatEdge || e.st.BeatPos > 1-beatEdge
	if onBeat || cur.Bass > bassTrigger {
		if !e.st.Locked && now-e.st.LastTransitionMs >= e.currentDwell() {
			e.attemptTransition(cur, now)
		}
	}

	// Count the downbeat once per cycle: the on-beat window spans
	// several ticks, so gate on at least half a beat since the last
	// recorded crossing.
	if e.st.BeatPos < beatEdge && float64(now-e.lastCrossMs) > beatDur/2 {
		e.lastCrossMs = now
		e.st.BarCounter = (e.st.BarCounter + 1) % 16
		e.st.PhraseCounter = (e.st.PhraseCounter + 1) % 8
	}

	return e.st
}

// deriveMode picks the behavioral intent for this tick, highest
// priority first. Modes that need assets the pool lacks are skipped.
func (e *Engine) deriveMode(cur analysis.Sample) Mode {
	switch {
	case cur.High > emoteHigh && len(e.catalog.Closeups()) > 0:
		return ModeEmote
	case cur.Bass > impactBass && len(e.catalog.Hands()) > 0:
		return ModeImpact
	case e.st.BarCounter >= footworkBars && len(e.catalog.Feet()) > 0:
		return ModeFootwork
	case e.st.PhraseCounter == 7:
		// Final phrase position reads as a fill bar.
		return ModeImpact
	default:
		return ModeGroove
	}
}

// attemptTransition runs one gated transition attempt: filter the
// current node's successors by entry energy, pick by mode preference,
// execute. With no qualifying successor the engine either drops to
// idle (energy collapsed below the exit threshold) or stays put.
func (e *Engine) attemptTransition(cur analysis.Sample, now int64) {
	node, ok := e.graph.Node(e.st.Node)
	if !ok {
		return
	}

	var candidates []*Node
	for _, id := range node.Successors {
		succ, ok := e.graph.Node(id)
		if !ok {
			continue
		}
		if cur.Energy >= succ.EnergyRequirement {
			candidates = append(candidates, succ)
		}
	}

	if len(candidates) == 0 {
		if cur.Energy < node.ExitThreshold && e.st.Node != NodeIdle {
			if idle, ok := e.graph.Node(NodeIdle); ok {
				e.executeTransition(idle, now)
			}
		}
		return
	}

	e.executeTransition(e.preferred(candidates), now)
}

// preferred applies the sequence mode's preference order over the
// qualifying candidates, falling back to the first qualifying
// successor when no preference matches.
func (e *Engine) preferred(candidates []*Node) *Node {
	var prefs []NodeID
	switch e.st.SequenceMode {
	case ModeEmote:
		prefs = []NodeID{NodeCloseup, NodeHands}
	case ModeImpact:
		prefs = []NodeID{NodeImpact, NodeMandala, NodeJump}
	case ModeFootwork:
		prefs = []NodeID{NodeFeet, NodeCrouch}
	default:
		// Groove ping-pongs sides on bar parity.
		if e.st.BarCounter%2 == 0 {
			prefs = []NodeID{NodeGrooveLeft}
		} else {
			prefs = []NodeID{NodeGrooveRight}
		}
	}

	for _, want := range prefs {
		for _, n := range candidates {
			if n.ID == want {
				return n
			}
		}
	}
	return candidates[0]
}

// executeTransition moves to the target node. A selection miss aborts
// silently: no suitable asset yet is not an error.
func (e *Engine) executeTransition(target *Node, now int64) {
	frame, ok := target.Select(e.catalog, e.rng)
	if !ok {
		return
	}

	from := e.st.Node
	e.st.SourceFrame = e.st.Frame
	e.st.Frame = frame
	e.st.Node = target.ID
	e.st.TransitionProgress = 0
	e.st.TransitionStyle = target.Style
	e.st.LastTransitionMs = now

	// Lock state always belongs to the node being entered. A forced
	// jump out of a locked hold must not drag the old lock along.
	if hold := e.dwellFor(target); hold >= longHoldMs {
		e.st.Locked = true
		e.st.LockReleaseMs = now + hold
	} else {
		e.st.Locked = false
		e.st.LockReleaseMs = 0
	}

	e.pushHistory(Transition{From: from, To: target.ID, Style: target.Style, At: now, Mode: e.st.SequenceMode})
}

// dwellFor is the node's effective minimum dwell. Closeups hold for
// two beats of the current tempo rather than a fixed figure.
func (e *Engine) dwellFor(n *Node) int64 {
	if n.ID == NodeCloseup {
		return CloseupHoldMs(e.targetBPM)
	}
	return n.MinDwellMs
}

// currentDwell is dwellFor the node the engine is sitting in.
func (e *Engine) currentDwell() int64 {
	node, ok := e.graph.Node(e.st.Node)
	if !ok {
		return 0
	}
	return e.dwellFor(node)
}

func (e *Engine) pushHistory(tr Transition) {
	e.history = append(e.history, tr)
	if len(e.history) > maxHistory {
		e.history = e.history[len(e.history)-maxHistory:]
	}
}

// ForceState jumps straight to the named node, bypassing successor and
// energy gating: explicit caller intent outranks the graph. Unknown
// ids are ignored.
func (e *Engine) ForceState(id NodeID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	target, ok := e.graph.Node(id)
	if !ok {
		return
	}
	e.executeTransition(target, e.clock())
}

// TriggerStutter re-shows the current frame with an instant cut, the
// rhythmic-repeat effect. No-op until a frame is showing.
func (e *Engine) TriggerStutter() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Frame.ID == "" {
		return
	}
	now := e.clock()
	e.st.SourceFrame = e.st.Frame
	e.st.TransitionProgress = 0
	e.st.TransitionStyle = StyleCut
	e.st.LastTransitionMs = now
	e.pushHistory(Transition{From: e.st.Node, To: e.st.Node, Style: StyleCut, At: now, Mode: e.st.SequenceMode})
}

// TriggerGlitch cuts to a random high-energy frame without consulting
// the graph. The node does not change: a glitch is a frame effect, not
// a choreography step. No-op when the pool has no high-energy frames.
func (e *Engine) TriggerGlitch() {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := pick(e.catalog.Energy(frames.EnergyHigh), e.rng)
	if !ok {
		return
	}
	now := e.clock()
	e.st.SourceFrame = e.st.Frame
	e.st.Frame = f
	e.st.TransitionProgress = 0
	e.st.TransitionStyle = StyleCut
	e.st.LastTransitionMs = now
	e.pushHistory(Transition{From: e.st.Node, To: e.st.Node, Style: StyleCut, At: now, Mode: e.st.SequenceMode})
}

// SetBPM pins the playback tempo, clamped to the supported range.
func (e *Engine) SetBPM(bpm float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.targetBPM = analysis.ClampBPM(bpm)
}

// SetAutoBPM toggles tempo adoption from the beat detector.
func (e *Engine) SetAutoBPM(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoBPM = enabled
}

// BPM returns the tempo currently driving playback.
func (e *Engine) BPM() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.targetBPM
}

// BPMConfidence reports how much the detector trusts its estimate.
func (e *Engine) BPMConfidence() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.detected.Confidence
}

// State returns a snapshot of the current runtime state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st
}

// SessionID identifies this engine instance in telemetry.
func (e *Engine) SessionID() string { return e.sessionID }

// ResetDetectors clears BPM, transient and lookahead history, for
// track changes. Playback tempo and animation state are untouched.
func (e *Engine) ResetDetectors() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.bpm.Reset()
	e.transients.Reset()
	e.lookahead.Reset()
	e.detected = analysis.Estimate{BPM: analysis.DefaultBPM}
	e.predicted = analysis.Sample{}
	e.transientHits = 0
}

// CloseupHoldMs is how long a closeup-style hold lasts: two beats of
// the given tempo, floored at the long-hold threshold so fast tempos
// do not reduce the effect to a flash.
func CloseupHoldMs(bpm float64) int64 {
	if bpm <= 0 {
		bpm = analysis.DefaultBPM
	}
	hold := 2 * 60000 / bpm
	if hold < longHoldMs {
		return longHoldMs
	}
	return int64(math.Round(hold))
}
