// SPDX-License-Identifier: MIT
package analysis

const (
	// DefaultLookaheadMs is the analysis window retained for trend
	// detection. At the expected 60 samples/s feed rate this keeps
	// roughly 12 samples in the ring.
	DefaultLookaheadMs = 200

	// DefaultFeedRate is the assumed analysis tick rate in Hz.
	DefaultFeedRate = 60

	// energyTrailSize is the longer energy-only history kept for
	// visualization. Decoupled from the analysis window so a UI can
	// draw a couple of seconds of motion without widening the ring
	// the detectors read.
	energyTrailSize = 120

	predictSpan    = 10   // samples considered by PredictEnergy
	riseSpan       = 5    // samples considered by UpcomingBeat
	riseDelta      = 0.15 // minimum bass climb across riseSpan
	nearBeatFactor = 0.8  // newest bass must reach this share of threshold
	peakFloor      = 0.4  // local maxima below this are ignored
)

// LookaheadBuffer is a fixed-capacity ring of recent samples plus a
// longer energy trail. It answers short-horizon trend questions for the
// state machine: where is energy heading, is a beat about to land, did
// we just pass a peak. Push is O(1); nothing here blocks or allocates
// on the hot path.
type LookaheadBuffer struct {
	samples []Sample
	head    int
	count   int

	trail      []float64
	trailHead  int
	trailCount int
}

// NewLookaheadBuffer sizes the ring from the window length and feed
// rate. Non-positive arguments fall back to the defaults.
func NewLookaheadBuffer(windowMs, feedRate int) *LookaheadBuffer {
	if windowMs <= 0 {
		windowMs = DefaultLookaheadMs
	}
	if feedRate <= 0 {
		feedRate = DefaultFeedRate
	}
	capacity := windowMs * feedRate / 1000
	if capacity < 1 {
		capacity = 1
	}
	return &LookaheadBuffer{
		samples: make([]Sample, capacity),
		trail:   make([]float64, energyTrailSize),
	}
}

// Push appends a sample, evicting the oldest once the window is full.
func (b *LookaheadBuffer) Push(s Sample) {
	b.samples[(b.head+b.count)%len(b.samples)] = s
	if b.count < len(b.samples) {
		b.count++
	} else {
		b.head = (b.head + 1) % len(b.samples)
	}

	b.trail[(b.trailHead+b.trailCount)%len(b.trail)] = s.Energy
	if b.trailCount < len(b.trail) {
		b.trailCount++
	} else {
		b.trailHead = (b.trailHead + 1) % len(b.trail)
	}
}

// Len returns the number of buffered samples.
func (b *LookaheadBuffer) Len() int { return b.count }

// Latest returns the most recent sample, false when nothing has been
// pushed yet.
func (b *LookaheadBuffer) Latest() (Sample, bool) {
	if b.count == 0 {
		return Sample{}, false
	}
	return b.at(b.count - 1), true
}

// at returns the i-th oldest buffered sample. Callers guarantee bounds.
func (b *LookaheadBuffer) at(i int) Sample {
	return b.samples[(b.head+i)%len(b.samples)]
}

// PredictEnergy extrapolates band energies a short horizon ahead using
// a linearly weighted average of the most recent samples, newest
// weighted highest. The horizon only stamps the returned timestamp;
// the trend itself comes from the window. Returns a zero sample until
// two samples have been buffered.
func (b *LookaheadBuffer) PredictEnergy(horizonMs int64) Sample {
	if b.count < 2 {
		return Sample{}
	}
	span := predictSpan
	if b.count < span {
		span = b.count
	}

	var bass, mid, high, weightSum float64
	for i := 0; i < span; i++ {
		s := b.at(b.count - span + i)
		w := float64(i + 1)
		bass += s.Bass * w
		mid += s.Mid * w
		high += s.High * w
		weightSum += w
	}
	bass /= weightSum
	mid /= weightSum
	high /= weightSum

	latest := b.at(b.count - 1)
	return Sample{
		Bass:      bass,
		Mid:       mid,
		High:      high,
		Energy:    BassWeight*bass + MidWeight*mid + HighWeight*high,
		Timestamp: latest.Timestamp + horizonMs,
	}
}

// UpcomingBeat reports whether bass is both climbing and already close
// to the detection threshold: a rise above riseDelta across the last
// five samples with the newest bass past 80% of threshold. Needs five
// samples; answers false before that.
func (b *LookaheadBuffer) UpcomingBeat(threshold float64) bool {
	if b.count < riseSpan {
		return false
	}
	oldest := b.at(b.count - riseSpan)
	newest := b.at(b.count - 1)
	if newest.Bass-oldest.Bass <= riseDelta {
		return false
	}
	return newest.Bass > nearBeatFactor*threshold
}

// PeakDetected reports whether the energy curve just crested: within
// the last three samples the middle value is a strict local maximum
// above the peak floor. The peak is therefore confirmed one sample
// after it happens. Needs three samples.
func (b *LookaheadBuffer) PeakDetected() bool {
	if b.count < 3 {
		return false
	}
	before := b.at(b.count - 3).Energy
	peak := b.at(b.count - 2).Energy
	after := b.at(b.count - 1).Energy
	return peak > before && peak > after && peak > peakFloor
}

// EnergyTrail copies the retained energy history, oldest first. The
// slice is the caller's to keep.
func (b *LookaheadBuffer) EnergyTrail() []float64 {
	out := make([]float64, b.trailCount)
	for i := 0; i < b.trailCount; i++ {
		out[i] = b.trail[(b.trailHead+i)%len(b.trail)]
	}
	return out
}

// Reset drops all buffered samples and the energy trail.
func (b *LookaheadBuffer) Reset() {
	b.head, b.count = 0, 0
	b.trailHead, b.trailCount = 0, 0
}
