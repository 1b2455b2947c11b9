// SPDX-License-Identifier: MIT
package analysis

// Band weights used to fold the three band energies into a single
// loudness figure. Bass dominates because the downstream choreography
// keys most decisions off low-end movement.
const (
	BassWeight = 0.5
	MidWeight  = 0.3
	HighWeight = 0.2
)

// Sample is one analysis frame of normalized band energies.
// Values are clamped to [0,1] on construction and never mutated after.
type Sample struct {
	Bass      float64
	Mid       float64
	High      float64
	Energy    float64
	Timestamp int64 // monotonic milliseconds
}

// NewSample clamps each band into [0,1] and derives the weighted energy.
// Upstream analysis is expected to deliver normalized values already,
// but a bad frame must never poison detector state.
func NewSample(bass, mid, high float64, timestamp int64) Sample {
	bass = Clamp01(bass)
	mid = Clamp01(mid)
	high = Clamp01(high)
	return Sample{
		Bass:      bass,
		Mid:       mid,
		High:      high,
		Energy:    BassWeight*bass + MidWeight*mid + HighWeight*high,
		Timestamp: timestamp,
	}
}

// Clamp01 bounds v to the normalized energy range.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
