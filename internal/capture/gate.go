// SPDX-License-Identifier: MIT
package capture

import "math"

// Gate is a peak-amplitude noise gate over int32 PCM. The peak scan is
// branchless so the audio callback stays on its fast path regardless
// of signal content.
type Gate struct {
	enabled   bool
	threshold int32
}

// NewGate builds an enabled gate. The threshold is a fraction of full
// scale in [0,1]; out-of-range values are clamped.
func NewGate(threshold float64) *Gate {
	g := &Gate{enabled: true}
	g.SetThreshold(threshold)
	return g
}

func (g *Gate) Enable()       { g.enabled = true }
func (g *Gate) Disable()      { g.enabled = false }
func (g *Gate) Enabled() bool { return g.enabled }

// SetThreshold adjusts the gate level, a fraction of full scale
// clamped to [0,1].
func (g *Gate) SetThreshold(threshold float64) {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	g.threshold = int32(threshold * float64(math.MaxInt32))
}

// Threshold returns the gate level as a fraction of full scale.
func (g *Gate) Threshold() float64 {
	return float64(g.threshold) / float64(math.MaxInt32)
}

// Open reports whether the buffer's peak amplitude clears the gate.
// A disabled gate is always open. Allocation-free.
func (g *Gate) Open(buf []int32) bool {
	if !g.enabled {
		return true
	}

	var maxAmplitude int32
	for i := range buf {
		sample := buf[i]
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		diff := amplitude - maxAmplitude
		maxAmplitude += (diff & (diff >> 31)) ^ diff
	}
	return maxAmplitude > g.threshold
}
