// SPDX-License-Identifier: MIT
package analysis

const (
	transientWindow = 8    // values retained, current plus seven prior
	transientRatio  = 2.0  // current must exceed this multiple of the prior average
	transientDelta  = 0.15 // and jump this far past the previous raw value
	transientFloor  = 0.3  // and clear this absolute level
)

// TransientDetector flags sharp percussive spikes, typically fed the
// summed mid and high bands. Two gates run together: the ratio gate
// compares against the average of the seven preceding values, the delta
// gate against the immediately previous value. Ratio alone fires on
// slow ramps once the average catches up; the delta gate rejects
// anything that rose gradually.
type TransientDetector struct {
	window []float64
	head   int
	count  int
}

func NewTransientDetector() *TransientDetector {
	return &TransientDetector{window: make([]float64, transientWindow)}
}

// Detect observes one value and reports whether it is a transient.
// Always false until seven prior values have been seen.
func (d *TransientDetector) Detect(v float64) bool {
	warm := d.count >= transientWindow-1

	var prevSum, prev float64
	if warm {
		for i := d.count - (transientWindow - 1); i < d.count; i++ {
			prevSum += d.window[(d.head+i)%len(d.window)]
		}
		prev = d.window[(d.head+d.count-1)%len(d.window)]
	}

	d.push(v)
	if !warm {
		return false
	}

	avg := prevSum / float64(transientWindow-1)
	return v > transientRatio*avg && v-prev > transientDelta && v > transientFloor
}

// Reset drops the window, for when the audio source changes.
func (d *TransientDetector) Reset() {
	d.head, d.count = 0, 0
}

func (d *TransientDetector) push(v float64) {
	d.window[(d.head+d.count)%len(d.window)] = v
	if d.count < len(d.window) {
		d.count++
	} else {
		d.head = (d.head + 1) % len(d.window)
	}
}
