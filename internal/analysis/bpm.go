// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultBPM is reported until enough beats have been observed to
	// estimate tempo. Also the engine's initial playback tempo.
	DefaultBPM = 120

	// MinBPM and MaxBPM bound every tempo this package reports or
	// accepts. Outside this range the choreography stops reading as
	// musical.
	MinBPM = 60
	MaxBPM = 200

	// MinBeatIntervalMs and MaxBeatIntervalMs bound the gap between two
	// registered beats (240 BPM down to 40 BPM). Intervals outside the
	// range are treated as detection noise.
	MinBeatIntervalMs = 250
	MaxBeatIntervalMs = 1500

	maxBeats             = 32  // registered beat timestamps retained
	bassHistorySize      = 60  // bass samples feeding the adaptive threshold
	adaptiveWarmup       = 10  // samples required before the threshold adapts
	defaultBeatThreshold = 0.6 // cutoff used until warm
	thresholdBias        = 0.5 // how far from avg toward max the cutoff sits
)

// Estimate is one tempo report. Confidence is 0 when there is not
// enough clean data to trust the number; the engine only adopts
// estimates above 0.5.
type Estimate struct {
	BPM        float64
	Confidence float64
}

// BPMDetector turns a bass-energy stream into beat events and a tempo
// estimate. The detection cutoff adapts to recent bass statistics so a
// quiet track and a slammed master both register beats; the tempo
// estimate takes the median inter-beat interval, which shrugs off the
// occasional missed or doubled beat.
type BPMDetector struct {
	beats []int64

	bass      []float64
	bassHead  int
	bassCount int

	threshold float64
}

func NewBPMDetector() *BPMDetector {
	return &BPMDetector{
		beats:     make([]int64, 0, maxBeats),
		bass:      make([]float64, bassHistorySize),
		threshold: defaultBeatThreshold,
	}
}

// DetectBeat observes one bass value and reports whether it registered
// as a beat. A beat fires when bass exceeds the adaptive threshold and
// the previous beat is at least the minimum interval in the past.
// Timestamps are monotonic milliseconds supplied by the caller.
func (d *BPMDetector) DetectBeat(bass float64, timestamp int64) bool {
	d.observeBass(bass)
	if d.bassCount >= adaptiveWarmup {
		d.threshold = d.adaptiveThreshold()
	}

	if bass <= d.threshold {
		return false
	}
	if n := len(d.beats); n > 0 && timestamp-d.beats[n-1] <= MinBeatIntervalMs {
		return false
	}

	d.beats = append(d.beats, timestamp)
	if len(d.beats) > maxBeats {
		d.beats = d.beats[len(d.beats)-maxBeats:]
	}
	return true
}

// Estimate reports the current tempo. It needs at least 4 registered
// beats and 3 plausible inter-beat intervals; before that it reports
// the default tempo at zero confidence rather than guessing.
func (d *BPMDetector) Estimate() Estimate {
	if len(d.beats) < 4 {
		return Estimate{BPM: DefaultBPM}
	}

	intervals := make([]float64, 0, len(d.beats)-1)
	for i := 1; i < len(d.beats); i++ {
		iv := float64(d.beats[i] - d.beats[i-1])
		if iv < MinBeatIntervalMs || iv > MaxBeatIntervalMs {
			continue
		}
		intervals = append(intervals, iv)
	}
	if len(intervals) < 3 {
		return Estimate{BPM: DefaultBPM}
	}

	sort.Float64s(intervals)
	median := stat.Quantile(0.5, stat.Empirical, intervals, nil)
	bpm := ClampBPM(math.Round(60000 / median))

	// Confidence falls off linearly with interval spread: a coefficient
	// of variation at or beyond 0.5 is worthless, dead-even spacing is 1.
	mean, std := stat.MeanStdDev(intervals, nil)
	confidence := 0.0
	if mean > 0 {
		confidence = Clamp01(1 - 2*(std/mean))
	}

	return Estimate{BPM: bpm, Confidence: confidence}
}

// Threshold returns the current detection cutoff. The lookahead buffer
// uses it to judge whether bass is closing in on a beat.
func (d *BPMDetector) Threshold() float64 { return d.threshold }

// Beats returns how many beat timestamps are currently retained.
func (d *BPMDetector) Beats() int { return len(d.beats) }

// Reset clears all beat and bass history, for when the audio source
// changes underneath us.
func (d *BPMDetector) Reset() {
	d.beats = d.beats[:0]
	d.bassHead, d.bassCount = 0, 0
	d.threshold = defaultBeatThreshold
}

func (d *BPMDetector) observeBass(v float64) {
	d.bass[(d.bassHead+d.bassCount)%len(d.bass)] = v
	if d.bassCount < len(d.bass) {
		d.bassCount++
	} else {
		d.bassHead = (d.bassHead + 1) % len(d.bass)
	}
}

// adaptiveThreshold places the cutoff between the recent average and
// the recent maximum, so sustained loud passages raise the bar instead
// of registering every frame as a beat.
func (d *BPMDetector) adaptiveThreshold() float64 {
	var sum float64
	max := math.Inf(-1)
	for i := 0; i < d.bassCount; i++ {
		v := d.bass[(d.bassHead+i)%len(d.bass)]
		sum += v
		if v > max {
			max = v
		}
	}
	avg := sum / float64(d.bassCount)
	return avg + thresholdBias*(max-avg)
}

// ClampBPM bounds a tempo to the supported range.
func ClampBPM(bpm float64) float64 {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}
