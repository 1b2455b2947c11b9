// SPDX-License-Identifier: MIT

// Package dsp turns raw PCM buffers into the band-energy values the
// kinetic engine feeds on: one windowed FFT pass per buffer, folded
// into six named frequency bands, collapsed to a bass/mid/high triple.
package dsp

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"kinetic/pkg/bitint"
)

// Window selects the taper applied to each buffer before the FFT.
type Window int

const (
	Hann Window = iota
	Hamming
	Blackman
	BlackmanNuttall
	BartlettHann
	Lanczos
	Nuttall
)

// ParseWindow maps a config name (case-insensitive) to a Window. The
// empty string and unknown names fall back to Hann; unknown names also
// return an error so config validation can surface the typo.
func ParseWindow(name string) (Window, error) {
	switch strings.ToLower(name) {
	case "", "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "bartletthann":
		return BartlettHann, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown window function %q", name)
	}
}

func applyWindow(coeffs []float64, w Window) {
	// Window funcs multiply in place, so start from unity gain.
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch w {
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		window.Hann(coeffs)
	}
}

// Band edges in Hz. Treble runs to Nyquist, set per analyzer.
const (
	subLowHz     = 20
	subHighHz    = 60
	bassHighHz   = 250
	lowMidHighHz = 500
	midHighHz    = 2000
	hiMidHighHz  = 4000
)

// bandScale maps mean per-bin magnitudes into a usable [0,1] range.
// Tuned against real program material; clamped afterwards.
const bandScale = 50.0

// Bands is one analysis frame: normalized energy per frequency band,
// each in [0,1].
type Bands struct {
	Sub     float64 `json:"sub"`
	Bass    float64 `json:"bass"`
	LowMid  float64 `json:"lowMid"`
	Mid     float64 `json:"mid"`
	HighMid float64 `json:"highMid"`
	Treble  float64 `json:"treble"`
}

// Triple collapses the six bands into the engine's bass/mid/high feed,
// averaging each adjacent pair.
func (b Bands) Triple() (bass, mid, high float64) {
	return (b.Sub + b.Bass) / 2, (b.LowMid + b.Mid) / 2, (b.HighMid + b.Treble) / 2
}

type bandRange struct {
	lowHz, highHz float64
}

// Analyzer performs windowed FFT analysis over fixed-size PCM buffers.
// All working buffers are allocated once and reused, so Process calls
// are allocation-free. An Analyzer belongs to a single goroutine.
type Analyzer struct {
	fft        *fourier.FFT
	size       int
	sampleRate float64

	input  []float64
	coeffs []complex128
	mags   []float64
	taper  []float64

	bands [6]bandRange
}

// NewAnalyzer builds an analyzer for the given FFT size (a power of
// two) and sample rate.
func NewAnalyzer(fftSize int, sampleRate float64, w Window) (*Analyzer, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	taper := make([]float64, fftSize)
	applyWindow(taper, w)

	nyquist := sampleRate / 2
	// Real-input FFT yields N/2+1 coefficients.
	bins := fftSize/2 + 1

	return &Analyzer{
		fft:        fourier.NewFFT(fftSize),
		size:       fftSize,
		sampleRate: sampleRate,
		input:      make([]float64, fftSize),
		coeffs:     make([]complex128, bins),
		mags:       make([]float64, bins),
		taper:      taper,
		bands: [6]bandRange{
			{subLowHz, subHighHz},
			{subHighHz, bassHighHz},
			{bassHighHz, lowMidHighHz},
			{lowMidHighHz, midHighHz},
			{midHighHz, hiMidHighHz},
			{hiMidHighHz, nyquist},
		},
	}, nil
}

// ProcessInt32 analyzes one buffer of 32-bit PCM samples. Buffers
// shorter than the FFT size are zero-padded, longer ones truncated.
func (a *Analyzer) ProcessInt32(buf []int32) Bands {
	const norm = 1.0 / float64(0x80000000)
	n := len(buf)
	for i := 0; i < a.size; i++ {
		if i < n {
			a.input[i] = float64(buf[i]) * norm * a.taper[i]
		} else {
			a.input[i] = 0
		}
	}
	return a.analyze()
}

// ProcessFloat64 analyzes one buffer of samples already normalized to
// [-1, 1], the decoded-file path.
func (a *Analyzer) ProcessFloat64(buf []float64) Bands {
	n := len(buf)
	for i := 0; i < a.size; i++ {
		if i < n {
			a.input[i] = buf[i] * a.taper[i]
		} else {
			a.input[i] = 0
		}
	}
	return a.analyze()
}

func (a *Analyzer) analyze() Bands {
	a.fft.Coefficients(a.coeffs, a.input)
	for i, c := range a.coeffs {
		a.mags[i] = cmplx.Abs(c)
	}

	var energy, bins [6]float64
	for i, m := range a.mags {
		freq := a.BinFrequency(i)
		for bi := range a.bands {
			if freq >= a.bands[bi].lowHz && freq < a.bands[bi].highHz {
				energy[bi] += m * m
				bins[bi]++
				break
			}
		}
	}

	var out [6]float64
	for i := range energy {
		if bins[i] > 0 {
			out[i] = math.Min(1, math.Sqrt(energy[i]/bins[i])*bandScale)
		}
	}
	return Bands{Sub: out[0], Bass: out[1], LowMid: out[2], Mid: out[3], HighMid: out[4], Treble: out[5]}
}

// BinFrequency returns the center frequency in Hz for an FFT bin
// index, 0 for indexes outside the output range.
func (a *Analyzer) BinFrequency(bin int) float64 {
	if bin < 0 || bin >= len(a.mags) {
		return 0
	}
	return float64(bin) * (a.sampleRate / float64(a.size))
}

// Size returns the FFT size in samples.
func (a *Analyzer) Size() int { return a.size }

// SampleRate returns the configured sample rate in Hz.
func (a *Analyzer) SampleRate() float64 { return a.sampleRate }
