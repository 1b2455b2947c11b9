// SPDX-License-Identifier: MIT
package capture

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"

	"kinetic/internal/dsp"
)

// FileFeeder replays a WAV file as a sequence of band-energy frames,
// one per engine tick. The whole file is decoded up front; Next is a
// pure windowed analysis over the in-memory samples, so playback pace
// is entirely the caller's ticker.
type FileFeeder struct {
	samples    []float64 // first channel, normalized to [-1,1]
	sampleRate float64
	analyzer   *dsp.Analyzer
	fftSize    int
	hop        int
	pos        int
}

// NewFileFeeder decodes a WAV file for tick-paced analysis. fftSize
// must be a power of two; feedRate is the tick rate in Hz the hop size
// is derived from.
func NewFileFeeder(path string, fftSize, feedRate int, w dsp.Window) (*FileFeeder, error) {
	if feedRate <= 0 {
		feedRate = 60
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid wav file", path)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%s has no channels", path)
	}
	bitDepth := int(d.BitDepth)
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range samples {
		samples[i] = float64(buf.Data[i*channels]) / scale
	}

	rate := float64(buf.Format.SampleRate)
	analyzer, err := dsp.NewAnalyzer(fftSize, rate, w)
	if err != nil {
		return nil, err
	}

	hop := int(rate) / feedRate
	if hop < 1 {
		hop = 1
	}

	return &FileFeeder{
		samples:    samples,
		sampleRate: rate,
		analyzer:   analyzer,
		fftSize:    fftSize,
		hop:        hop,
	}, nil
}

// Next analyzes the window at the playhead and advances one hop.
// Returns false once the file is exhausted.
func (ff *FileFeeder) Next() (dsp.Bands, bool) {
	if ff.pos >= len(ff.samples) {
		return dsp.Bands{}, false
	}
	end := ff.pos + ff.fftSize
	if end > len(ff.samples) {
		end = len(ff.samples)
	}
	bands := ff.analyzer.ProcessFloat64(ff.samples[ff.pos:end])
	ff.pos += ff.hop
	return bands, true
}

// Rewind moves the playhead back to the start of the file.
func (ff *FileFeeder) Rewind() { ff.pos = 0 }

// Progress reports playhead position in [0,1].
func (ff *FileFeeder) Progress() float64 {
	if len(ff.samples) == 0 {
		return 1
	}
	p := float64(ff.pos) / float64(len(ff.samples))
	if p > 1 {
		return 1
	}
	return p
}

// SampleRate returns the file's sample rate in Hz.
func (ff *FileFeeder) SampleRate() float64 { return ff.sampleRate }

// Duration returns the decoded length of the file.
func (ff *FileFeeder) Duration() time.Duration {
	if ff.sampleRate == 0 {
		return 0
	}
	return time.Duration(float64(len(ff.samples)) / ff.sampleRate * float64(time.Second))
}
