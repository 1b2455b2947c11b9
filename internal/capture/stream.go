// SPDX-License-Identifier: MIT
package capture

import (
	"runtime"

	"github.com/gordonklaus/portaudio"

	"kinetic/internal/dsp"
)

// StreamOptions configure a live input stream. Zero values select the
// defaults, except DeviceID where 0 is a real device: pass
// DefaultDevice for the system default input.
type StreamOptions struct {
	// DeviceID selects the input device; DefaultDevice uses the
	// system default.
	DeviceID int

	// SampleRate in Hz. Defaults to 44100.
	SampleRate float64

	// FramesPerBuffer is the callback buffer size and FFT size, a
	// power of two. Defaults to 1024.
	FramesPerBuffer int

	// Channels of interleaved input. Defaults to 1; with more, only
	// the first channel feeds analysis.
	Channels int

	// LowLatency requests the device's low-latency profile.
	LowLatency bool

	// Window is the FFT taper.
	Window dsp.Window

	// GateThreshold is the noise-gate level as a fraction of full
	// scale. Gated buffers emit zero bands rather than nothing, so
	// downstream consumers see silence instead of a stall.
	GateThreshold float64
}

func (o StreamOptions) withDefaults() StreamOptions {
	if o.SampleRate == 0 {
		o.SampleRate = 44100
	}
	if o.FramesPerBuffer == 0 {
		o.FramesPerBuffer = 1024
	}
	if o.Channels == 0 {
		o.Channels = 1
	}
	return o
}

// Stream captures live audio and publishes one band-energy frame per
// callback buffer. The PortAudio callback never blocks: frames are
// dropped when the consumer lags.
type Stream struct {
	opts     StreamOptions
	device   *portaudio.DeviceInfo
	stream   *portaudio.Stream
	analyzer *dsp.Analyzer
	gate     *Gate

	buf  []int32 // interleaved copy of the callback input
	mono []int32 // first-channel fold for analysis

	out chan dsp.Bands
}

// NewStream resolves the device and prepares analysis buffers.
// PortAudio must be initialized first.
func NewStream(opts StreamOptions) (*Stream, error) {
	opts = opts.withDefaults()

	analyzer, err := dsp.NewAnalyzer(opts.FramesPerBuffer, opts.SampleRate, opts.Window)
	if err != nil {
		return nil, err
	}

	device, err := InputDevice(opts.DeviceID)
	if err != nil {
		return nil, err
	}

	return &Stream{
		opts:     opts,
		device:   device,
		analyzer: analyzer,
		gate:     NewGate(opts.GateThreshold),
		buf:      make([]int32, opts.FramesPerBuffer*opts.Channels),
		mono:     make([]int32, opts.FramesPerBuffer),
		out:      make(chan dsp.Bands, 8),
	}, nil
}

// Bands is the stream's output: one frame per captured buffer.
func (s *Stream) Bands() <-chan dsp.Bands { return s.out }

// Gate exposes the noise gate for runtime adjustment.
func (s *Stream) Gate() *Gate { return s.gate }

// SampleRate returns the effective capture rate in Hz.
func (s *Stream) SampleRate() float64 { return s.opts.SampleRate }

// Start opens the input stream and begins capture.
func (s *Stream) Start() error {
	latency := s.device.DefaultHighInputLatency
	if s.opts.LowLatency {
		latency = s.device.DefaultLowInputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   s.device,
			Channels: s.opts.Channels,
			Latency:  latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: s.opts.FramesPerBuffer,
		SampleRate:      s.opts.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, s.process)
	if err != nil {
		return err
	}
	s.stream = stream

	if err := s.stream.Start(); err != nil {
		s.stream.Close()
		s.stream = nil
		return err
	}
	return nil
}

// Stop halts capture and releases the stream. Safe to call twice.
func (s *Stream) Stop() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return err
	}
	if err := s.stream.Close(); err != nil {
		return err
	}
	s.stream = nil
	return nil
}

// process is the PortAudio callback. Pre-allocated buffers only, no
// blocking sends.
func (s *Stream) process(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(s.buf, in)

	var bands dsp.Bands
	if s.gate.Open(s.buf) {
		input := s.buf
		if s.opts.Channels > 1 {
			foldMono(s.mono, s.buf, s.opts.Channels)
			input = s.mono
		}
		bands = s.analyzer.ProcessInt32(input)
	}

	select {
	case s.out <- bands:
	default: // consumer lagging, drop the frame
	}
}

// foldMono copies the first channel out of an interleaved buffer.
func foldMono(dst, src []int32, channels int) {
	for i := range dst {
		if pos := i * channels; pos < len(src) {
			dst[i] = src[pos]
		} else {
			dst[i] = 0
		}
	}
}
