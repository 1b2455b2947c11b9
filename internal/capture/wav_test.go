// SPDX-License-Identifier: MIT
package capture

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"kinetic/internal/dsp"
)

// writeWavFixture encodes a sine tone on the first channel, leaving
// any other channels silent, and returns the file path.
func writeWavFixture(t *testing.T, name string, rate, bitDepth, channels int, freq, amp, seconds float64) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}

	enc := wav.NewEncoder(f, rate, bitDepth, channels, 1)
	scale := float64(int64(1)<<(bitDepth-1)) - 1

	n := int(float64(rate) * seconds)
	data := make([]int, n*channels)
	for i := 0; i < n; i++ {
		data[i*channels] = int(amp * scale * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	return path
}

func TestFileFeederTickCount(t *testing.T) {
	t.Parallel()

	path := writeWavFixture(t, "second.wav", 44100, 24, 1, 440, 1e-4, 1.0)

	tests := []struct {
		name     string
		feedRate int
	}{
		{"explicit 60Hz", 60},
		{"zero rate defaults to 60Hz", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ff, err := NewFileFeeder(path, 1024, tc.feedRate, dsp.Hann)
			if err != nil {
				t.Fatalf("NewFileFeeder: %v", err)
			}

			// One second at a 60Hz hop is exactly 60 frames.
			frames := 0
			for {
				if _, ok := ff.Next(); !ok {
					break
				}
				frames++
			}
			if frames != 60 {
				t.Errorf("got %d frames, want 60", frames)
			}
			if got := ff.Progress(); got != 1 {
				t.Errorf("Progress after drain = %v, want 1", got)
			}
			if ff.Duration() != time.Second {
				t.Errorf("Duration = %v, want 1s", ff.Duration())
			}
		})
	}
}

func TestFileFeederFindsTheTone(t *testing.T) {
	t.Parallel()

	// 440Hz lands in the low-mid band, which folds into the middle
	// of the three-band triple.
	path := writeWavFixture(t, "tone.wav", 44100, 24, 1, 440, 1e-4, 1.0)
	ff, err := NewFileFeeder(path, 1024, 60, dsp.Hann)
	if err != nil {
		t.Fatalf("NewFileFeeder: %v", err)
	}

	var bassSum, midSum, highSum float64
	frames := 0
	for {
		b, ok := ff.Next()
		if !ok {
			break
		}
		bass, mid, high := b.Triple()
		bassSum += bass
		midSum += mid
		highSum += high
		frames++
	}
	if frames == 0 {
		t.Fatal("feeder produced no frames")
	}
	if midSum <= bassSum || midSum <= highSum {
		t.Errorf("tone not dominant in mid: bass/mid/high sums = %v/%v/%v", bassSum, midSum, highSum)
	}
}

func TestFileFeederStereoTakesFirstChannel(t *testing.T) {
	t.Parallel()

	path := writeWavFixture(t, "stereo.wav", 44100, 16, 2, 440, 0.002, 1.0)
	ff, err := NewFileFeeder(path, 1024, 60, dsp.Hann)
	if err != nil {
		t.Fatalf("NewFileFeeder: %v", err)
	}

	// The frame count and duration prove the interleaved data was
	// folded to per-channel frames, not treated as twice the length.
	if got := ff.Duration(); got != time.Second {
		t.Errorf("Duration = %v, want 1s", got)
	}
	if got := ff.SampleRate(); got != 44100 {
		t.Errorf("SampleRate = %v, want 44100", got)
	}

	b, ok := ff.Next()
	if !ok {
		t.Fatal("feeder produced no frames")
	}
	if _, mid, _ := b.Triple(); mid == 0 {
		t.Error("left-channel tone missing from analysis")
	}
}

func TestFileFeederRewind(t *testing.T) {
	t.Parallel()

	path := writeWavFixture(t, "rewind.wav", 44100, 24, 1, 440, 1e-4, 0.25)
	ff, err := NewFileFeeder(path, 1024, 60, dsp.Hann)
	if err != nil {
		t.Fatalf("NewFileFeeder: %v", err)
	}

	first, ok := ff.Next()
	if !ok {
		t.Fatal("feeder produced no frames")
	}
	for i := 0; i < 5; i++ {
		ff.Next()
	}

	ff.Rewind()
	if got := ff.Progress(); got != 0 {
		t.Errorf("Progress after Rewind = %v, want 0", got)
	}
	again, ok := ff.Next()
	if !ok {
		t.Fatal("no frames after Rewind")
	}
	if again != first {
		t.Errorf("first frame after Rewind = %+v, want %+v", again, first)
	}
}

func TestFileFeederRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := NewFileFeeder(filepath.Join(t.TempDir(), "missing.wav"), 1024, 60, dsp.Hann); err == nil {
		t.Error("expected error for missing file")
	}

	text := filepath.Join(t.TempDir(), "notes.wav")
	if err := os.WriteFile(text, []byte("not audio at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileFeeder(text, 1024, 60, dsp.Hann); err == nil {
		t.Error("expected error for non-wav content")
	}

	real := writeWavFixture(t, "ok.wav", 44100, 16, 1, 440, 0.002, 0.1)
	if _, err := NewFileFeeder(real, 1000, 60, dsp.Hann); err == nil {
		t.Error("expected error for non power of two fft size")
	}
}
