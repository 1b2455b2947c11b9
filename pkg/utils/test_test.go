// SPDX-License-Identifier: MIT
package utils_test

import (
	"errors"
	"math"
	"testing"

	"kinetic/internal/transport"
	"kinetic/pkg/utils"
)

// MockTransport must keep satisfying the real transport interface.
var _ transport.Transport = (*utils.MockTransport)(nil)

func TestMockTransportRecordsInOrder(t *testing.T) {
	t.Parallel()

	mt := &utils.MockTransport{}
	for _, payload := range []any{"a", 2, "c"} {
		if err := mt.Send(payload); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	sent := mt.Sent()
	if len(sent) != 3 {
		t.Fatalf("recorded %d payloads, want 3", len(sent))
	}
	if sent[0] != "a" || sent[1] != 2 || sent[2] != "c" {
		t.Errorf("payload order = %v", sent)
	}

	if mt.Closed() {
		t.Error("transport closed before Close")
	}
	if err := mt.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !mt.Closed() {
		t.Error("Close did not mark the transport closed")
	}
}

func TestMockTransportErrInjection(t *testing.T) {
	t.Parallel()

	mt := &utils.MockTransport{Err: errors.New("wire down")}
	if err := mt.Send("lost"); err == nil {
		t.Fatal("expected injected error")
	}
	if len(mt.Sent()) != 0 {
		t.Error("failed send should not be recorded")
	}
}

func TestGenerateComplexWave(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		size       int
		sampleRate float64
	}{
		{"Standard", 1024, 44100},
		{"Small", 16, 8000},
		{"Large", 8192, 96000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := utils.GenerateComplexWave(tt.size, tt.sampleRate)

			if len(result) != tt.size {
				t.Errorf("buffer size = %d, want %d", len(result), tt.size)
			}

			hasNonZero := false
			for _, v := range result {
				if v != 0 {
					hasNonZero = true
					break
				}
			}
			if !hasNonZero {
				t.Errorf("GenerateComplexWave() produced all zeros")
			}
		})
	}
}

func TestGenerateSineWave(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		size       int
		sampleRate float64
		frequency  float64
	}{
		{"A4 Note", 1024, 44100, 440.0},
		{"Middle C", 1024, 44100, 261.63},
		{"High Sample Rate", 1024, 192000, 440.0},
		{"Low Sample Rate", 1024, 8000, 440.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := utils.GenerateSineWave(tt.size, tt.sampleRate, tt.frequency)

			if len(result) != tt.size {
				t.Errorf("buffer size = %d, want %d", len(result), tt.size)
			}

			// A sine crosses zero about twice per cycle.
			samplesPerCycle := tt.sampleRate / tt.frequency
			if samplesPerCycle > 2 && float64(tt.size) > samplesPerCycle {
				crossCount := 0
				for i := 1; i < tt.size; i++ {
					if (result[i-1] < 0 && result[i] >= 0) ||
						(result[i-1] >= 0 && result[i] < 0) {
						crossCount++
					}
				}

				expectedCrossings := float64(tt.size) / (samplesPerCycle / 2)
				tolerance := 0.2 * expectedCrossings
				if math.Abs(float64(crossCount)-expectedCrossings) > tolerance {
					t.Errorf("zero crossings = %d, expected approximately %.1f±%.1f",
						crossCount, expectedCrossings, tolerance)
				}
			}
		})
	}
}

func TestFindPeakIndex(t *testing.T) {
	t.Parallel()

	const size = 1024
	trail := make([]float64, size)
	for i := range trail {
		// A hill peaking at size/4.
		trail[i] = math.Exp(-0.01 * math.Pow(float64(i-size/4), 2))
	}

	tests := []struct {
		name     string
		values   []float64
		start    int
		end      int
		expected int
	}{
		{"Full Range", trail, 0, size - 1, size / 4},
		{"Partial Range Start", trail, size / 8, size - 1, size / 4},
		{"Partial Range End", trail, 0, size / 3, size / 4},
		{"Negative Start", trail, -10, size - 1, size / 4},
		{"Out of Range End", trail, 0, size * 2, size / 4},
		{"Empty Slice", []float64{}, 0, 10, 0},
		{"Single Value", []float64{1.0}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := utils.FindPeakIndex(tt.values, tt.start, tt.end); got != tt.expected {
				t.Errorf("FindPeakIndex() = %d, want %d", got, tt.expected)
			}
		})
	}

	allocs := testing.AllocsPerRun(100, func() {
		utils.FindPeakIndex(trail, 0, len(trail)-1)
	})
	if allocs > 0 {
		t.Errorf("FindPeakIndex allocated memory: got %.1f allocs, want 0", allocs)
	}
}

func BenchmarkGenerateComplexWave(b *testing.B) {
	benchmarks := []struct {
		name string
		size int
	}{
		{"Small", 64},
		{"Standard", 1024},
		{"Large", 8192},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				utils.GenerateComplexWave(bm.size, 44100)
			}
		})
	}
}

func BenchmarkFindPeakIndex(b *testing.B) {
	benchmarks := []struct {
		name string
		size int
	}{
		{"Small", 64},
		{"Standard", 1024},
		{"Large", 8192},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			values := make([]float64, bm.size)
			peakPos := bm.size / 2
			for i := range values {
				values[i] = math.Exp(-0.01 * math.Pow(float64(i-peakPos), 2))
			}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				utils.FindPeakIndex(values, 0, bm.size-1)
			}
		})
	}
}
