// SPDX-License-Identifier: MIT
package capture

import (
	"math"
	"testing"
)

func TestGateThresholdClamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input, want float64
	}{
		{-0.1, 0.0},
		{0.0, 0.0},
		{0.5, 0.5},
		{1.0, 1.0},
		{1.5, 1.0},
	}

	g := NewGate(0)
	for _, tc := range tests {
		g.SetThreshold(tc.input)
		if got := g.Threshold(); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("SetThreshold(%v) reads back %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestGateOpen(t *testing.T) {
	t.Parallel()

	quiet := make([]int32, 1024)
	for i := range quiet {
		quiet[i] = int32(i % 1000)
	}
	loud := make([]int32, 1024)
	copy(loud, quiet)
	loud[512] = -math.MaxInt32 / 2 // negative peak exercises the branchless abs

	tests := []struct {
		name      string
		threshold float64
		enabled   bool
		buf       []int32
		want      bool
	}{
		{"quiet buffer stays gated", 0.25, true, quiet, false},
		{"negative peak clears the gate", 0.25, true, loud, true},
		{"disabled gate is always open", 0.25, false, quiet, true},
		{"zero threshold opens on any signal", 0, true, quiet, true},
		{"zero threshold stays closed on silence", 0, true, make([]int32, 1024), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := NewGate(tc.threshold)
			if !tc.enabled {
				g.Disable()
			}
			if got := g.Open(tc.buf); got != tc.want {
				t.Errorf("Open = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGateOpenHotPath(t *testing.T) {
	g := NewGate(0.25)
	buf := make([]int32, 1024)
	for i := range buf {
		buf[i] = int32((i%100 - 50) * 10000000)
	}

	allocs := testing.AllocsPerRun(100, func() {
		g.Open(buf)
	})
	if allocs > 0 {
		t.Errorf("Open allocated %.1f times per run, want 0", allocs)
	}
}

func BenchmarkGateOpen(b *testing.B) {
	g := NewGate(0.25)
	buf := make([]int32, 1024)
	for i := range buf {
		buf[i] = int32((i%100 - 50) * 10000000)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.Open(buf)
	}
}
