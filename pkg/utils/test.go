// SPDX-License-Identifier: MIT

// Package utils holds test signal generators and small helpers shared
// across packages.
package utils

import (
	"math"
	"sync"
)

// MockTransport records payloads instead of transmitting them. It
// satisfies the transport interface structurally so tests can stand in
// for any real transport. Safe for concurrent use.
type MockTransport struct {
	mu     sync.Mutex
	sent   []any
	closed bool

	// Err, when set, is returned by every Send.
	Err error
}

// Send stores the payload for later inspection.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, data)
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Sent returns a copy of everything sent so far.
func (m *MockTransport) Sent() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.sent))
	copy(out, m.sent)
	return out
}

// Closed reports whether Close was called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GenerateComplexWave builds a 440Hz fundamental with two harmonics,
// near full scale.
func GenerateComplexWave(size int, sampleRate float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = int32(signal * math.MaxInt32 * 0.9)
	}
	return buffer
}

// GenerateSineWave builds a pure tone at the given frequency, near
// full scale.
func GenerateSineWave(size int, sampleRate, frequency float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int32(math.Sin(2*math.Pi*frequency*t) * math.MaxInt32 * 0.9)
	}
	return buffer
}

// FindPeakIndex returns the index of the largest value in
// values[start:end], clamping the range to the slice. Allocation-free.
func FindPeakIndex(values []float64, start, end int) int {
	if len(values) == 0 {
		return 0
	}

	if start < 0 {
		start = 0
	}
	if end >= len(values) {
		end = len(values) - 1
	}

	peakIndex := start
	peakValue := values[start]
	for i := start + 1; i <= end; i++ {
		if values[i] > peakValue {
			peakValue = values[i]
			peakIndex = i
		}
	}
	return peakIndex
}
