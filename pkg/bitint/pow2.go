// SPDX-License-Identifier: MIT

// Package bitint holds the power-of-two helpers used for FFT and
// buffer sizing. Everything is O(1) and allocation-free.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Powers of
// two map to themselves; sizes <= 0 map to 1.
//
// The size-1 before bits.Len keeps exact powers of two from doubling:
// Len(8) is 4 but Len(7) is 3, and 1<<3 preserves 8.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. A power
// of two has a single set bit, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
