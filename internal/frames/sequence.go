// SPDX-License-Identifier: MIT
package frames

// ApplyStutter returns a copy of seq with the frame at start repeated
// over the following dur positions, the rhythmic-repeat effect:
// [A B C D E F] stuttered at 2 for 3 becomes [A B C C C C]. The repeat
// is clipped at the end of the sequence. A start outside the sequence
// or a non-positive dur returns the copy unchanged.
func ApplyStutter(seq []Frame, start, dur int) []Frame {
	out := make([]Frame, len(seq))
	copy(out, seq)

	if start < 0 || start >= len(seq) || dur <= 0 {
		return out
	}
	for i := start + 1; i <= start+dur && i < len(out); i++ {
		out[i] = out[start]
	}
	return out
}
