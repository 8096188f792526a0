// SPDX-License-Identifier: EPL-2.0

package utils

import "cmp"

// Clamp bounds v to [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// Clamp01 bounds a gain or fade factor to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Percent converts a 0..100 slider value into a gain factor, clamping
// out-of-range input.
func Percent(v int) float64 {
	return float64(Clamp(v, 0, 100)) / 100
}
