// SPDX-License-Identifier: EPL-2.0

package utils

import "testing"

func TestClamp(t *testing.T) {
	t.Parallel()

	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %d", got)
	}
	if got := Clamp(-2.5, -1.0, 1.0); got != -1 {
		t.Errorf("Clamp(-2.5, -1, 1) = %v", got)
	}
	if got := Clamp01(0.4); got != 0.4 {
		t.Errorf("Clamp01(0.4) = %v", got)
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()

	tests := map[int]float64{
		0:   0,
		50:  0.5,
		100: 1,
		150: 1,
		-3:  0,
	}
	for in, want := range tests {
		if got := Percent(in); got != want {
			t.Errorf("Percent(%d) = %v, want %v", in, got, want)
		}
	}
}
