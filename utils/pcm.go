// SPDX-License-Identifier: EPL-2.0

package utils

import goaudio "github.com/go-audio/audio"

// IntToFloat32 normalises a signed integer PCM sample of the given bit depth
// to [-1, 1).
func IntToFloat32(v, bitDepth int) float32 {
	peak := goaudio.IntMaxSignedValue(bitDepth)
	if peak == 0 {
		peak = goaudio.IntMaxSignedValue(16)
	}

	return float32(v) / float32(peak+1)
}
