// SPDX-License-Identifier: EPL-2.0

package utils

import "encoding/binary"

func Float32ToInt16(x float32) int16 {
	return int16(Clamp(x, -1, 1) * 32767.0)
}

// PutInt16LE writes samples as signed 16-bit little endian PCM into dst,
// which must hold at least 2*len(samples) bytes. It returns the number of
// bytes written.
func PutInt16LE(dst []byte, samples []float32) int {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(Float32ToInt16(s)))
	}

	return 2 * len(samples)
}
