// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// 8, 16, 24 and 32 bit integer PCM is accepted with any channel count. The
// returned source implements audio.FrameSeeker; seeking backwards re-reads
// the container headers.
package aiff
