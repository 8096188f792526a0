// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer 3 files through
// github.com/hajimehoshi/go-mp3.
//
// Output is always stereo; mono files are duplicated by the decoder. The
// returned source implements audio.FrameSeeker using the decoder's frame
// index.
//
//	f, _ := os.Open("Audio/ME/victory.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
package mp3
