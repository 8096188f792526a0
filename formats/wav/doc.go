// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes linear PCM WAV files through
// github.com/go-audio/wav.
//
// Decoding accepts 8, 16, 24 and 32 bit integer PCM with any channel count
// and sample rate. The returned source also implements audio.FrameSeeker.
//
//	f, _ := os.Open("Audio/SE/cursor.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// Encode writes 16 bit PCM, mainly for fixtures and tooling:
//
//	f, _ := os.Create("beep.wav")
//	err := wav.Encode(f, 44100, 1, samples)
package wav
