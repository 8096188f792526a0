// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files through
// github.com/jfreymuth/oggvorbis.
//
// Ogg Vorbis is the usual container for looping BGM and BGS tracks. The
// returned source implements audio.FrameSeeker, so playback can start at an
// arbitrary offset without decoding the preceding audio.
package vorbis
