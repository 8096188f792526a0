// SPDX-License-Identifier: EPL-2.0

// Package channel builds addressable playback channels on top of
// stream.Handle: a single Channel that remembers its track, a resizable
// index-addressed Group of channels with global volume and pitch, and an
// Emitter that spreads one-shot sounds over a fixed pool of streams.
package channel
