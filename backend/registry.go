// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/formats/aiff"
	"github.com/ik5/audchan/formats/mp3"
	"github.com/ik5/audchan/formats/vorbis"
	"github.com/ik5/audchan/formats/wav"
)

// NewRegistry returns a registry with every bundled decoder.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register("wav", wav.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})

	return reg
}
