// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoSink plays the mix through an oto context. Only one oto context can
// exist per process.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
}

func NewOtoSink(m *Mixer, buffer time.Duration) (*OtoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   m.SampleRate(),
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("oto: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(m)
	player.Play()

	return &OtoSink{ctx: ctx, player: player}, nil
}

func (s *OtoSink) Suspend() error {
	if err := s.ctx.Suspend(); err != nil {
		return fmt.Errorf("oto suspend: %w", err)
	}
	return nil
}

func (s *OtoSink) Resume() error {
	if err := s.ctx.Resume(); err != nil {
		return fmt.Errorf("oto resume: %w", err)
	}
	return nil
}

func (s *OtoSink) Close() error {
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("oto close: %w", err)
	}
	return nil
}
