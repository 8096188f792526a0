// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sink pulls the mix to an output device.
type Sink interface {
	// Suspend stops pulling audio, e.g. while the application is halted.
	Suspend() error
	Resume() error
	Close() error
}

// OpenSink starts the sink named in cfg. When a device sink cannot start
// it degrades to a NullSink so playback state still advances.
func OpenSink(cfg Config, m *Mixer, log zerolog.Logger) (Sink, error) {
	log = log.With().Str("component", "sink").Str("sink", cfg.Sink).Logger()

	var (
		s   Sink
		err error
	)

	switch cfg.Sink {
	case SinkNull:
		return NewNullSink(m, cfg.Buffer), nil
	case SinkOto:
		s, err = NewOtoSink(m, cfg.Buffer)
	case SinkBeep:
		s, err = NewBeepSink(m, cfg.Buffer)
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Sink, ErrUnknownSink)
	}

	if err != nil {
		log.Warn().Err(err).Msg("audio device unavailable, running silent")
		return NewNullSink(m, cfg.Buffer), nil
	}

	log.Info().Int("sample_rate", m.SampleRate()).Dur("buffer", cfg.Buffer).Msg("audio output started")

	return s, nil
}

// NullSink discards the mix at real-time pace.
type NullSink struct {
	m      *Mixer
	period time.Duration

	mu        sync.Mutex
	suspended bool

	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func NewNullSink(m *Mixer, period time.Duration) *NullSink {
	if period <= 0 {
		period = 100 * time.Millisecond
	}

	s := &NullSink{
		m:      m,
		period: period,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()

	return s
}

func (s *NullSink) run() {
	defer close(s.done)

	frames := max(int(s.period.Seconds()*float64(s.m.SampleRate())), 1)
	buf := make([]float32, 2*frames)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		suspended := s.suspended
		s.mu.Unlock()

		if !suspended {
			s.m.Mix(buf)
		}
	}
}

func (s *NullSink) Suspend() error {
	s.mu.Lock()
	s.suspended = true
	s.mu.Unlock()
	return nil
}

func (s *NullSink) Resume() error {
	s.mu.Lock()
	s.suspended = false
	s.mu.Unlock()
	return nil
}

func (s *NullSink) Close() error {
	s.once.Do(func() {
		close(s.quit)
		<-s.done
	})
	return nil
}
