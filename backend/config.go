// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/ik5/audchan/internal/envconf"
)

const (
	SinkOto  = "oto"
	SinkBeep = "beep"
	SinkNull = "null"
)

type Config struct {
	SampleRate int
	// Sink selects the output device driver: oto, beep or null.
	Sink string
	// Buffer is the device buffer length.
	Buffer time.Duration
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Sink:       SinkOto,
		Buffer:     100 * time.Millisecond,
	}
}

// LoadConfig returns DefaultConfig overridden by AUDCHAN_SAMPLE_RATE,
// AUDCHAN_SINK and AUDCHAN_BUFFER.
func LoadConfig(lookup envconf.Lookup) (Config, error) {
	cfg := DefaultConfig()
	r := envconf.New("AUDCHAN_", lookup)

	err := errors.Join(
		r.Int("SAMPLE_RATE", &cfg.SampleRate),
		r.String("SINK", &cfg.Sink),
		r.Duration("BUFFER", &cfg.Buffer),
	)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.Buffer <= 0:
		return fmt.Errorf("%w: buffer %v", ErrInvalidConfig, c.Buffer)
	}

	switch c.Sink {
	case SinkOto, SinkBeep, SinkNull:
		return nil
	}

	return fmt.Errorf("%q: %w", c.Sink, ErrUnknownSink)
}
