// SPDX-License-Identifier: EPL-2.0

package audchan

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ik5/audchan/backend"
	"github.com/ik5/audchan/engine"
	"github.com/ik5/audchan/internal/envconf"
	"github.com/ik5/audchan/syncpoint"
)

// Config gathers the engine and output settings.
type Config struct {
	Engine engine.Config
	Output backend.Config
}

func DefaultConfig() Config {
	return Config{
		Engine: engine.DefaultConfig(),
		Output: backend.DefaultConfig(),
	}
}

// LoadConfig reads every AUDCHAN_* variable through lookup, usually
// os.LookupEnv.
func LoadConfig(lookup func(string) (string, bool)) (Config, error) {
	eng, err := engine.LoadConfig(envconf.Lookup(lookup))
	if err != nil {
		return Config{}, err
	}

	out, err := backend.LoadConfig(envconf.Lookup(lookup))
	if err != nil {
		return Config{}, err
	}

	return Config{Engine: eng, Output: out}, nil
}

// System is an engine playing through the software mixer to an output sink.
type System struct {
	Engine *engine.Engine
	Mixer  *backend.Mixer
	Sink   backend.Sink

	log zerolog.Logger
}

// Open decodes through the built-in format registry, mixes in software and
// plays to the sink named in cfg.Output.
func Open(cfg Config, log zerolog.Logger) (*System, error) {
	if err := cfg.Output.Validate(); err != nil {
		return nil, err
	}

	m := backend.NewMixer(backend.NewRegistry(), cfg.Output.SampleRate, log)

	sink, err := backend.OpenSink(cfg.Output, m, log)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(m, syncpoint.New(), cfg.Engine, log)
	if err != nil {
		return nil, errors.Join(err, sink.Close())
	}

	return &System{Engine: eng, Mixer: m, Sink: sink, log: log}, nil
}

func (s *System) SyncPoint() *syncpoint.SyncPoint { return s.Engine.SyncPoint() }

// Suspend halts background work and pauses the output. It blocks until the
// primary worker of the SyncPoint, normally a control.Dispatcher, has
// parked, so one must be running.
func (s *System) Suspend() error {
	s.SyncPoint().Halt()
	if err := s.Sink.Suspend(); err != nil {
		return fmt.Errorf("suspend: %w", err)
	}

	s.log.Info().Msg("suspended")

	return nil
}

func (s *System) Resume() error {
	err := s.Sink.Resume()
	s.SyncPoint().Resume()
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}

	s.log.Info().Msg("resumed")

	return nil
}

// Close releases the SyncPoint, then stops the engine and the output.
func (s *System) Close() error {
	s.SyncPoint().Resume()

	return errors.Join(s.Engine.Close(), s.Sink.Close())
}
