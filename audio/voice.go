// SPDX-License-Identifier: EPL-2.0

package audio

// PlayState is the playback state reported by a Voice.
type PlayState int

const (
	Stopped PlayState = iota
	Playing
	Paused
)

func (s PlayState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// FilterID references an output filter owned by the backend. The zero value
// is NullFilter and means "no filter".
type FilterID uint32

// EffectID references an output effect owned by the backend. The zero value
// is NullEffect and means "no effect".
type EffectID uint32

const (
	NullFilter FilterID = 0
	NullEffect EffectID = 0
)

// Cue is a file opened and positioned for playback but not yet attached to
// a voice. Load it into a voice of the same Backend, or Close it.
type Cue interface {
	Close() error
}

// Voice is one streaming playback resource of a Backend. Implementations
// must be safe for concurrent use. Only Backend.Cue touches files; every
// Voice method returns without blocking on I/O when used as documented.
type Voice interface {
	// Load stops the voice and attaches c, leaving it Stopped at the cue
	// offset. The voice owns c afterwards, even on error.
	Load(c Cue) error
	// Play resumes a Paused voice, or starts a Stopped voice at offset
	// seconds. Starting a freshly loaded cue at its own offset needs no
	// I/O; any other start reopens the file. It is a no-op when nothing is
	// loaded.
	Play(offset float64) error
	Pause()
	// Stop halts playback and rewinds to the start.
	Stop()
	State() PlayState

	SetGain(gain float64)
	SetPitch(pitch float64)
	SetFilter(id FilterID)
	SetEffect(id EffectID)

	// Offset returns the playback position in seconds.
	Offset() float64

	Close() error
}

// Backend creates voices and cues. Looped voices restart from the
// beginning when the stream ends; the others stop.
type Backend interface {
	NewVoice(looped bool) Voice
	// Cue opens file positioned at offset seconds. It does the blocking
	// work (file access, decoding, seeking) so callers can run it without
	// holding locks.
	Cue(file string, offset float64) (Cue, error)
}
