// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// FrameSeeker is implemented by sources that can jump to an absolute frame
// without decoding everything before it.
type FrameSeeker interface {
	SeekFrame(frame int64) error
}

// Decoder constructs a Source from a seekable input.
type Decoder interface {
	Decode(r io.ReadSeeker) (Source, error)
}

// Registry maps file extensions (without the dot, lower case) to decoders.
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// Open decodes the file at path with the decoder registered for its
// extension. Closing the returned Source closes the file.
func (r *Registry) Open(path string) (Source, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	dec, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &fileSource{Source: src, file: f}, nil
}

// fileSource ties the lifetime of the underlying file to the decoded source.
type fileSource struct {
	Source
	file *os.File
}

func (s *fileSource) SeekFrame(frame int64) error {
	return SeekFrame(s.Source, frame)
}

func (s *fileSource) Close() error {
	err := s.Source.Close()
	if cerr := s.file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w", cerr)
	}

	return err
}

// SeekFrame positions src at the given absolute frame. Sources implementing
// FrameSeeker jump directly; any other source is read forward and the
// samples are discarded, so it must not have been read past frame yet.
func SeekFrame(src Source, frame int64) error {
	if frame <= 0 {
		return nil
	}

	if fs, ok := src.(FrameSeeker); ok {
		return fs.SeekFrame(frame)
	}

	_, err := Skip(src, frame)
	return err
}

// Skip reads and discards up to frames frames from src and reports how many
// were consumed. io.EOF is returned if the source ended first.
func Skip(src Source, frames int64) (int64, error) {
	channels := src.Channels()
	if channels <= 0 {
		return 0, ErrInvalidChannels
	}

	buf := make([]float32, 1024*channels)
	var done int64

	for done < frames {
		want := min(frames-done, int64(len(buf)/channels))
		n, err := src.ReadSamples(buf[:want*int64(channels)])
		done += int64(n / channels)

		if err == io.EOF {
			return done, io.EOF
		}

		if err != nil {
			return done, fmt.Errorf("%w", err)
		}

		if n == 0 {
			return done, io.ErrNoProgress
		}
	}

	return done, nil
}
