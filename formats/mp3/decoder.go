// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/utils"
)

// go-mp3 always produces 16-bit little endian stereo.
const (
	channels      = 2
	bytesPerFrame = 4
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	io.ReadSeeker
	SampleRate() int
	Length() int64
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	pending    []byte // a partial frame carried over between reads
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // sample capacity, not bytes

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := (len(dst) - len(dst)%channels) * 2
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	s.buf = s.buf[:want]

	have := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	n, err := io.ReadFull(s.dec, s.buf[have:])
	have += n

	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}

	whole := have - have%bytesPerFrame
	s.pending = append(s.pending, s.buf[whole:have]...)

	samples := whole / 2
	for i := range samples {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = utils.IntToFloat32(int(v), 16)
	}

	return samples, err
}

// SeekFrame jumps to an absolute stereo frame. Seeking past the end leaves
// the stream at its end.
func (s *source) SeekFrame(frame int64) error {
	offset := frame * bytesPerFrame
	if length := s.dec.Length(); length >= 0 && offset > length {
		offset = length - length%bytesPerFrame
	}

	if _, err := s.dec.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.pending = s.pending[:0]

	return nil
}

type Decoder struct{}

func (Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
