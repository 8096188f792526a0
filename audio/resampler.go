// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ik5/audchan/utils"
)

// Resampler streams from src at dstRate using cubic interpolation, scaled by
// a pitch factor: pitch 2.0 plays twice as fast (one octave up), 0.5 half as
// fast. Pitch may be changed while streaming. Works on interleaved samples
// and preserves channel count.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	channels int

	mu    sync.Mutex
	pitch float64
	ratio float64 // source frames consumed per output frame

	// Ring buffer holding 4 frames for cubic interpolation
	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool
	primed   bool

	// base is the source frame index held in frames[1]; pos is the
	// fractional distance from it.
	base int64
	pos  float64

	// srcBuf holds decoded source frames not yet consumed.
	srcBuf []float32
	bufPos int
	bufLen int
	srcErr error
	eof    bool

	// One-pole low-pass used while the ratio is above 1 to limit aliasing.
	filterState []float32
	filterAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:         src,
		srcRate:     float64(src.SampleRate()),
		dstRate:     float64(dstRate),
		channels:    channels,
		pitch:       1,
		srcBuf:      make([]float32, 1024*channels),
		filterState: make([]float32, channels),
		filterAlpha: 0.5,
	}
	r.ratio = r.srcRate / r.dstRate

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// SetPitch changes the playback speed factor.
func (r *Resampler) SetPitch(pitch float64) error {
	if pitch <= 0 {
		return ErrInvalidPitch
	}

	r.mu.Lock()
	r.pitch = pitch
	r.ratio = r.srcRate * pitch / r.dstRate
	r.mu.Unlock()

	return nil
}

func (r *Resampler) Pitch() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pitch
}

// Position returns the current read position in source frames.
func (r *Resampler) Position() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(r.base) + r.pos
}

// readFrame reads one source frame into dst, applying the anti-alias filter
// when downsampling. Source reads happen in blocks of srcBuf.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	if r.bufPos >= r.bufLen {
		if r.srcErr != nil {
			return false, r.srcErr
		}

		n, err := r.src.ReadSamples(r.srcBuf)
		r.bufPos, r.bufLen = 0, n-n%r.channels

		switch {
		case err == io.EOF, err == nil && n == 0:
			r.srcErr = io.EOF
		case err != nil:
			r.srcErr = fmt.Errorf("%w", err)
		}

		if r.bufLen == 0 {
			return false, r.srcErr
		}
	}

	copy(dst, r.srcBuf[r.bufPos:r.bufPos+r.channels])
	r.bufPos += r.channels

	if r.ratio > 1.0 {
		for c := range r.channels {
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	} else {
		copy(r.filterState, dst)
	}

	if r.bufPos >= r.bufLen {
		return true, r.srcErr
	}

	return true, nil
}

// prime fills the ring with the first frames, duplicating the first frame
// as t-1 so output starts exactly at source frame 0.
func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.readFrame(r.frames[1])
	if !ok {
		r.eof = true
		return io.EOF
	}
	copy(r.frames[0], r.frames[1])
	copy(r.filterState, r.frames[1])
	r.hasFrame[0], r.hasFrame[1] = true, true

	for i := 2; i < 4; i++ {
		if err == io.EOF {
			r.eof = true
			break
		}
		if err != nil {
			return err
		}
		ok, err = r.readFrame(r.frames[i])
		r.hasFrame[i] = ok
		if !ok {
			r.eof = true
			break
		}
	}

	return nil
}

// advance shifts the ring by one frame and pulls the next source frame.
func (r *Resampler) advance() error {
	if !r.hasFrame[2] {
		return io.EOF
	}

	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	r.hasFrame[0] = r.hasFrame[1]
	r.hasFrame[1] = r.hasFrame[2]
	r.hasFrame[2] = r.hasFrame[3]
	r.base++

	if r.eof {
		r.hasFrame[3] = false
		return nil
	}

	ok, err := r.readFrame(r.frames[3])
	r.hasFrame[3] = ok
	if err == io.EOF || !ok {
		r.eof = true
		return nil
	}

	return err
}

// ReadSamples produces interleaved samples at the destination rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.channels <= 0 {
		return 0, ErrInvalidChannels
	}
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				if err == io.EOF {
					if written == 0 {
						return 0, io.EOF
					}
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		// Interpolation needs t0 and t+1; the last frame stands alone.
		if !r.hasFrame[2] {
			if r.pos > 0 || !r.hasFrame[1] {
				if written == 0 {
					return 0, io.EOF
				}
				return written * r.channels, io.EOF
			}
		}

		alpha := float32(r.pos)

		for c := range r.channels {
			y1 := r.frames[1][c]
			y0, y2, y3 := y1, y1, y1

			if r.hasFrame[0] {
				y0 = r.frames[0][c]
			}
			if r.hasFrame[2] {
				y2 = r.frames[2][c]
				y3 = y2
			}
			if r.hasFrame[3] {
				y3 = r.frames[3][c]
			}

			dst[written*r.channels+c] = utils.CubicInterpolate(y0, y1, y2, y3, alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
