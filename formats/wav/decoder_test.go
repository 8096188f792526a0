// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audchan/audio"
)

// writeFixture encodes samples into a temporary WAV file and returns its path.
func writeFixture(t testing.TB, sampleRate, channels int, samples []int16) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	if err := EncodeFile(path, sampleRate, channels, samples); err != nil {
		t.Fatalf("EncodeFile() error = %v", err)
	}

	return path
}

func openFixture(t testing.TB, path string) audio.Source {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })

	src, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	return src
}

func TestDecoder_Metadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sampleRate int
		channels   int
	}{
		{"mono 8k", 8000, 1},
		{"stereo 44.1k", 44100, 2},
		{"stereo 48k", 48000, 2},
		{"quad 22k", 22050, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			samples := make([]int16, 16*tt.channels)
			src := openFixture(t, writeFixture(t, tt.sampleRate, tt.channels, samples))

			if src.SampleRate() != tt.sampleRate {
				t.Errorf("SampleRate() = %d, want %d", src.SampleRate(), tt.sampleRate)
			}
			if src.Channels() != tt.channels {
				t.Errorf("Channels() = %d, want %d", src.Channels(), tt.channels)
			}
		})
	}
}

func TestDecoder_NotWavFile(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("NOT A WAV FILE DATA AT ALL, REALLY")))
	if !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Decode() error = %v, want ErrNotWavFile", err)
	}
}

func TestDecoder_Empty(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader(nil)); err == nil {
		t.Error("Decode() of empty input returned nil error")
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, -32768, 8192, -8192}
	src := openFixture(t, writeFixture(t, 8000, 2, samples))

	buf := make([]float32, 16)
	n, err := src.ReadSamples(buf)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != len(samples) {
		t.Fatalf("ReadSamples() n = %d, want %d", n, len(samples))
	}

	want := []float32{0, 0.5, -0.5, -1, 0.25, -0.25}
	for i, w := range want {
		if math.Abs(float64(buf[i]-w)) > 1e-6 {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], w)
		}
	}

	if n, err := src.ReadSamples(buf); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestSource_ReadSamples_FrameAligned(t *testing.T) {
	t.Parallel()

	src := openFixture(t, writeFixture(t, 8000, 2, make([]int16, 20)))

	n, err := src.ReadSamples(make([]float32, 5))
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 4 {
		t.Errorf("ReadSamples() n = %d, want 4 (whole frames only)", n)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 1000)
	for i := range samples {
		samples[i] = int16(i * 32)
	}
	src := openFixture(t, writeFixture(t, 8000, 1, samples))

	seeker, ok := src.(audio.FrameSeeker)
	if !ok {
		t.Fatal("source does not implement audio.FrameSeeker")
	}

	buf := make([]float32, 1)
	for _, frame := range []int64{500, 100, 999} {
		if err := seeker.SeekFrame(frame); err != nil {
			t.Fatalf("SeekFrame(%d) error = %v", frame, err)
		}
		if _, err := src.ReadSamples(buf); err != nil {
			t.Fatalf("ReadSamples() after SeekFrame(%d) error = %v", frame, err)
		}

		want := float32(frame*32) / 32768
		if math.Abs(float64(buf[0]-want)) > 1e-6 {
			t.Errorf("sample at %d = %v, want %v", frame, buf[0], want)
		}
	}

	if err := seeker.SeekFrame(5000); err != nil {
		t.Errorf("SeekFrame() past the end error = %v, want nil", err)
	}
	if n, err := src.ReadSamples(buf); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() past the end = (%d, %v), want (0, io.EOF)", n, err)
	}
}

// fakeReader serves fixed PCM values at an arbitrary bit depth.
type fakeReader struct {
	data    []int
	pos     int
	rewinds int
}

func (f *fakeReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	n := copy(buf.Data, f.data[f.pos:])
	f.pos += n
	return n, nil
}

func (f *fakeReader) Rewind() error {
	f.pos = 0
	f.rewinds++
	return nil
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitDepth int
		value    int
		want     float32
	}{
		{8, 192, 0.5},
		{8, 0, -1},
		{16, -16384, -0.5},
		{24, 4194304, 0.5},
		{32, 1073741824, 0.5},
	}

	for _, tt := range tests {
		s := &source{
			dec:        &fakeReader{data: []int{tt.value}},
			sampleRate: 8000,
			channels:   1,
			bitDepth:   tt.bitDepth,
		}

		buf := make([]float32, 1)
		if _, err := s.ReadSamples(buf); err != nil {
			t.Fatalf("%d bit: ReadSamples() error = %v", tt.bitDepth, err)
		}
		if buf[0] != tt.want {
			t.Errorf("%d bit: value %d = %v, want %v", tt.bitDepth, tt.value, buf[0], tt.want)
		}
	}
}

func TestSource_SeekBackwardRewinds(t *testing.T) {
	t.Parallel()

	fake := &fakeReader{data: make([]int, 100)}
	s := &source{dec: fake, sampleRate: 8000, channels: 1, bitDepth: 16}

	if err := s.SeekFrame(50); err != nil {
		t.Fatal(err)
	}
	if err := s.SeekFrame(60); err != nil {
		t.Fatal(err)
	}
	if fake.rewinds != 0 {
		t.Errorf("forward seeks rewound %d times", fake.rewinds)
	}

	if err := s.SeekFrame(10); err != nil {
		t.Fatal(err)
	}
	if fake.rewinds != 1 || fake.pos != 10 {
		t.Errorf("backward seek: rewinds = %d, pos = %d, want 1 and 10", fake.rewinds, fake.pos)
	}
}

func TestRegistry_OpensWav(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.Register("wav", Decoder{})

	src, err := reg.Open(writeFixture(t, 22050, 1, make([]int16, 64)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 22050 {
		t.Errorf("SampleRate() = %d, want 22050", src.SampleRate())
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 44100*2)
	for i := range samples {
		samples[i] = int16(math.Sin(float64(i)*0.05) * 20000)
	}
	path := writeFixture(b, 44100, 2, samples)
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		f, err := os.Open(path)
		if err != nil {
			b.Fatal(err)
		}
		src, err := Decoder{}.Decode(f)
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
		f.Close()
	}
}
