// SPDX-License-Identifier: EPL-2.0

package channel

import (
	"errors"
	"testing"
	"time"

	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/internal/audiotest"
	"github.com/ik5/audchan/stream"
)

func newTestGroup(t *testing.T, size int) (*Group, *audiotest.Backend) {
	t.Helper()

	be := audiotest.NewBackend()
	g, err := NewGroup(be, size, testOptions("ch", false))
	if err != nil {
		t.Fatalf("NewGroup() error = %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })

	return g, be
}

func TestNewGroup_InvalidSize(t *testing.T) {
	t.Parallel()

	if _, err := NewGroup(audiotest.NewBackend(), MaxGroupSize+1, testOptions("ch", false)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewGroup(%d) error = %v, want ErrInvalidSize", MaxGroupSize+1, err)
	}
	if _, err := NewGroup(audiotest.NewBackend(), -1, testOptions("ch", false)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("error = %v, want ErrInvalidSize", err)
	}
}

func TestGroup_OutOfRange(t *testing.T) {
	t.Parallel()

	g, _ := newTestGroup(t, 2)

	tests := []struct {
		name string
		call func() error
	}{
		{"play", func() error { return g.Play(2, "a.wav", 1, 1, 0, false) }},
		{"stop", func() error { return g.Stop(-1) }},
		{"fade", func() error { return g.FadeOut(5, time.Second) }},
		{"volume", func() error { return g.SetVolume(9, 1) }},
		{"pitch", func() error { _, err := g.Pitch(2); return err }},
		{"state", func() error { _, err := g.State(2); return err }},
		{"filter", func() error { return g.SetFilter(2, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := tt.call(); !errors.Is(err, ErrNoSlot) {
				t.Errorf("error = %v, want ErrNoSlot", err)
			}
		})
	}
}

func TestGroup_PlayAndQuery(t *testing.T) {
	t.Parallel()

	g, _ := newTestGroup(t, 3)

	if err := g.Play(1, "door.wav", 0.6, 1, 0, false); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	playing, err := g.IsPlaying(1)
	if err != nil || !playing {
		t.Errorf("IsPlaying(1) = %v, %v", playing, err)
	}
	if playing, _ := g.IsPlaying(0); playing {
		t.Error("slot 0 playing")
	}
	if v, _ := g.Volume(1); v != 0.6 {
		t.Errorf("Volume(1) = %v, want 0.6", v)
	}
}

func TestGroup_PlayMissing(t *testing.T) {
	t.Parallel()

	g, be := newTestGroup(t, 1)
	be.Fail("x.wav")

	if err := g.Play(0, "x.wav", 1, 1, 0, false); !errors.Is(err, ErrPlayFailed) {
		t.Errorf("error = %v, want ErrPlayFailed", err)
	}
}

// Shrinking a playing pool from 8 to 4 slots keeps the first four playing
// and stops the rest.
func TestGroup_ResizeShrink(t *testing.T) {
	t.Parallel()

	g, _ := newTestGroup(t, 8)

	var removed []*Channel
	for id := range 8 {
		if err := g.Play(id, "loop.wav", 1, 1, 0, false); err != nil {
			t.Fatal(err)
		}
		if id >= 4 {
			c, _ := g.Slot(id)
			removed = append(removed, c)
		}
	}

	if err := g.Resize(4); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if g.Size() != 4 {
		t.Errorf("Size() = %d, want 4", g.Size())
	}

	for id := range 4 {
		if st, _ := g.State(id); st != audio.Playing {
			t.Errorf("slot %d = %v, want playing", id, st)
		}
	}
	for _, c := range removed {
		if c.State() != audio.Stopped {
			t.Errorf("removed slot %s still %v", c.Handle().Name(), c.State())
		}
	}
	if err := g.Stop(5); !errors.Is(err, ErrNoSlot) {
		t.Errorf("Stop(5) error = %v, want ErrNoSlot", err)
	}
}

func TestGroup_ResizeGrow(t *testing.T) {
	t.Parallel()

	g, _ := newTestGroup(t, 1)
	g.SetGlobalVolume(0.5)

	if err := g.Resize(3); err != nil {
		t.Fatal(err)
	}
	if err := g.Play(2, "a.wav", 1, 1, 0, false); err != nil {
		t.Fatalf("Play(2) error = %v", err)
	}

	c, _ := g.Slot(2)
	if got := c.Handle().Volume(stream.Base); got != 0.5 {
		t.Errorf("new slot base = %v, want global volume 0.5", got)
	}
	if err := g.Resize(-1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(-1) error = %v", err)
	}
	if err := g.Resize(MaxGroupSize + 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(%d) error = %v", MaxGroupSize+1, err)
	}
	if g.Size() != 3 {
		t.Errorf("Size() = %d after rejected resizes, want 3", g.Size())
	}
}

func TestGroup_GlobalVolumeAndPitch(t *testing.T) {
	t.Parallel()

	g, be := newTestGroup(t, 2)
	_ = g.Play(0, "a.wav", 0.8, 1.2, 0, false)

	g.SetGlobalVolume(0.5)
	g.SetGlobalPitch(0.5)
	g.SetGlobalPitch(0)

	if g.GlobalVolume() != 0.5 || g.GlobalPitch() != 0.5 {
		t.Errorf("globals = %v/%v", g.GlobalVolume(), g.GlobalPitch())
	}

	v := be.Voices()[0]
	if !near(v.Gain(), 0.4) || !near(v.Pitch(), 0.6) {
		t.Errorf("effective gain/pitch = %v/%v, want 0.4/0.6", v.Gain(), v.Pitch())
	}
	if p, _ := g.Pitch(0); p != 1.2 {
		t.Errorf("Pitch(0) = %v, want nominal 1.2", p)
	}
}

func TestGroup_StopAll(t *testing.T) {
	t.Parallel()

	g, be := newTestGroup(t, 4)
	for id := range 4 {
		_ = g.Play(id, "a.wav", 1, 1, 0, false)
	}

	g.StopAll()

	if n := len(be.Playing()); n != 0 {
		t.Errorf("%d voices still playing", n)
	}
}
