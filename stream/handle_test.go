// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/internal/audiotest"
)

func newTestHandle(t *testing.T, looped bool) (*Handle, *audiotest.Backend) {
	t.Helper()

	be := audiotest.NewBackend()
	h := New(be, Options{
		Name:         "test",
		Looped:       looped,
		Tick:         time.Millisecond,
		OffsetFadeIn: 20 * time.Millisecond,
		Log:          zerolog.Nop(),
	})
	t.Cleanup(func() { _ = h.Close() })

	return h, be
}

func voiceFor(be *audiotest.Backend, file string) *audiotest.Voice {
	for _, v := range be.Voices() {
		if v.File() == file {
			return v
		}
	}
	return nil
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestHandle_Play(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)

	if !h.Play("town.ogg", 0.8, 1.2, 0, false) {
		t.Fatal("Play() = false, want true")
	}

	v := voiceFor(be, "town.ogg")
	if v == nil {
		t.Fatal("no voice opened town.ogg")
	}
	if h.State() != audio.Playing {
		t.Errorf("State() = %v, want playing", h.State())
	}
	if !near(v.Gain(), 0.8) {
		t.Errorf("gain = %v, want 0.8", v.Gain())
	}
	if v.Pitch() != 1.2 {
		t.Errorf("pitch = %v, want 1.2", v.Pitch())
	}
	if !v.Looped {
		t.Error("voice not looped")
	}
}

func TestHandle_PlayMissingFile(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, false)
	be.Fail("missing.wav")

	if h.Play("missing.wav", 1, 1, 0, false) {
		t.Error("Play() = true, want false")
	}
	if h.State() != audio.Stopped {
		t.Errorf("State() = %v, want stopped", h.State())
	}
}

func TestHandle_PlayAtOffsetFadesIn(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)
	h.Play("field.ogg", 1, 1, 12.5, true)

	v := voiceFor(be, "field.ogg")
	if v.Offset() != 12.5 {
		t.Errorf("offset = %v, want 12.5", v.Offset())
	}

	audiotest.Eventually(t, time.Second, func() bool {
		return h.Volume(FadeIn) == 1
	}, "fade-in never completed, FadeIn = %v", h.Volume(FadeIn))

	if !near(v.Gain(), 1) {
		t.Errorf("gain after fade-in = %v, want 1", v.Gain())
	}
}

func TestHandle_PlayAtOffsetWithoutFade(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandle(t, true)
	h.Play("field.ogg", 1, 1, 3, false)

	if got := h.Volume(FadeIn); got != 1 {
		t.Errorf("FadeIn = %v, want 1", got)
	}
}

func TestHandle_PlayWhileDucked(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)
	h.Stop()

	tx := h.Lock()
	tx.SetExtPaused(true)
	if !tx.NoResumeStop() {
		t.Error("NoResumeStop() = false after Stop")
	}
	tx.Unlock()

	if !h.Play("boss.ogg", 1, 1, 4, true) {
		t.Fatal("Play() = false")
	}

	v := voiceFor(be, "boss.ogg")
	if v.State() != audio.Stopped {
		t.Errorf("ducked Play started the voice: %v", v.State())
	}

	h.Start()
	if v.State() != audio.Stopped {
		t.Errorf("Start() while ducked started the voice: %v", v.State())
	}

	tx = h.Lock()
	if tx.NoResumeStop() {
		t.Error("NoResumeStop() = true after Play")
	}
	tx.SetExtPaused(false)
	tx.Unlock()

	cues := be.Cues()
	h.Start()

	if v.State() != audio.Playing || v.Offset() != 4 {
		t.Errorf("after Start: state %v offset %v, want playing at 4", v.State(), v.Offset())
	}
	if be.Cues() != cues {
		t.Error("Start() reopened a file that was already cued")
	}
}

func TestHandle_StartReopensFinishedStream(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, false)
	h.Play("jingle.ogg", 1, 1, 2, false)

	v := voiceFor(be, "jingle.ogg")
	v.Finish()

	h.Start()

	if v.State() != audio.Playing || v.Offset() != 2 {
		t.Errorf("after Start: state %v offset %v, want playing at 2", v.State(), v.Offset())
	}
	if v.Opens() != 2 || v.Starts() != 2 {
		t.Errorf("opens/starts = %d/%d, want 2/2", v.Opens(), v.Starts())
	}
}

func TestHandle_StartLeavesStoppedStream(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, false)
	h.Play("a.ogg", 1, 1, 0, false)
	h.Stop()

	cues := be.Cues()
	h.Start()

	if h.State() != audio.Stopped {
		t.Errorf("State() = %v after Stop then Start, want stopped", h.State())
	}
	if be.Cues() != cues {
		t.Error("Start() reopened a stream stopped on request")
	}
}

// Every file access must leave the handle lock free for the watchdog.
func TestHandle_OpensWithoutLock(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, false)

	var mu sync.Mutex
	var held []string
	be.OnCue(func(file string) {
		free := make(chan struct{})
		go func() {
			h.Lock().Unlock()
			close(free)
		}()

		select {
		case <-free:
		case <-time.After(time.Second):
			mu.Lock()
			held = append(held, file)
			mu.Unlock()
		}
	})

	h.Play("a.ogg", 1, 1, 0, false)
	h.Crossfade("b.ogg", time.Hour, 1, 1, 0)
	voiceFor(be, "b.ogg").Finish()
	h.Start()

	if be.Cues() != 3 {
		t.Errorf("%d cues, want 3", be.Cues())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(held) > 0 {
		t.Errorf("stream lock held while opening %v", held)
	}
}

func TestHandle_Stop(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandle(t, true)
	h.Play("a.ogg", 1, 1, 0, false)
	h.Stop()

	tx := h.Lock()
	defer tx.Unlock()

	if tx.State() != audio.Stopped {
		t.Errorf("State() = %v, want stopped", tx.State())
	}
	if !tx.NoResumeStop() {
		t.Error("NoResumeStop() = false, want true")
	}
}

func TestHandle_FadeOut(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandle(t, true)
	h.Play("a.ogg", 1, 1, 0, false)
	h.FadeOut(10 * time.Millisecond)

	audiotest.Eventually(t, time.Second, func() bool {
		return h.State() == audio.Stopped
	}, "fade-out never stopped the stream")

	if got := h.Volume(FadeOut); got != 1 {
		t.Errorf("FadeOut component = %v after stop, want reset to 1", got)
	}
}

func TestHandle_FadeOutPausedStopsAtOnce(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandle(t, true)
	h.Play("a.ogg", 1, 1, 0, false)
	h.Pause()
	h.FadeOut(time.Hour)

	if h.State() != audio.Stopped {
		t.Errorf("State() = %v, want stopped", h.State())
	}
}

func TestHandle_FadeOutIgnoredWhileFading(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandle(t, true)
	h.Play("a.ogg", 1, 1, 0, false)

	h.FadeOut(time.Hour)
	h.FadeOut(0)

	if h.State() != audio.Playing {
		t.Errorf("second FadeOut overrode the first: %v", h.State())
	}
}

func TestHandle_FadeOutStopped(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandle(t, true)
	h.FadeOut(time.Millisecond)

	if h.State() != audio.Stopped {
		t.Errorf("State() = %v, want stopped", h.State())
	}
}

func TestHandle_Crossfade(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)
	h.Play("day.ogg", 1, 1, 0, false)

	if !h.Crossfade("night.ogg", 20*time.Millisecond, 0.5, 1, 0) {
		t.Fatal("Crossfade() = false")
	}

	day, night := voiceFor(be, "day.ogg"), voiceFor(be, "night.ogg")
	if day == nil || night == nil {
		t.Fatal("crossfade did not use two voices")
	}
	if len(be.Playing()) != 2 {
		t.Errorf("%d voices playing during crossfade, want 2", len(be.Playing()))
	}

	audiotest.Eventually(t, time.Second, func() bool {
		return day.State() == audio.Stopped && h.Volume(FadeIn) == 1
	}, "crossfade never completed")

	if night.State() != audio.Playing {
		t.Errorf("incoming voice %v, want playing", night.State())
	}
	if !near(night.Gain(), 0.5) {
		t.Errorf("incoming gain = %v, want 0.5", night.Gain())
	}
}

func TestHandle_CrossfadeOverCrossfade(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)
	h.Play("a.ogg", 1, 1, 0, false)
	h.Crossfade("b.ogg", time.Hour, 1, 1, 0)
	h.Crossfade("c.ogg", time.Hour, 1, 1, 0)

	a, b, c := voiceFor(be, "a.ogg"), voiceFor(be, "b.ogg"), voiceFor(be, "c.ogg")
	if a == nil || b == nil || c == nil {
		t.Fatal("each crossfade target needs its own voice")
	}
	for name, v := range map[string]*audiotest.Voice{"a": a, "b": b, "c": c} {
		if v.State() != audio.Playing {
			t.Errorf("%s = %v, want playing", name, v.State())
		}
	}
	if a.Gain() <= 0 {
		t.Error("first outgoing voice cut off by the second crossfade")
	}
}

func TestHandle_CrossfadeTailsFinish(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)
	h.Play("a.ogg", 1, 1, 0, false)
	h.Crossfade("b.ogg", 30*time.Millisecond, 1, 1, 0)
	h.Crossfade("c.ogg", 10*time.Millisecond, 1, 1, 0)

	a, b := voiceFor(be, "a.ogg"), voiceFor(be, "b.ogg")
	audiotest.Eventually(t, time.Second, func() bool {
		return a.State() == audio.Stopped && b.State() == audio.Stopped
	}, "outgoing voices never finished fading")

	if got := len(be.Playing()); got != 1 {
		t.Errorf("%d voices playing after the crossfades, want 1", got)
	}

	h.Crossfade("d.ogg", 10*time.Millisecond, 1, 1, 0)
	if got := len(be.Voices()); got != 3 {
		t.Errorf("%d voices allocated, want idle voices reused (3)", got)
	}
}

func TestHandle_CrossfadeFromSilence(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)

	if !h.Crossfade("a.ogg", 10*time.Millisecond, 1, 1, 0) {
		t.Fatal("Crossfade() = false")
	}
	if len(be.Playing()) != 1 {
		t.Errorf("%d voices playing, want 1", len(be.Playing()))
	}
}

func TestHandle_CrossfadeMissingKeepsFadingOut(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)
	be.Fail("gone.ogg")
	h.Play("a.ogg", 1, 1, 0, false)

	if h.Crossfade("gone.ogg", 10*time.Millisecond, 1, 1, 0) {
		t.Error("Crossfade() = true, want false")
	}

	a := voiceFor(be, "a.ogg")
	audiotest.Eventually(t, time.Second, func() bool {
		return a.State() == audio.Stopped
	}, "old voice kept playing")
}

func TestHandle_GainComposition(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)
	h.Play("a.ogg", 0.5, 1, 0, false)
	h.SetVolume(External, 0.5)

	v := voiceFor(be, "a.ogg")
	if !near(v.Gain(), 0.25) {
		t.Errorf("gain = %v, want 0.25", v.Gain())
	}

	h.SetVolume(External, 7)
	if got := h.Volume(External); got != 1 {
		t.Errorf("External = %v, want clamped to 1", got)
	}
	h.SetVolume(Base, -1)
	if got := h.Volume(Base); got != 0 {
		t.Errorf("Base = %v, want clamped to 0", got)
	}
}

func TestHandle_PauseResume(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)
	h.Play("a.ogg", 1, 1, 0, false)

	h.Pause()
	if h.State() != audio.Paused {
		t.Fatalf("State() = %v, want paused", h.State())
	}

	h.Resume()
	if h.State() != audio.Playing {
		t.Errorf("State() = %v, want playing", h.State())
	}
	if got := voiceFor(be, "a.ogg").Starts(); got != 1 {
		t.Errorf("resume restarted the voice (%d starts)", got)
	}
}

func TestHandle_FilterEffect(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)
	h.SetFilter(3)
	h.SetEffect(9)

	for _, v := range be.Voices() {
		if v.Filter() != 3 || v.Effect() != 9 {
			t.Errorf("voice filter/effect = %d/%d, want 3/9", v.Filter(), v.Effect())
		}
	}
	if h.Filter() != 3 || h.Effect() != 9 {
		t.Errorf("handle filter/effect = %d/%d", h.Filter(), h.Effect())
	}

	h.SetFilter(audio.NullFilter)
	if h.Filter() != audio.NullFilter {
		t.Error("filter not cleared")
	}
}

func TestHandle_Close(t *testing.T) {
	t.Parallel()

	h, be := newTestHandle(t, true)
	h.Play("a.ogg", 1, 1, 0, false)
	h.FadeOut(time.Hour)

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	for _, v := range be.Voices() {
		if !v.Closed() {
			t.Error("voice not closed")
		}
	}
}

func TestVolumeKind_String(t *testing.T) {
	t.Parallel()

	for kind, want := range map[VolumeKind]string{
		Base: "base", FadeOut: "fade-out", FadeIn: "fade-in", External: "external", 42: "unknown",
	} {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}

func BenchmarkHandle_LockedVolume(b *testing.B) {
	h := New(audiotest.NewBackend(), Options{Log: zerolog.Nop()})
	defer h.Close()

	for b.Loop() {
		tx := h.Lock()
		tx.SetVolume(External, tx.Volume(External)*0.99)
		tx.Unlock()
	}
}
