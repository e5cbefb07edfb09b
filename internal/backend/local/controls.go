package local

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2/effects"
)

// Pause pauses playback. No-op before ready.
func (a *Adapter) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.armed || a.ctrl == nil {
		return
	}
	a.out.lock()
	a.ctrl.Paused = true
	a.out.unlock()
}

// Resume resumes paused playback. No-op before ready. If the stream has
// run to its end, Resume restarts it from zero on the same handle.
func (a *Adapter) Resume() {
	a.mu.Lock()
	if !a.armed || a.ctrl == nil {
		a.mu.Unlock()
		return
	}
	if a.drained.Load() {
		a.drained.Store(false)
		a.out.lock()
		_ = a.streamer.Seek(0)
		a.ctrl.Paused = false
		a.out.unlock()
		gen := a.gen.Load()
		a.mu.Unlock()
		a.attach(gen)
		return
	}
	a.out.lock()
	a.ctrl.Paused = false
	a.out.unlock()
	a.mu.Unlock()
}

// Seek moves playback to the given absolute position. No-op before ready.
func (a *Adapter) Seek(seconds float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.armed || a.streamer == nil {
		return
	}

	target := a.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if target < 0 {
		target = 0
	}
	if max := a.streamer.Len(); target > max {
		target = max
	}

	a.out.lock()
	_ = a.streamer.Seek(target)
	a.out.unlock()
}

// SetVolume sets the playback volume. The level is retained across arms.
func (a *Adapter) SetVolume(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	a.volumeLevel = v
	if a.volume != nil {
		a.out.lock()
		applyVolume(a.volume, v)
		a.out.unlock()
	}
}

// Position returns the current position in seconds, 0 before ready.
func (a *Adapter) Position() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positionLocked()
}

func (a *Adapter) positionLocked() float64 {
	if a.streamer == nil {
		return 0
	}
	return a.format.SampleRate.D(a.streamer.Position()).Seconds()
}

// Duration returns the media duration in seconds, 0 before ready.
func (a *Adapter) Duration() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.durationLocked()
}

func (a *Adapter) durationLocked() float64 {
	if a.streamer == nil {
		return 0
	}
	return a.format.SampleRate.D(a.streamer.Len()).Seconds()
}

// applyVolume maps a linear 0..1 level onto beep's base-2 logarithmic
// volume: 1.0 -> 0, 0.5 -> -1, 0.25 -> -2. Zero mutes outright.
func applyVolume(v *effects.Volume, level float64) {
	if level <= 0 {
		v.Silent = true
		return
	}
	v.Silent = false
	if level >= 1 {
		v.Volume = 0
		return
	}
	v.Volume = math.Log2(level)
}
