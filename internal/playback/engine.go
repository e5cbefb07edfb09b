package playback

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mlouvel/playdeck/internal/backend"
)

const (
	// defaultVolume is used at startup and as the unmute fallback when no
	// previous non-zero volume is known.
	defaultVolume = 0.7

	// armRetryDelay is how long to wait before retrying an arm that the
	// backend reported as not ready yet. One retry only; after that the
	// backend's own readiness handling takes over.
	armRetryDelay = time.Second
)

var errNoQueue = errors.New("playback: no queue bound")

// Engine drives playback across the two media backends. At any moment at
// most one backend is armed; switching tracks always disarms the previous
// backend before arming the next one. Every arm carries a generation
// number, and backend events from a superseded generation are discarded.
type Engine struct {
	mu sync.Mutex

	local  backend.Backend
	remote backend.Backend
	queue  QueueSource

	gen        uint64
	state      State
	track      *Track
	index      int
	activeKind backend.Kind

	shuffle bool
	repeat  RepeatMode
	volume  float64
	prevVol float64 // last non-zero volume, restored on unmute

	intn       func(int) int
	retryDelay time.Duration

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// New creates an engine over the two backends and starts its event pump.
// The caller retains ownership of the backends and closes them after the
// engine.
func New(local, remote backend.Backend) *Engine {
	e := &Engine{
		local:      local,
		remote:     remote,
		index:      -1,
		state:      StateStopped,
		volume:     defaultVolume,
		prevVol:    defaultVolume,
		intn:       rand.IntN,
		retryDelay: armRetryDelay,
		done:       make(chan struct{}),
	}
	go e.run()
	return e
}

// SetQueue binds the queue used for navigation. The queue may mutate
// concurrently; indices are re-validated on every navigation.
func (e *Engine) SetQueue(q QueueSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = q
}

// run pumps backend events into the engine until Close.
func (e *Engine) run() {
	for {
		select {
		case <-e.done:
			return
		case ev := <-e.local.Events():
			e.handleBackendEvent(backend.KindLocal, ev)
		case ev := <-e.remote.Events():
			e.handleBackendEvent(backend.KindRemote, ev)
		}
	}
}

// Play starts playback of track, which the caller located at index in the
// bound queue.
func (e *Engine) Play(track Track, index int) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if e.queue == nil {
		e.mu.Unlock()
		e.publishError(ErrorEvent{TrackID: track.ID, Category: CategoryInvalidState, Err: errNoQueue})
		return
	}
	after := e.startTrackLocked(track, index)
	e.mu.Unlock()
	after()
}

// startTrackLocked disarms whatever is armed, arms the backend for track
// and returns the events to publish once the lock is released.
func (e *Engine) startTrackLocked(track Track, index int) func() {
	prevTrack := e.track
	prevIndex := e.index
	prevState := e.state

	e.disarmActiveLocked()
	e.gen++
	gen := e.gen

	t := track
	e.track = &t
	e.index = index
	e.activeKind = t.Source.BackendKind()
	e.state = StateLoading

	b := e.activeBackendLocked()
	b.SetVolume(e.volume)
	err := b.Arm(gen, t.Source.Ref())

	var after func()
	switch {
	case err == nil:
	case errors.Is(err, backend.ErrNotReady):
		ref := t.Source.Ref()
		time.AfterFunc(e.retryDelay, func() { e.retryArm(gen, b, ref) })
	default:
		after = e.failLocked(err)
	}

	tc := TrackChange{Previous: prevTrack, Current: t, PreviousIndex: prevIndex, Index: index}
	return func() {
		e.publishTrack(tc)
		if prevState != StateLoading {
			e.publishState(StateChange{Previous: prevState, Current: StateLoading})
		}
		if after != nil {
			after()
		}
	}
}

// retryArm retries a not-ready arm once, unless the generation has been
// superseded in the meantime.
func (e *Engine) retryArm(gen uint64, b backend.Backend, ref string) {
	e.mu.Lock()
	if e.closed || e.gen != gen || e.state != StateLoading {
		e.mu.Unlock()
		return
	}
	err := b.Arm(gen, ref)
	var after func()
	if err != nil && !errors.Is(err, backend.ErrNotReady) {
		after = e.failLocked(err)
	}
	e.mu.Unlock()
	if after != nil {
		after()
	}
}

// Stop halts playback. The local backend is fully disarmed, releasing its
// transient handle; the remote backend is merely paused and stays
// attached. Idempotent, and safe with nothing playing.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	prev := e.state
	switch {
	case e.activeKind == backend.KindLocal:
		e.gen++
		e.disarmActiveLocked()
	case e.activeKind == backend.KindRemote && e.state == StateLoading:
		// A pending load must not start playing after the user stopped.
		e.gen++
		e.disarmActiveLocked()
	case e.activeKind == backend.KindRemote:
		e.remote.Pause()
	}
	e.state = StatePaused
	e.mu.Unlock()

	if prev != StatePaused {
		e.publishState(StateChange{Previous: prev, Current: StatePaused})
	}
}

// TogglePlayPause pauses or resumes the current track. No-op with no
// current track or while loading. Resuming a track whose backend was
// disarmed by Stop re-arms it.
func (e *Engine) TogglePlayPause() {
	e.mu.Lock()
	if e.closed || e.track == nil {
		e.mu.Unlock()
		return
	}
	var after func()
	switch e.state {
	case StatePlaying:
		if b := e.activeBackendLocked(); b != nil {
			b.Pause()
		}
		prev := e.state
		e.state = StatePaused
		after = func() {
			e.publishState(StateChange{Previous: prev, Current: StatePaused})
		}
	case StatePaused:
		if e.activeKind == backend.KindNone {
			after = e.startTrackLocked(*e.track, e.index)
		} else {
			e.activeBackendLocked().Resume()
			prev := e.state
			e.state = StatePlaying
			after = func() {
				e.publishState(StateChange{Previous: prev, Current: StatePlaying})
			}
		}
	}
	e.mu.Unlock()
	if after != nil {
		after()
	}
}

// Next advances to the next track per shuffle and repeat mode. At the end
// of the queue without repeat-all, playback pauses in place and the index
// does not move.
func (e *Engine) Next() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	after := e.advanceLocked(true)
	e.mu.Unlock()
	if after != nil {
		after()
	}
}

// advanceLocked moves to the next track and returns the events to publish.
// pauseOnHalt pauses the armed backend when the queue halts; automatic
// advance on track end skips that since the media already finished.
func (e *Engine) advanceLocked(pauseOnHalt bool) func() {
	if e.queue == nil {
		return nil
	}
	length := e.queue.Len()
	if length == 0 {
		return nil
	}
	cur := e.index
	if cur >= length {
		cur = length - 1
	}
	idx, ok := nextIndex(length, cur, e.shuffle, e.repeat, e.intn)
	if !ok {
		if pauseOnHalt && e.activeKind != backend.KindNone {
			e.activeBackendLocked().Pause()
		}
		prev := e.state
		e.state = StatePaused
		if prev == StatePaused {
			return nil
		}
		return func() {
			e.publishState(StateChange{Previous: prev, Current: StatePaused})
		}
	}
	t, ok := e.queue.Track(idx)
	if !ok {
		return nil
	}
	return e.startTrackLocked(t, idx)
}

// Previous moves to the previous track, wrapping from the first track to
// the last.
func (e *Engine) Previous() {
	e.mu.Lock()
	if e.closed || e.queue == nil {
		e.mu.Unlock()
		return
	}
	idx, ok := prevIndex(e.queue.Len(), e.index)
	if !ok {
		e.mu.Unlock()
		return
	}
	t, ok := e.queue.Track(idx)
	if !ok {
		e.mu.Unlock()
		return
	}
	after := e.startTrackLocked(t, idx)
	e.mu.Unlock()
	after()
}

// Seek moves playback to fraction (0..1) of the track duration. No-op
// while the duration is unknown or nothing is armed.
func (e *Engine) Seek(fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	e.mu.Lock()
	if e.closed || e.activeKind == backend.KindNone {
		e.mu.Unlock()
		return
	}
	b := e.activeBackendLocked()
	dur := b.Duration()
	if dur <= 0 && e.track != nil {
		dur = float64(e.track.Duration)
	}
	if dur <= 0 {
		e.mu.Unlock()
		return
	}
	pos := dur * fraction
	b.Seek(pos)
	e.mu.Unlock()

	e.publishProgress(Progress{Position: pos, Duration: dur})
}

// SetVolume sets the volume, clamped to 0..1, and applies it to the armed
// backend. Non-zero values are remembered for unmute.
func (e *Engine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.volume = v
	if v > 0 {
		e.prevVol = v
	}
	if b := e.activeBackendLocked(); b != nil {
		b.SetVolume(v)
	}
	e.mu.Unlock()

	e.publishVolume(VolumeChange{Volume: v, Muted: v == 0})
}

// ToggleMute mutes, or restores the last non-zero volume.
func (e *Engine) ToggleMute() {
	e.mu.Lock()
	target := 0.0
	if e.volume == 0 {
		target = e.prevVol
		if target <= 0 {
			target = defaultVolume
		}
	}
	e.mu.Unlock()
	e.SetVolume(target)
}

// SetShuffle enables or disables shuffle.
func (e *Engine) SetShuffle(enabled bool) {
	e.mu.Lock()
	if e.shuffle == enabled {
		e.mu.Unlock()
		return
	}
	e.shuffle = enabled
	mc := ModeChange{Repeat: e.repeat, Shuffle: e.shuffle}
	e.mu.Unlock()
	e.publishMode(mc)
}

// ToggleShuffle flips shuffle and returns the new value.
func (e *Engine) ToggleShuffle() bool {
	e.mu.Lock()
	e.shuffle = !e.shuffle
	enabled := e.shuffle
	mc := ModeChange{Repeat: e.repeat, Shuffle: e.shuffle}
	e.mu.Unlock()
	e.publishMode(mc)
	return enabled
}

// SetRepeatMode sets the repeat mode.
func (e *Engine) SetRepeatMode(m RepeatMode) {
	e.mu.Lock()
	if e.repeat == m {
		e.mu.Unlock()
		return
	}
	e.repeat = m
	mc := ModeChange{Repeat: e.repeat, Shuffle: e.shuffle}
	e.mu.Unlock()
	e.publishMode(mc)
}

// CycleRepeatMode rotates Off -> All -> One -> Off and returns the new
// mode.
func (e *Engine) CycleRepeatMode() RepeatMode {
	e.mu.Lock()
	e.repeat = e.repeat.Cycle()
	m := e.repeat
	mc := ModeChange{Repeat: e.repeat, Shuffle: e.shuffle}
	e.mu.Unlock()
	e.publishMode(mc)
	return m
}

// handleBackendEvent applies one backend event. Events from a backend
// that is not the armed one, or from a superseded generation, are
// discarded.
func (e *Engine) handleBackendEvent(kind backend.Kind, ev backend.Event) {
	e.mu.Lock()
	if e.closed || kind != e.activeKind || ev.Gen != e.gen {
		e.mu.Unlock()
		return
	}

	var after func()
	switch ev.Kind {
	case backend.EventReady:
		prev := e.state
		e.state = StatePlaying
		if prev != StatePlaying {
			after = func() {
				e.publishState(StateChange{Previous: prev, Current: StatePlaying})
			}
		}

	case backend.EventMetadata:
		if e.track != nil && e.track.Duration == 0 && ev.Duration > 0 {
			secs := int(ev.Duration + 0.5)
			e.track.Duration = secs
			dc := DurationChange{TrackID: e.track.ID, Seconds: secs}
			after = func() { e.publishDuration(dc) }
		}

	case backend.EventTimeUpdate:
		dur := ev.Duration
		if dur <= 0 && e.track != nil {
			dur = float64(e.track.Duration)
		}
		p := Progress{Position: ev.Position, Duration: dur}
		after = func() { e.publishProgress(p) }

	case backend.EventStateChange:
		prev := e.state
		next := StatePaused
		if ev.Playing {
			next = StatePlaying
		}
		e.state = next
		if next != prev {
			after = func() {
				e.publishState(StateChange{Previous: prev, Current: next})
			}
		}

	case backend.EventEnded:
		after = e.endedLocked()

	case backend.EventError:
		after = e.failLocked(ev.Err)
	}
	e.mu.Unlock()

	if after != nil {
		after()
	}
}

// endedLocked handles a track finishing on its own. Repeat-one replays
// the same track on the same backend without rearming; otherwise the
// queue advances.
func (e *Engine) endedLocked() func() {
	if e.repeat == RepeatOne {
		b := e.activeBackendLocked()
		prev := e.state
		e.state = StatePlaying
		b.Seek(0)
		b.Resume()
		if prev == StatePlaying {
			return nil
		}
		return func() {
			e.publishState(StateChange{Previous: prev, Current: StatePlaying})
		}
	}
	return e.advanceLocked(false)
}

// failLocked moves the engine to a safe paused state with no armed
// backend and returns the events to publish.
func (e *Engine) failLocked(err error) func() {
	cat := categorize(err)
	var trackID string
	if e.track != nil {
		trackID = e.track.ID
	}
	e.gen++
	e.disarmActiveLocked()
	prev := e.state
	e.state = StatePaused
	ev := ErrorEvent{TrackID: trackID, Category: cat, Err: err}
	return func() {
		if prev != StatePaused {
			e.publishState(StateChange{Previous: prev, Current: StatePaused})
		}
		e.publishError(ev)
	}
}

// disarmActiveLocked releases whichever backend is armed.
func (e *Engine) disarmActiveLocked() {
	switch e.activeKind {
	case backend.KindLocal:
		e.local.Disarm()
	case backend.KindRemote:
		e.remote.Disarm()
	}
	e.activeKind = backend.KindNone
}

func (e *Engine) activeBackendLocked() backend.Backend {
	switch e.activeKind {
	case backend.KindLocal:
		return e.local
	case backend.KindRemote:
		return e.remote
	default:
		return nil
	}
}

// State returns the current playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsPlaying returns true while a track is playing.
func (e *Engine) IsPlaying() bool {
	return e.State() == StatePlaying
}

// CurrentTrack returns a copy of the current track, or nil if none.
func (e *Engine) CurrentTrack() *Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return nil
	}
	t := *e.track
	return &t
}

// CurrentIndex returns the current queue index (-1 if none).
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// Shuffle returns whether shuffle is enabled.
func (e *Engine) Shuffle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shuffle
}

// RepeatMode returns the current repeat mode.
func (e *Engine) RepeatMode() RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repeat
}

// Volume returns the current volume in 0..1.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Muted returns true while the volume is zero.
func (e *Engine) Muted() bool {
	return e.Volume() == 0
}

// PreviousVolume returns the volume an unmute would restore.
func (e *Engine) PreviousVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prevVol
}

// Position returns the current position in seconds, 0 with nothing armed.
func (e *Engine) Position() float64 {
	e.mu.Lock()
	b := e.activeBackendLocked()
	e.mu.Unlock()
	if b == nil {
		return 0
	}
	return b.Position()
}

// Duration returns the current track duration in seconds, falling back to
// the track's known duration before the backend reports one.
func (e *Engine) Duration() float64 {
	e.mu.Lock()
	b := e.activeBackendLocked()
	var known float64
	if e.track != nil {
		known = float64(e.track.Duration)
	}
	e.mu.Unlock()
	if b != nil {
		if d := b.Duration(); d > 0 {
			return d
		}
	}
	return known
}

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Unsubscribe removes a subscription and closes its done channel.
func (e *Engine) Unsubscribe(sub *Subscription) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for i, s := range e.subs {
		if s == sub {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// Close shuts the engine down, releasing any transient handle held by the
// local backend. The backends themselves stay open for their owner to
// close.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.gen++
	e.disarmActiveLocked()
	e.mu.Unlock()
	close(e.done)

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()
	return nil
}

func (e *Engine) publishState(ev StateChange) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, s := range e.subs {
		s.sendState(ev)
	}
}

func (e *Engine) publishTrack(ev TrackChange) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, s := range e.subs {
		s.sendTrack(ev)
	}
}

func (e *Engine) publishProgress(ev Progress) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, s := range e.subs {
		s.sendProgress(ev)
	}
}

func (e *Engine) publishDuration(ev DurationChange) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, s := range e.subs {
		s.sendDuration(ev)
	}
}

func (e *Engine) publishMode(ev ModeChange) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, s := range e.subs {
		s.sendMode(ev)
	}
}

func (e *Engine) publishVolume(ev VolumeChange) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, s := range e.subs {
		s.sendVolume(ev)
	}
}

func (e *Engine) publishError(ev ErrorEvent) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, s := range e.subs {
		s.sendError(ev)
	}
}
