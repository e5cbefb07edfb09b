// Package local plays content-addressed media blobs through an in-process
// decoder pipeline.
//
// Arming resolves the blob from the store into an exclusively-owned temp
// file (the transient handle), decodes it, and attaches the speaker.
// Disarming revokes the handle; the two always pair, so no handle survives
// a disarm, an error, or a superseding arm.
package local

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/mlouvel/playdeck/internal/backend"
	"github.com/mlouvel/playdeck/internal/blobstore"
)

const timeUpdateInterval = 500 * time.Millisecond

// Store is the part of the blob store the adapter needs.
type Store interface {
	Get(id string) (io.ReadCloser, int64, error)
}

// output is the playback device. The speaker implementation is process-wide;
// tests substitute one that drains streams synchronously.
type output interface {
	// init opens the device at the preferred rate and reports the rate the
	// device actually runs at. Repeated calls return the first outcome.
	init(preferred beep.SampleRate) (beep.SampleRate, error)
	play(s beep.Streamer)
	clear()
	lock()
	unlock()
}

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

type speakerOutput struct{}

func (speakerOutput) init(preferred beep.SampleRate) (beep.SampleRate, error) {
	speakerOnce.Do(func() {
		speakerRate = preferred
		speakerErr = speaker.Init(preferred, preferred.N(time.Second/10))
	})
	return speakerRate, speakerErr
}

func (speakerOutput) play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) clear()               { speaker.Clear() }
func (speakerOutput) lock()                { speaker.Lock() }
func (speakerOutput) unlock()              { speaker.Unlock() }

// Adapter is the local playback backend.
type Adapter struct {
	mu sync.Mutex

	store   Store
	out     output
	emitter *backend.Emitter

	// gen and drained are read by the end-of-stream callback, which runs
	// inside the output's sample loop with its mutex held and therefore
	// must never take a.mu (control ops hold a.mu across output calls).
	gen     atomic.Uint64
	drained atomic.Bool // stream ran to its end; Resume restarts from zero

	armed  bool
	closed bool

	handlePath string   // temp file owning the blob copy; "" when disarmed
	handleFile *os.File // stays open while armed: the decoder reads from it lazily
	streamer   beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	volume     *effects.Volume

	volumeLevel float64
}

// New creates a local backend backed by the given blob store.
func New(store Store) *Adapter {
	return &Adapter{
		store:       store,
		out:         speakerOutput{},
		emitter:     backend.NewEmitter(),
		volumeLevel: 1.0,
	}
}

// Arm asynchronously resolves ref from the store and starts playback.
// A later Arm or a Disarm supersedes the resolution in flight; its result
// is discarded and its temp file removed.
func (a *Adapter) Arm(gen uint64, ref string) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return backend.ErrClosed
	}
	a.gen.Store(gen)
	a.mu.Unlock()

	go func() {
		res, err := a.resolve(ref)
		a.completeArm(gen, res, err)
	}()
	return nil
}

// armResult holds a resolved, decoded blob not yet attached to the speaker.
type armResult struct {
	path     string
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
}

// release revokes the transient handle of an unused result.
func (r *armResult) release() {
	if r == nil {
		return
	}
	if r.streamer != nil {
		r.streamer.Close()
	}
	if r.file != nil {
		r.file.Close()
	}
	if r.path != "" {
		os.Remove(r.path)
	}
}

// resolve copies the blob to a temp file and decodes it. All-or-nothing:
// on error no temp file survives.
func (a *Adapter) resolve(ref string) (*armResult, error) {
	blob, _, err := a.store.Get(ref)
	if err != nil {
		if err == blobstore.ErrNotFound {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}
	defer blob.Close()

	tmp, err := os.CreateTemp("", "playdeck-media-*")
	if err != nil {
		return nil, err
	}
	res := &armResult{path: tmp.Name(), file: tmp}

	if _, err := io.Copy(tmp, blob); err != nil {
		res.release()
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		res.release()
		return nil, err
	}

	streamer, format, err := decode(tmp)
	if err != nil {
		res.release()
		return nil, fmt.Errorf("%w: %v", backend.ErrUnsupportedMedia, err)
	}
	res.streamer = streamer
	res.format = format
	return res, nil
}

// completeArm applies a finished resolution if its generation is still the
// current one; otherwise the result is discarded.
func (a *Adapter) completeArm(gen uint64, res *armResult, err error) {
	a.mu.Lock()
	if a.closed || a.gen.Load() != gen {
		a.mu.Unlock()
		res.release()
		return
	}
	if err != nil {
		a.mu.Unlock()
		a.emitter.Emit(backend.Event{Kind: backend.EventError, Gen: gen, Err: err})
		return
	}

	a.detachLocked()
	a.handlePath = res.path
	a.handleFile = res.file // decoder reads lazily; closed on detach
	a.streamer = res.streamer
	a.format = res.format

	duration := res.format.SampleRate.D(res.streamer.Len()).Seconds()

	a.ctrl = &beep.Ctrl{Streamer: res.streamer}
	a.volume = &effects.Volume{Streamer: a.ctrl, Base: 2}
	applyVolume(a.volume, a.volumeLevel)
	a.armed = true
	a.drained.Store(false)
	a.mu.Unlock()

	a.emitter.Emit(backend.Event{Kind: backend.EventMetadata, Gen: gen, Duration: duration})
	a.emitter.Emit(backend.Event{Kind: backend.EventReady, Gen: gen})

	a.attach(gen)
	go a.timeUpdateLoop(gen)
}

// attach hands the decoded stream to the output and starts playback.
// An output that cannot be opened fails the arm: the handle is revoked
// and the failure surfaces as an error event for the generation.
func (a *Adapter) attach(gen uint64) {
	a.mu.Lock()
	if a.closed || a.gen.Load() != gen || !a.armed {
		a.mu.Unlock()
		return
	}

	rate, err := a.out.init(a.format.SampleRate)
	if err != nil {
		a.detachLocked()
		a.mu.Unlock()
		a.emitter.Emit(backend.Event{
			Kind: backend.EventError,
			Gen:  gen,
			Err:  fmt.Errorf("%w: %v", backend.ErrUnavailable, err),
		})
		return
	}

	var stream beep.Streamer = a.volume
	if a.format.SampleRate != rate {
		stream = beep.Resample(4, a.format.SampleRate, rate, a.volume)
	}

	a.out.play(beep.Seq(stream, beep.Callback(func() {
		// Runs under the output's mutex: no a.mu here. A bumped
		// generation means a disarm or close already detached us.
		if a.gen.Load() != gen {
			return
		}
		a.drained.Store(true)
		a.emitter.Emit(backend.Event{Kind: backend.EventEnded, Gen: gen})
	})))
	a.mu.Unlock()
}

func (a *Adapter) timeUpdateLoop(gen uint64) {
	ticker := time.NewTicker(timeUpdateInterval)
	defer ticker.Stop()
	for range ticker.C {
		a.mu.Lock()
		if a.closed || a.gen.Load() != gen || !a.armed {
			a.mu.Unlock()
			return
		}
		paused := a.ctrl != nil && a.ctrl.Paused
		pos := a.positionLocked()
		dur := a.durationLocked()
		a.mu.Unlock()

		if !paused {
			a.emitter.Emit(backend.Event{
				Kind:     backend.EventTimeUpdate,
				Gen:      gen,
				Position: pos,
				Duration: dur,
			})
		}
	}
}

// Disarm stops playback and revokes the transient handle. Idempotent, and
// safe to call when never armed.
func (a *Adapter) Disarm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen.Add(1) // invalidates any resolution in flight
	a.detachLocked()
}

func (a *Adapter) detachLocked() {
	if a.armed {
		a.out.clear()
	}
	if a.streamer != nil {
		a.streamer.Close()
		a.streamer = nil
	}
	if a.handleFile != nil {
		a.handleFile.Close()
		a.handleFile = nil
	}
	if a.handlePath != "" {
		os.Remove(a.handlePath)
		a.handlePath = ""
	}
	a.ctrl = nil
	a.volume = nil
	a.armed = false
	a.drained.Store(false)
}

// Events returns the adapter's event channel.
func (a *Adapter) Events() <-chan backend.Event {
	return a.emitter.Events()
}

// Close disarms and shuts the adapter down.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.gen.Add(1)
	a.detachLocked()
	return nil
}

// Verify Adapter implements Backend at compile time.
var _ backend.Backend = (*Adapter)(nil)
