// Package remote plays streamed videos through a long-lived external mpv
// process driven over its JSON IPC socket.
//
// The player is spawned lazily on first use and becomes ready once, when
// the socket connects. Until then at most one arm request is retained (the
// latest wins); readiness replays it once, and a bounded grace period turns
// a player that never comes up into a playback error.
package remote

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/mlouvel/playdeck/internal/backend"
)

const (
	defaultBinary = "mpv"
	defaultGrace  = 10 * time.Second

	watchURLFormat = "https://www.youtube.com/watch?v=%s"
)

// Config controls how the external player is run.
type Config struct {
	Binary string        // player binary, default "mpv"
	Socket string        // IPC socket path, default under os.TempDir
	Grace  time.Duration // readiness grace period, default 10s
}

type pendingArm struct {
	gen uint64
	ref string
}

// Adapter is the remote playback backend.
type Adapter struct {
	mu sync.Mutex

	cfg     Config
	emitter *backend.Emitter

	started bool
	ready   bool
	closed  bool

	cmd  *exec.Cmd
	conn io.WriteCloser

	gen          uint64
	pending      *pendingArm
	graceTimer   *time.Timer
	metadataSent bool

	position float64
	duration float64
	volume   float64

	// startFn spawns the player and begins connecting; replaced in tests.
	startFn func() error
}

// New creates a remote backend. The external player is not spawned until
// the first Arm call.
func New(cfg Config) *Adapter {
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.Socket == "" {
		cfg.Socket = fmt.Sprintf("%s/playdeck-mpv-%d.sock", os.TempDir(), os.Getpid())
	}
	if cfg.Grace <= 0 {
		cfg.Grace = defaultGrace
	}
	a := &Adapter{
		cfg:     cfg,
		emitter: backend.NewEmitter(),
		volume:  1.0,
	}
	a.startFn = a.launch
	return a
}

// Arm requests playback of the given video id. Before readiness the request
// is queued (latest wins) and ErrNotReady is returned; the queued request is
// replayed once when the player connects, or abandoned with an error event
// when the grace period expires.
func (a *Adapter) Arm(gen uint64, ref string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return backend.ErrClosed
	}
	a.gen = gen
	a.metadataSent = false

	if !a.ready {
		a.pending = &pendingArm{gen: gen, ref: ref}
		if !a.started {
			a.started = true
			if err := a.startFn(); err != nil {
				a.pending = nil
				return fmt.Errorf("%w: %v", backend.ErrUnavailable, err)
			}
		}
		a.resetGraceLocked(gen)
		return backend.ErrNotReady
	}

	a.loadLocked(ref)
	return nil
}

// resetGraceLocked restarts the readiness grace timer for the given
// generation. An expiring timer only abandons the request it was armed for.
func (a *Adapter) resetGraceLocked(gen uint64) {
	if a.graceTimer != nil {
		a.graceTimer.Stop()
	}
	a.graceTimer = time.AfterFunc(a.cfg.Grace, func() {
		a.mu.Lock()
		expired := !a.ready && !a.closed && a.pending != nil && a.pending.gen == gen
		if expired {
			a.pending = nil
		}
		a.mu.Unlock()
		if expired {
			a.emitter.Emit(backend.Event{
				Kind: backend.EventError,
				Gen:  gen,
				Err:  backend.ErrUnavailable,
			})
		}
	})
}

// loadLocked issues the actual load command for an armed reference.
func (a *Adapter) loadLocked(ref string) {
	a.position = 0
	a.duration = 0
	a.sendLocked("loadfile", fmt.Sprintf(watchURLFormat, ref), "replace")
	a.sendLocked("set_property", "pause", false)
	a.sendLocked("set_property", "volume", a.volume*100)
}

// markReady flips the adapter to ready and replays the pending arm, if any.
func (a *Adapter) markReady() {
	a.mu.Lock()
	if a.closed || a.ready {
		a.mu.Unlock()
		return
	}
	a.ready = true
	if a.graceTimer != nil {
		a.graceTimer.Stop()
		a.graceTimer = nil
	}
	p := a.pending
	a.pending = nil
	if p != nil && p.gen == a.gen {
		a.loadLocked(p.ref)
	}
	a.mu.Unlock()
}

// Disarm stops playback but keeps the player process attached: it is a
// singleton long-lived adapter, not torn down per track.
func (a *Adapter) Disarm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = nil
	if a.graceTimer != nil {
		a.graceTimer.Stop()
		a.graceTimer = nil
	}
	if a.ready {
		a.sendLocked("stop")
	}
	a.position = 0
	a.duration = 0
}

// Pause pauses playback. No-op before ready.
func (a *Adapter) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		a.sendLocked("set_property", "pause", true)
	}
}

// Resume resumes playback. No-op before ready.
func (a *Adapter) Resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		a.sendLocked("set_property", "pause", false)
	}
}

// Seek moves playback to the given absolute position. No-op before ready.
func (a *Adapter) Seek(seconds float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		a.sendLocked("seek", seconds, "absolute")
	}
}

// SetVolume sets the player volume. The level is retained for when the
// player comes up.
func (a *Adapter) SetVolume(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	a.volume = v
	if a.ready {
		a.sendLocked("set_property", "volume", v*100)
	}
}

// Position returns the last observed position in seconds.
func (a *Adapter) Position() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position
}

// Duration returns the last observed duration in seconds, 0 = unknown.
func (a *Adapter) Duration() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration
}

// Events returns the adapter's event channel.
func (a *Adapter) Events() <-chan backend.Event {
	return a.emitter.Events()
}

// Close shuts down the player process and the IPC connection.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.pending = nil
	if a.graceTimer != nil {
		a.graceTimer.Stop()
	}
	if a.ready {
		a.sendLocked("quit")
	}
	conn := a.conn
	cmd := a.cmd
	a.conn = nil
	a.ready = false
	a.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if cmd != nil && cmd.Process != nil {
		// Give the quit command a moment before forcing the issue.
		done := make(chan struct{})
		go func() {
			cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			cmd.Process.Kill()
		}
	}
	os.Remove(a.cfg.Socket)
	return nil
}

// Verify Adapter implements Backend at compile time.
var _ backend.Backend = (*Adapter)(nil)
