package local

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"github.com/mlouvel/playdeck/internal/backend"
	"github.com/mlouvel/playdeck/internal/blobstore"
)

// testWAV builds a minimal 16-bit PCM mono WAV blob.
func testWAV(samples int) []byte {
	const rate = 8000
	data := make([]byte, samples*2)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func newTestStore(t *testing.T) *blobstore.Store {
	t.Helper()
	s, err := blobstore.OpenAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func putBlob(t *testing.T, s *blobstore.Store, content []byte) string {
	t.Helper()
	id := blobstore.NewID()
	if _, err := s.Put(id, bytes.NewReader(content)); err != nil {
		t.Fatal(err)
	}
	return id
}

// fakeOutput records played streams instead of opening an audio device.
// Its mutex stands in for the speaker mutex: drain holds it across each
// Stream call the way the real sample loop does.
type fakeOutput struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	initErr error
	played  []beep.Streamer
}

func (o *fakeOutput) init(preferred beep.SampleRate) (beep.SampleRate, error) {
	if o.initErr != nil {
		return 0, o.initErr
	}
	if o.rate == 0 {
		o.rate = preferred
	}
	return o.rate, nil
}

func (o *fakeOutput) play(s beep.Streamer) {
	o.mu.Lock()
	o.played = append(o.played, s)
	o.mu.Unlock()
}

func (o *fakeOutput) clear()  {}
func (o *fakeOutput) lock()   { o.mu.Lock() }
func (o *fakeOutput) unlock() { o.mu.Unlock() }

// take waits for the adapter to hand a stream to the output.
func (o *fakeOutput) take(t *testing.T) beep.Streamer {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		o.mu.Lock()
		if len(o.played) > 0 {
			s := o.played[0]
			o.played = o.played[1:]
			o.mu.Unlock()
			return s
		}
		o.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for a stream to reach the output")
	return nil
}

// drain pulls s to its end under the output mutex, like the sample loop.
func (o *fakeOutput) drain(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		o.mu.Lock()
		n, ok := s.Stream(buf)
		o.mu.Unlock()
		total += n
		if !ok {
			return total
		}
	}
}

// armWAV arms the adapter on a fresh WAV blob through a fake output and
// consumes the Metadata and Ready events.
func armWAV(t *testing.T, samples int) (*Adapter, *fakeOutput) {
	t.Helper()
	s := newTestStore(t)
	id := putBlob(t, s, testWAV(samples))
	a := New(s)
	out := &fakeOutput{}
	a.out = out
	t.Cleanup(func() { a.Close() })

	if err := a.Arm(1, id); err != nil {
		t.Fatal(err)
	}
	nextEvent(t, a, backend.EventMetadata)
	nextEvent(t, a, backend.EventReady)
	return a, out
}

// nextEvent waits for an event of the given kind, skipping time updates.
// An error event fails the test.
func nextEvent(t *testing.T, a *Adapter, kind backend.EventKind) backend.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-a.Events():
			if ev.Kind == kind {
				return ev
			}
			if ev.Kind == backend.EventError {
				t.Fatalf("unexpected error event: %v", ev.Err)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v event", kind)
		}
	}
}

func TestResolve_DecodesWAV(t *testing.T) {
	s := newTestStore(t)
	id := putBlob(t, s, testWAV(8000)) // one second
	a := New(s)

	res, err := a.resolve(id)
	if err != nil {
		t.Fatalf("resolve() error: %v", err)
	}
	defer res.release()

	if res.path == "" {
		t.Error("resolve() should create a transient handle")
	}
	if _, err := os.Stat(res.path); err != nil {
		t.Errorf("handle file should exist: %v", err)
	}

	dur := res.format.SampleRate.D(res.streamer.Len()).Seconds()
	if dur < 0.9 || dur > 1.1 {
		t.Errorf("decoded duration = %v, want ~1s", dur)
	}
}

func TestResolve_MissingBlob(t *testing.T) {
	a := New(newTestStore(t))

	res, err := a.resolve("local_absent")
	if res != nil {
		t.Fatal("resolve() should not return a result on error")
	}
	if err != backend.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResolve_CorruptBlob(t *testing.T) {
	s := newTestStore(t)
	id := putBlob(t, s, []byte("definitely not media content at all"))
	a := New(s)

	res, err := a.resolve(id)
	if res != nil {
		t.Fatal("resolve() should not return a result on error")
	}
	if !strings.Contains(err.Error(), backend.ErrUnsupportedMedia.Error()) {
		t.Errorf("err = %v, want ErrUnsupportedMedia", err)
	}
}

func TestRelease_RevokesHandle(t *testing.T) {
	s := newTestStore(t)
	id := putBlob(t, s, testWAV(100))
	a := New(s)

	res, err := a.resolve(id)
	if err != nil {
		t.Fatal(err)
	}
	path := res.path

	res.release()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("handle %s should be removed after release", path)
	}
}

func TestArm_StreamsWholeBlob(t *testing.T) {
	const samples = 8000
	a, out := armWAV(t, samples)

	stream := out.take(t)
	got := out.drain(stream)

	if got != samples {
		t.Fatalf("streamed %d of %d samples", got, samples)
	}

	// The handle must stay readable for the decoder's entire run.
	a.mu.Lock()
	file := a.handleFile
	a.mu.Unlock()
	if file == nil {
		t.Fatal("handle file must stay open while armed")
	}
	if _, err := file.Stat(); err != nil {
		t.Errorf("handle file unusable while armed: %v", err)
	}

	ev := nextEvent(t, a, backend.EventEnded)
	if ev.Gen != 1 {
		t.Errorf("ended event gen = %d, want 1", ev.Gen)
	}
	if !a.drained.Load() {
		t.Error("natural end must mark the stream drained")
	}
}

func TestEndOfStream_NeedsNoAdapterLock(t *testing.T) {
	const samples = 400
	a, out := armWAV(t, samples)
	stream := out.take(t)

	// A control op holds the adapter mutex while it waits on the output;
	// the end-of-stream path must finish without it.
	a.mu.Lock()
	done := make(chan int, 1)
	go func() { done <- out.drain(stream) }()

	select {
	case got := <-done:
		if got != samples {
			t.Errorf("streamed %d of %d samples", got, samples)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream end blocked on the adapter mutex")
	}
	a.mu.Unlock()

	nextEvent(t, a, backend.EventEnded)
}

func TestResumeAfterDrain_ReplaysFromZero(t *testing.T) {
	const samples = 400
	a, out := armWAV(t, samples)

	out.drain(out.take(t))
	nextEvent(t, a, backend.EventEnded)

	a.Resume()

	replay := out.take(t)
	if got := out.drain(replay); got != samples {
		t.Errorf("replay streamed %d of %d samples", got, samples)
	}
	nextEvent(t, a, backend.EventEnded)
}

func TestArm_OutputUnavailable(t *testing.T) {
	s := newTestStore(t)
	id := putBlob(t, s, testWAV(100))
	a := New(s)
	out := &fakeOutput{initErr: errors.New("no audio device")}
	a.out = out
	defer a.Close()

	if err := a.Arm(1, id); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-a.Events():
			if ev.Kind != backend.EventError {
				continue // metadata and ready precede the attach failure
			}
			if ev.Gen != 1 {
				t.Errorf("error event gen = %d, want 1", ev.Gen)
			}
			if !errors.Is(ev.Err, backend.ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", ev.Err)
			}
			a.mu.Lock()
			armed, path := a.armed, a.handlePath
			a.mu.Unlock()
			if armed {
				t.Error("failed attach must disarm the adapter")
			}
			if path != "" {
				t.Error("failed attach must revoke the handle")
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for error event")
		}
	}
}

func TestCompleteArm_StaleGenerationDiscarded(t *testing.T) {
	s := newTestStore(t)
	id := putBlob(t, s, testWAV(100))
	a := New(s)
	a.gen.Store(7) // current generation

	res, err := a.resolve(id)
	if err != nil {
		t.Fatal(err)
	}
	path := res.path

	a.completeArm(6, res, nil) // superseded arm resolving late

	if a.armed {
		t.Error("stale completion must not arm the adapter")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("stale completion must revoke its handle")
	}
	select {
	case ev := <-a.Events():
		t.Errorf("stale completion must not emit events, got %v", ev.Kind)
	default:
	}
}

func TestArm_MissingBlobEmitsNotFound(t *testing.T) {
	a := New(newTestStore(t))

	if err := a.Arm(1, "local_absent"); err != nil {
		t.Fatalf("Arm() error: %v", err)
	}

	select {
	case ev := <-a.Events():
		if ev.Kind != backend.EventError {
			t.Fatalf("event = %v, want Error", ev.Kind)
		}
		if ev.Gen != 1 {
			t.Errorf("event gen = %d, want 1", ev.Gen)
		}
		if ev.Err != backend.ErrNotFound {
			t.Errorf("event err = %v, want ErrNotFound", ev.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error event")
	}
}

func TestArm_AfterCloseReturnsClosed(t *testing.T) {
	a := New(newTestStore(t))
	a.Close()

	if err := a.Arm(1, "local_x"); err != backend.ErrClosed {
		t.Errorf("Arm() after Close = %v, want ErrClosed", err)
	}
}

func TestDisarm_IdempotentAndSafeWhenNeverArmed(t *testing.T) {
	a := New(newTestStore(t))

	a.Disarm()
	a.Disarm()

	if a.handlePath != "" {
		t.Error("no handle may exist after disarm")
	}
}

func TestDisarm_CancelsInflightArm(t *testing.T) {
	s := newTestStore(t)
	id := putBlob(t, s, testWAV(100))
	a := New(s)

	res, err := a.resolve(id)
	if err != nil {
		t.Fatal(err)
	}
	gen := uint64(3)
	a.gen.Store(gen)

	a.Disarm() // bumps generation, invalidating gen 3

	a.completeArm(gen, res, nil)
	if a.armed {
		t.Error("arm superseded by disarm must not take effect")
	}
	if _, err := os.Stat(res.path); !os.IsNotExist(err) {
		t.Error("superseded arm must revoke its handle")
	}
}

func TestDisarm_ClosesHandleFile(t *testing.T) {
	const samples = 400
	a, out := armWAV(t, samples)
	out.take(t)

	a.mu.Lock()
	path := a.handlePath
	a.mu.Unlock()

	a.Disarm()

	a.mu.Lock()
	file := a.handleFile
	a.mu.Unlock()
	if file != nil {
		t.Error("disarm must close the handle file")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("handle %s should be removed after disarm", path)
	}
}

func TestControls_NoopBeforeReady(t *testing.T) {
	a := New(newTestStore(t))

	// None of these may panic or emit.
	a.Pause()
	a.Resume()
	a.Seek(12)
	a.SetVolume(0.5)

	if a.Position() != 0 {
		t.Errorf("Position() = %v, want 0 before ready", a.Position())
	}
	if a.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0 before ready", a.Duration())
	}
}

func TestSetVolume_Clamps(t *testing.T) {
	a := New(newTestStore(t))

	a.SetVolume(1.7)
	if a.volumeLevel != 1 {
		t.Errorf("volumeLevel = %v, want 1", a.volumeLevel)
	}
	a.SetVolume(-0.2)
	if a.volumeLevel != 0 {
		t.Errorf("volumeLevel = %v, want 0", a.volumeLevel)
	}
}

func TestApplyVolume_Mapping(t *testing.T) {
	v := &effects.Volume{Base: 2}

	applyVolume(v, 0)
	if !v.Silent {
		t.Error("level 0 should mute")
	}

	applyVolume(v, 1)
	if v.Silent || v.Volume != 0 {
		t.Errorf("level 1 => silent=%v volume=%v, want audible 0", v.Silent, v.Volume)
	}

	applyVolume(v, 0.5)
	if v.Volume != -1 {
		t.Errorf("level 0.5 => volume %v, want -1", v.Volume)
	}
}
