package backend

import "sync"

// Mock is a test double for a Backend. It is safe for concurrent use so
// tests can inspect it while an event consumer runs.
type Mock struct {
	mu      sync.Mutex
	emitter *Emitter

	armErr   error
	armCalls []MockArm
	disarms  int
	paused   bool
	resumed  bool
	seeks    []float64
	volumes  []float64
	position float64
	duration float64
	gen      uint64
	armed    bool
}

// MockArm records a single Arm call.
type MockArm struct {
	Gen uint64
	Ref string
}

// NewMock creates a mock backend.
func NewMock() *Mock {
	return &Mock{emitter: NewEmitter()}
}

func (m *Mock) Arm(gen uint64, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armCalls = append(m.armCalls, MockArm{Gen: gen, Ref: ref})
	if m.armErr != nil {
		return m.armErr
	}
	m.gen = gen
	m.armed = true
	return nil
}

func (m *Mock) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = false
	m.position = 0
	m.disarms++
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

func (m *Mock) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumed = true
}

func (m *Mock) Seek(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeks = append(m.seeks, seconds)
}

func (m *Mock) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumes = append(m.volumes, v)
}

func (m *Mock) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Events() <-chan Event { return m.emitter.Events() }

func (m *Mock) Close() error { return nil }

// Test helpers

func (m *Mock) SetArmError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armErr = err
}

func (m *Mock) SetDuration(d float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetPosition(p float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = p
}

func (m *Mock) ArmCalls() []MockArm {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockArm, len(m.armCalls))
	copy(calls, m.armCalls)
	return calls
}

func (m *Mock) DisarmCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disarms
}

func (m *Mock) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

func (m *Mock) PauseCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *Mock) ResumeCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumed
}

func (m *Mock) SeekCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]float64, len(m.seeks))
	copy(calls, m.seeks)
	return calls
}

func (m *Mock) VolumeCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]float64, len(m.volumes))
	copy(calls, m.volumes)
	return calls
}

func (m *Mock) lastGen() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// SimulateReady emits a Ready event for the last armed generation.
func (m *Mock) SimulateReady() {
	m.emitter.Emit(Event{Kind: EventReady, Gen: m.lastGen()})
}

// SimulateMetadata emits a Metadata event with the given duration.
func (m *Mock) SimulateMetadata(duration float64) {
	m.SetDuration(duration)
	m.emitter.Emit(Event{Kind: EventMetadata, Gen: m.lastGen(), Duration: duration})
}

// SimulateEnded emits an Ended event for the last armed generation.
func (m *Mock) SimulateEnded() {
	m.emitter.Emit(Event{Kind: EventEnded, Gen: m.lastGen()})
}

// SimulateError emits an Error event for the last armed generation.
func (m *Mock) SimulateError(err error) {
	m.emitter.Emit(Event{Kind: EventError, Gen: m.lastGen(), Err: err})
}

// SimulateStaleEnded emits an Ended event tagged with an old generation.
func (m *Mock) SimulateStaleEnded(gen uint64) {
	m.emitter.Emit(Event{Kind: EventEnded, Gen: gen})
}

// SimulateTimeUpdate emits a TimeUpdate event.
func (m *Mock) SimulateTimeUpdate(pos, dur float64) {
	m.SetPosition(pos)
	m.emitter.Emit(Event{Kind: EventTimeUpdate, Gen: m.lastGen(), Position: pos, Duration: dur})
}

// Verify Mock implements Backend at compile time.
var _ Backend = (*Mock)(nil)
