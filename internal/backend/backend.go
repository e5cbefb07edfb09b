// Package backend defines the contract shared by the two playback backends.
//
// The engine arms at most one backend at a time. Every Arm call carries a
// generation number; all events the backend emits afterwards are tagged with
// it, so results of a superseded arm can be discarded by the consumer.
package backend

// Kind identifies which backend a track plays through.
type Kind int

const (
	KindNone Kind = iota
	KindRemote
	KindLocal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindRemote:
		return "Remote"
	case KindLocal:
		return "Local"
	default:
		return "Unknown"
	}
}

// Backend is the contract both playback backends implement.
//
// Arm loads the media referenced by ref and begins playback as soon as the
// underlying player allows it. ErrNotReady means the player exists but has
// not finished initializing; the request may still be honored later via a
// Ready event. Any other error is definitive for this generation.
//
// Control operations (Pause, Resume, Seek, SetVolume) are no-ops while the
// backend is not armed or not ready. They never panic.
type Backend interface {
	Arm(gen uint64, ref string) error
	Disarm()
	Pause()
	Resume()
	Seek(seconds float64)
	SetVolume(v float64)
	Position() float64
	Duration() float64
	Events() <-chan Event
	Close() error
}
