package backend

// EventKind enumerates the inbound events a backend can emit.
type EventKind int

const (
	// EventReady fires when the backend can accept control operations for
	// the armed media.
	EventReady EventKind = iota
	// EventMetadata fires once the media duration becomes known.
	EventMetadata
	// EventTimeUpdate fires periodically while playing. Advisory: may be
	// dropped under load.
	EventTimeUpdate
	// EventStateChange reports play/pause flips originating in the backend
	// itself (e.g. the external player was paused out of band).
	EventStateChange
	// EventEnded fires on clean end of media.
	EventEnded
	// EventError fires when load or playback fails. Terminal for the
	// generation it carries.
	EventError
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "Ready"
	case EventMetadata:
		return "Metadata"
	case EventTimeUpdate:
		return "TimeUpdate"
	case EventStateChange:
		return "StateChange"
	case EventEnded:
		return "Ended"
	case EventError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Event is a single inbound backend event.
type Event struct {
	Kind     EventKind
	Gen      uint64  // arm generation this event belongs to
	Position float64 // seconds; TimeUpdate
	Duration float64 // seconds; Metadata and TimeUpdate, 0 = unknown
	Playing  bool    // StateChange
	Err      error   // Error
}

const eventBufferSize = 32

// Emitter wraps an event channel with the send policy backends share:
// TimeUpdate is advisory and dropped when the buffer is full, everything
// else blocks until delivered.
type Emitter struct {
	ch chan Event
}

// NewEmitter creates an emitter with a buffered channel.
func NewEmitter() *Emitter {
	return &Emitter{ch: make(chan Event, eventBufferSize)}
}

// Events returns the receive side of the channel.
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Emit delivers an event. Load-bearing kinds block; TimeUpdate drops when
// the buffer is full.
func (e *Emitter) Emit(ev Event) {
	if ev.Kind == EventTimeUpdate {
		select {
		case e.ch <- ev:
		default:
		}
		return
	}
	e.ch <- ev
}
