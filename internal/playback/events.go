package playback

import (
	"errors"

	"github.com/mlouvel/playdeck/internal/backend"
)

// StateChange is emitted when the playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when playback starts on a queue entry.
//
// Emitted by Play, Next, Previous and automatic advance on track end.
// Repeat-one replay does not emit: the same track restarting is not a
// track change.
type TrackChange struct {
	Previous      *Track
	Current       Track
	PreviousIndex int
	Index         int
}

// Progress carries a playback position update, in seconds. Duration is 0
// while still unknown.
type Progress struct {
	Position float64
	Duration float64
}

// DurationChange is emitted at most once per playing track, when the
// backend reports a duration for a track that had none. Consumers may
// persist the refined value.
type DurationChange struct {
	TrackID string
	Seconds int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	Repeat  RepeatMode
	Shuffle bool
}

// VolumeChange is emitted when the volume changes, including mute toggles.
type VolumeChange struct {
	Volume float64
	Muted  bool
}

// Category classifies a playback failure for presentation.
type Category int

const (
	CategoryBackendUnavailable Category = iota
	CategoryNotFound
	CategoryUnsupportedMedia
	CategoryInvalidState
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryBackendUnavailable:
		return "BackendUnavailable"
	case CategoryNotFound:
		return "NotFound"
	case CategoryUnsupportedMedia:
		return "UnsupportedMedia"
	case CategoryInvalidState:
		return "InvalidState"
	default:
		return "Unknown"
	}
}

// categorize maps a backend error onto a failure category.
func categorize(err error) Category {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, backend.ErrUnsupportedMedia):
		return CategoryUnsupportedMedia
	default:
		return CategoryBackendUnavailable
	}
}

// ErrorEvent is emitted when playback of a track fails.
type ErrorEvent struct {
	TrackID  string
	Category Category
	Err      error
}
