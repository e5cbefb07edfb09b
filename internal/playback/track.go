package playback

import "github.com/mlouvel/playdeck/internal/backend"

// Subtype distinguishes how locally stored media was classified at import
// time. Both subtypes play through the same backend.
type Subtype string

const (
	SubtypeAudio Subtype = "audio"
	SubtypeVideo Subtype = "video"
)

// Source identifies where a track's media comes from. Exactly two
// implementations exist: RemoteSource and LocalSource. The interface is
// sealed so a track can never carry an unknown source kind.
type Source interface {
	// BackendKind names the backend that plays this source.
	BackendKind() backend.Kind
	// Ref is the backend-facing media reference: a remote video id or a
	// blob store content ref.
	Ref() string

	sealed()
}

// RemoteSource is a streamed video identified by its platform video id.
type RemoteSource struct {
	VideoID string
}

func (s RemoteSource) BackendKind() backend.Kind { return backend.KindRemote }
func (s RemoteSource) Ref() string               { return s.VideoID }
func (RemoteSource) sealed()                     {}

// LocalSource is media held in the local blob store.
type LocalSource struct {
	ContentRef string
	Subtype    Subtype
}

func (s LocalSource) BackendKind() backend.Kind { return backend.KindLocal }
func (s LocalSource) Ref() string               { return s.ContentRef }
func (LocalSource) sealed()                     {}

// Track is one playable queue entry.
type Track struct {
	ID        string
	Title     string
	Channel   string
	Duration  int // seconds; 0 until discovered
	Thumbnail string
	Source    Source
}

// IsRemote reports whether the track streams from the remote platform.
func (t Track) IsRemote() bool {
	_, ok := t.Source.(RemoteSource)
	return ok
}
