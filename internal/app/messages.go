package app

import (
	"github.com/mlouvel/playdeck/internal/playback"
	"github.com/mlouvel/playdeck/internal/playlists"
)

// Engine event wrappers. Each corresponds to one subscription channel and
// triggers a re-listen command when handled.

type stateChangedMsg playback.StateChange

type trackChangedMsg playback.TrackChange

type progressMsg playback.Progress

type durationMsg playback.DurationChange

type modeMsg playback.ModeChange

type volumeMsg playback.VolumeChange

type playbackErrMsg playback.ErrorEvent

// engineDoneMsg is delivered once when the engine closes.
type engineDoneMsg struct{}

// Store results.

type playlistsLoadedMsg struct {
	playlists []playlists.Playlist
	err       error
}

type tracksLoadedMsg struct {
	playlistID int64
	tracks     []playlists.Track
	err        error
}

// mediaAddedMsg reports the outcome of resolving a URL and adding its
// track(s) to a playlist.
type mediaAddedMsg struct {
	playlistID int64
	added      int
	err        error
}

// importedMsg reports the outcome of importing a media file.
type importedMsg struct {
	playlistID int64
	title      string
	size       int64
	err        error
}

// statusMsg replaces the transient status line.
type statusMsg string

// stderrMsg carries a line an audio library wrote to the real stderr.
type stderrMsg string
