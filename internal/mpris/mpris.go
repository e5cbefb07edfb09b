//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/mlouvel/playdeck/internal/playback"
)

// Adapter exposes the playback engine over MPRIS on the session bus.
type Adapter struct {
	engine *playback.Engine
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(engine *playback.Engine) (*Adapter, error) {
	a := &Adapter{engine: engine}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{engine: engine}

	a.server = server.NewServer("playdeck", rootAdapter, playerAdapter)

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // Track list interface not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "Playdeck", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "video/mp4"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional interfaces.
type playerAdapter struct {
	engine *playback.Engine
}

func (p *playerAdapter) Next() error {
	p.engine.Next()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.engine.Previous()
	return nil
}

func (p *playerAdapter) Pause() error {
	if p.engine.IsPlaying() {
		p.engine.TogglePlayPause()
	}
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.engine.TogglePlayPause()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.engine.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	if !p.engine.IsPlaying() {
		p.engine.TogglePlayPause()
	}
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	dur := p.engine.Duration()
	if dur <= 0 {
		return nil
	}
	target := p.engine.Position() + float64(offset)/1e6
	p.engine.Seek(target / dur)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	dur := p.engine.Duration()
	if dur <= 0 {
		return nil
	}
	p.engine.Seek(float64(position) / 1e6 / dur)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.engine.State() {
	case playback.StatePlaying, playback.StateLoading:
		return types.PlaybackStatusPlaying, nil
	case playback.StatePaused:
		return types.PlaybackStatusPaused, nil
	case playback.StateStopped:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.engine.CurrentTrack()
	if track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(track.ID)),
		Length:  types.Microseconds(int64(track.Duration) * 1e6),
		Title:   track.Title,
		Artist:  []string{track.Channel},
	}
	if track.Thumbnail != "" {
		meta.ArtUrl = track.Thumbnail
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.engine.Volume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.engine.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return int64(p.engine.Position() * 1e6), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.engine.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.engine.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.engine.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.engine.RepeatMode() {
	case playback.RepeatOne:
		return types.LoopStatusTrack, nil
	case playback.RepeatAll:
		return types.LoopStatusPlaylist, nil
	case playback.RepeatOff:
		return types.LoopStatusNone, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		p.engine.SetRepeatMode(playback.RepeatOff)
	case types.LoopStatusTrack:
		p.engine.SetRepeatMode(playback.RepeatOne)
	case types.LoopStatusPlaylist:
		p.engine.SetRepeatMode(playback.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.engine.Shuffle(), nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.engine.SetShuffle(shuffle)
	return nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
