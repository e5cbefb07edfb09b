package app

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/mlouvel/playdeck/internal/backend"
	"github.com/mlouvel/playdeck/internal/blobstore"
	"github.com/mlouvel/playdeck/internal/config"
	"github.com/mlouvel/playdeck/internal/metadata"
	"github.com/mlouvel/playdeck/internal/playback"
	"github.com/mlouvel/playdeck/internal/playlists"
	"github.com/mlouvel/playdeck/internal/state"
	"github.com/mlouvel/playdeck/internal/ui/action"
	"github.com/mlouvel/playdeck/internal/ui/confirm"
	"github.com/mlouvel/playdeck/internal/ui/textinput"
)

type fixture struct {
	model  Model
	store  *playlists.Store
	local  *backend.Mock
	remote *backend.Mock
	engine *playback.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	blobs, err := blobstore.OpenAt(filepath.Join(dir, "media"))
	require.NoError(t, err)

	store, err := playlists.OpenAt(filepath.Join(dir, "playdeck.db"), blobs)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mgr, err := state.OpenAt(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	local := backend.NewMock()
	remote := backend.NewMock()
	engine := playback.New(local, remote)
	t.Cleanup(func() { engine.Close() })

	cfg := &config.Config{}
	m := New(Deps{
		Config:  cfg,
		Store:   store,
		State:   mgr,
		Engine:  engine,
		Meta:    metadata.NewClient(),
		Session: state.DefaultSession(),
	})
	m.width = 100
	m.height = 30
	m.layout()

	return &fixture{model: m, store: store, local: local, remote: remote, engine: engine}
}

// step runs one Update and keeps the returned model.
func (f *fixture) step(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := f.model.Update(msg)
	m, ok := next.(Model)
	require.True(t, ok, "Update should return app.Model")
	f.model = m
	return cmd
}

// run executes a command synchronously and feeds its message back in,
// repeating until no command remains. Batch commands are not unpacked; the
// tests below only produce single commands on the paths they exercise.
func (f *fixture) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		cmd = f.step(t, msg)
	}
}

func (f *fixture) seedPlaylist(t *testing.T, name string, videoIDs ...string) *playlists.Playlist {
	t.Helper()
	pl, err := f.store.Create(name)
	require.NoError(t, err)
	for _, id := range videoIDs {
		_, err := f.store.AddRemote(pl.ID, id, "Title "+id, "Channel", 0, "")
		require.NoError(t, err)
	}
	return pl
}

func (f *fixture) loadLists(t *testing.T) {
	t.Helper()
	lists, err := f.store.List()
	require.NoError(t, err)
	f.step(t, playlistsLoadedMsg{playlists: lists})
}

func (f *fixture) openFirstPlaylist(t *testing.T) {
	t.Helper()
	f.loadLists(t)
	pl, ok := f.model.playlistList.Selected()
	require.True(t, ok)
	tracks, err := f.store.Tracks(pl.ID)
	require.NoError(t, err)
	f.model.openPlaylist = pl.ID
	f.model.setFocus(focusTracks)
	f.step(t, tracksLoadedMsg{playlistID: pl.ID, tracks: tracks})
}

func TestInitialFocusIsPlaylists(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, focusPlaylists, f.model.focus)
	require.True(t, f.model.playlistList.IsFocused())
	require.False(t, f.model.trackList.IsFocused())
}

func TestTabSwitchesFocus(t *testing.T) {
	f := newFixture(t)

	f.step(t, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusTracks, f.model.focus)

	f.step(t, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusPlaylists, f.model.focus)
}

func TestPlaylistsLoadedPopulatesPanel(t *testing.T) {
	f := newFixture(t)
	f.seedPlaylist(t, "Jazz")
	f.seedPlaylist(t, "Focus")

	f.loadLists(t)

	require.Equal(t, 2, f.model.playlistList.Len())
}

func TestEnterOnPlaylistOpensTracks(t *testing.T) {
	f := newFixture(t)
	pl := f.seedPlaylist(t, "Jazz", "dQw4w9WgXcQ")
	f.loadLists(t)

	cmd := f.step(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, pl.ID, f.model.openPlaylist)
	require.Equal(t, focusTracks, f.model.focus)
}

func TestEnterOnTrackArmsRemoteBackend(t *testing.T) {
	f := newFixture(t)
	f.seedPlaylist(t, "Jazz", "dQw4w9WgXcQ", "9bZkp7q19f0")
	f.openFirstPlaylist(t)

	f.step(t, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, f.model.openPlaylist, f.model.queuedPlaylist)
	calls := f.remote.ArmCalls()
	require.Len(t, calls, 1)
	require.Equal(t, "dQw4w9WgXcQ", calls[0].Ref)
	require.Empty(t, f.local.ArmCalls())
}

func TestSpaceTogglesPlayback(t *testing.T) {
	f := newFixture(t)
	f.seedPlaylist(t, "Jazz", "dQw4w9WgXcQ")
	f.openFirstPlaylist(t)
	f.step(t, tea.KeyMsg{Type: tea.KeyEnter})
	f.remote.SimulateReady()
	waitFor(t, func() bool { return f.engine.State() == playback.StatePlaying })

	f.step(t, tea.KeyMsg{Type: tea.KeySpace})

	require.True(t, f.remote.PauseCalled())
}

func TestHelpOpensAndCloses(t *testing.T) {
	f := newFixture(t)

	f.step(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	require.True(t, f.model.helpOpen)

	cmd := f.step(t, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	f.run(t, cmd)
	require.False(t, f.model.helpOpen)
}

func TestNewPlaylistFlow(t *testing.T) {
	f := newFixture(t)

	f.step(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	require.Equal(t, inputNewPlaylist, f.model.inputMode)

	cmd := f.step(t, action.Msg{Source: "textinput", Action: textinput.Result{Text: "Road Trip"}})
	require.Equal(t, inputNone, f.model.inputMode)
	f.run(t, cmd)

	require.Equal(t, 1, f.model.playlistList.Len())
	pl, ok := f.model.playlistList.Selected()
	require.True(t, ok)
	require.Equal(t, "Road Trip", pl.Name)
}

func TestNewPlaylistCanceledDoesNothing(t *testing.T) {
	f := newFixture(t)

	f.step(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	cmd := f.step(t, action.Msg{Source: "textinput", Action: textinput.Result{Canceled: true}})
	require.Nil(t, cmd)

	lists, err := f.store.List()
	require.NoError(t, err)
	require.Empty(t, lists)
}

func TestDeletePlaylistRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	pl := f.seedPlaylist(t, "Jazz", "dQw4w9WgXcQ")
	f.loadLists(t)

	f.step(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	require.True(t, f.model.confirm.Active())

	// Declining leaves the playlist alone.
	cmd := f.step(t, action.Msg{Source: "confirm", Action: confirm.Result{Confirmed: false, Context: confirmTarget{playlistID: pl.ID}}})
	require.Nil(t, cmd)
	lists, err := f.store.List()
	require.NoError(t, err)
	require.Len(t, lists, 1)
}

func TestConfirmedPlaylistDeleteRemovesIt(t *testing.T) {
	f := newFixture(t)
	pl := f.seedPlaylist(t, "Jazz", "dQw4w9WgXcQ")
	f.loadLists(t)

	cmd := f.step(t, action.Msg{Source: "confirm", Action: confirm.Result{Confirmed: true, Context: confirmTarget{playlistID: pl.ID}}})
	f.run(t, cmd)

	require.Equal(t, 0, f.model.playlistList.Len())
	lists, err := f.store.List()
	require.NoError(t, err)
	require.Empty(t, lists)
}

func TestDeletingQueuedPlaylistStopsEngine(t *testing.T) {
	f := newFixture(t)
	pl := f.seedPlaylist(t, "Jazz", "dQw4w9WgXcQ")
	f.openFirstPlaylist(t)
	f.step(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, pl.ID, f.model.queuedPlaylist)

	cmd := f.step(t, action.Msg{Source: "confirm", Action: confirm.Result{Confirmed: true, Context: confirmTarget{playlistID: pl.ID}}})
	f.run(t, cmd)

	require.Zero(t, f.model.queuedPlaylist)
	require.Zero(t, f.model.openPlaylist)
	require.Equal(t, 0, f.model.trackList.Len())
}

func TestRemoveTrackConfirmation(t *testing.T) {
	f := newFixture(t)
	pl := f.seedPlaylist(t, "Jazz", "dQw4w9WgXcQ", "9bZkp7q19f0")
	f.openFirstPlaylist(t)

	track, ok := f.model.trackList.Selected()
	require.True(t, ok)

	cmd := f.step(t, action.Msg{Source: "confirm", Action: confirm.Result{
		Confirmed: true,
		Context:   confirmTarget{playlistID: pl.ID, trackID: track.ID},
	}})
	f.run(t, cmd)

	require.Equal(t, 1, f.model.trackList.Len())
	remaining, err := f.store.Tracks(pl.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "9bZkp7q19f0", remaining[0].VideoID)
}

func TestTrackChangedUpdatesBar(t *testing.T) {
	f := newFixture(t)
	track := playback.Track{ID: "1", Title: "Song", Duration: 200, Source: playback.RemoteSource{VideoID: "x"}}

	f.step(t, trackChangedMsg(playback.TrackChange{Current: track, Index: 3}))

	require.NotNil(t, f.model.bar.track)
	require.Equal(t, "Song", f.model.bar.track.Title)
	require.Equal(t, 3, f.model.bar.index)
	require.Equal(t, float64(200), f.model.bar.duration)
	require.Zero(t, f.model.bar.position)
}

func TestProgressUpdatesBar(t *testing.T) {
	f := newFixture(t)

	f.step(t, progressMsg(playback.Progress{Position: 42.5, Duration: 180}))

	require.Equal(t, 42.5, f.model.bar.position)
	require.Equal(t, float64(180), f.model.bar.duration)
}

func TestPlaybackErrorShowsStatus(t *testing.T) {
	f := newFixture(t)

	f.step(t, playbackErrMsg(playback.ErrorEvent{
		TrackID:  "7",
		Category: playback.CategoryNotFound,
		Err:      backend.ErrNotFound,
	}))

	require.Contains(t, f.model.status, "Failed to start playback")
}

func TestImportedStatusMentionsSize(t *testing.T) {
	f := newFixture(t)
	pl := f.seedPlaylist(t, "Local stuff")
	f.model.openPlaylist = pl.ID

	f.step(t, importedMsg{playlistID: pl.ID, title: "clip.mp4", size: 2 * 1024 * 1024})

	require.Contains(t, f.model.status, "clip.mp4")
	require.Contains(t, f.model.status, "MB")
}

func TestViewRendersPanels(t *testing.T) {
	f := newFixture(t)
	f.seedPlaylist(t, "Jazz", "dQw4w9WgXcQ")
	f.loadLists(t)
	f.step(t, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := f.model.View()

	require.True(t, strings.Contains(view, "Playlists"))
	require.True(t, strings.Contains(view, "Jazz"))
}

func TestViewShowsHelpHintInStatusLine(t *testing.T) {
	f := newFixture(t)
	f.step(t, tea.WindowSizeMsg{Width: 100, Height: 30})

	require.Contains(t, f.model.View(), "?: help")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not reached in time")
}
