package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/mlouvel/playdeck/internal/errmsg"
	"github.com/mlouvel/playdeck/internal/keymap"
	"github.com/mlouvel/playdeck/internal/notify"
	"github.com/mlouvel/playdeck/internal/playback"
	"github.com/mlouvel/playdeck/internal/playlists"
	"github.com/mlouvel/playdeck/internal/state"
	"github.com/mlouvel/playdeck/internal/ui/action"
	"github.com/mlouvel/playdeck/internal/ui/confirm"
	"github.com/mlouvel/playdeck/internal/ui/helpbindings"
	"github.com/mlouvel/playdeck/internal/ui/list"
	"github.com/mlouvel/playdeck/internal/ui/textinput"
)

const seekStepSeconds = 5.0
const volumeStep = 0.05

// notifiedMsg carries the id of the last desktop notification so the next
// track change can replace it instead of stacking.
type notifiedMsg uint32

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case stateChangedMsg:
		m.bar.state = msg.Current
		m.layout()
		return m, listenState(m.sub)

	case trackChangedMsg:
		track := msg.Current
		m.bar.track = &track
		m.bar.index = msg.Index
		m.bar.position = 0
		m.bar.duration = float64(track.Duration)
		m.status = ""
		m.layout()
		return m, tea.Batch(listenTrack(m.sub), m.persistSession(), m.notifyTrack(track))

	case progressMsg:
		m.bar.position = msg.Position
		if msg.Duration > 0 {
			m.bar.duration = msg.Duration
		}
		return m, listenProgress(m.sub)

	case durationMsg:
		return m, tea.Batch(listenDuration(m.sub), m.persistDuration(playback.DurationChange(msg)))

	case modeMsg:
		m.bar.shuffle = msg.Shuffle
		m.bar.repeat = msg.Repeat
		return m, tea.Batch(listenMode(m.sub), m.persistSession())

	case volumeMsg:
		m.bar.volume = msg.Volume
		m.bar.muted = msg.Muted
		return m, tea.Batch(listenVolume(m.sub), m.persistSession())

	case playbackErrMsg:
		m.status = errmsg.FormatWith(errmsg.OpPlaybackStart, msg.TrackID, msg.Err)
		return m, listenError(m.sub)

	case engineDoneMsg:
		return m, tea.Quit

	case playlistsLoadedMsg:
		if msg.err != nil {
			m.status = errmsg.Format(errmsg.OpPlaylistLoad, msg.err)
			return m, nil
		}
		m.playlistList.SetItems(msg.playlists)
		return m, nil

	case tracksLoadedMsg:
		if msg.err != nil {
			m.status = errmsg.Format(errmsg.OpPlaylistLoad, msg.err)
			return m, nil
		}
		if msg.playlistID == m.openPlaylist {
			m.trackList.SetItems(msg.tracks)
		}
		return m, nil

	case mediaAddedMsg:
		if msg.err != nil {
			m.status = errmsg.Format(errmsg.OpMediaLookup, msg.err)
		} else {
			m.status = fmt.Sprintf("Added %d track(s)", msg.added)
		}
		return m, tea.Batch(loadTracks(m.store, msg.playlistID), loadPlaylists(m.store))

	case importedMsg:
		if msg.err != nil {
			m.status = errmsg.Format(errmsg.OpMediaImport, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Imported %q (%s)", msg.title, humanize.Bytes(uint64(msg.size)))
		return m, tea.Batch(loadTracks(m.store, msg.playlistID), loadPlaylists(m.store))

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case stderrMsg:
		m.status = string(msg)
		return m, listenStderr()

	case notifiedMsg:
		m.notifyID = uint32(msg)
		return m, nil

	case action.Msg:
		return m.handleUIAction(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleUIAction routes results from popup components.
func (m Model) handleUIAction(msg action.Msg) (tea.Model, tea.Cmd) {
	switch act := msg.Action.(type) {
	case textinput.Result:
		return m.handleInputResult(act)
	case confirm.Result:
		return m.handleConfirmResult(act)
	case helpbindings.Close:
		m.helpOpen = false
		return m, nil
	}
	return m, nil
}

func (m Model) handleInputResult(res textinput.Result) (tea.Model, tea.Cmd) {
	mode := m.inputMode
	m.inputMode = inputNone
	m.input.Reset()
	if res.Canceled {
		return m, nil
	}

	switch mode {
	case inputNewPlaylist:
		store := m.store
		name := res.Text
		return m, func() tea.Msg {
			if _, err := store.Create(name); err != nil {
				return statusMsg(errmsg.FormatWith(errmsg.OpPlaylistCreate, name, err))
			}
			lists, err := store.List()
			return playlistsLoadedMsg{playlists: lists, err: err}
		}

	case inputRenamePlaylist:
		id, _ := res.Context.(int64)
		store := m.store
		name := res.Text
		return m, func() tea.Msg {
			if err := store.Rename(id, name); err != nil {
				return statusMsg(errmsg.FormatWith(errmsg.OpPlaylistRename, name, err))
			}
			lists, err := store.List()
			return playlistsLoadedMsg{playlists: lists, err: err}
		}

	case inputAddMedia:
		return m, addMedia(m.store, m.meta, m.openPlaylist, res.Text)

	case inputImportPath:
		return m, importFile(m.store, m.openPlaylist, res.Text)

	case inputNone:
	}
	return m, nil
}

func (m Model) handleConfirmResult(res confirm.Result) (tea.Model, tea.Cmd) {
	if !res.Confirmed {
		return m, nil
	}
	target, ok := res.Context.(confirmTarget)
	if !ok {
		return m, nil
	}

	store := m.store
	if target.trackID != 0 {
		playlistID := target.playlistID
		trackID := target.trackID
		return m, func() tea.Msg {
			if err := store.RemoveTrack(trackID); err != nil {
				return statusMsg(errmsg.Format(errmsg.OpPlaylistRemove, err))
			}
			tracks, err := store.Tracks(playlistID)
			return tracksLoadedMsg{playlistID: playlistID, tracks: tracks, err: err}
		}
	}

	// Deleting the playlist that feeds the engine queue stops playback.
	if target.playlistID == m.queuedPlaylist {
		m.engine.Stop()
		m.engine.SetQueue(nil)
		m.queuedPlaylist = 0
	}
	if target.playlistID == m.openPlaylist {
		m.openPlaylist = 0
		m.trackList.SetItems(nil)
	}
	playlistID := target.playlistID
	return m, func() tea.Msg {
		if err := store.Delete(playlistID); err != nil {
			return statusMsg(errmsg.Format(errmsg.OpPlaylistDelete, err))
		}
		lists, err := store.List()
		return playlistsLoadedMsg{playlists: lists, err: err}
	}
}

// handleKey routes key input to an open popup, the focused panel, or the
// global action map, in that order.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.helpOpen {
		_, cmd := m.help.Update(msg)
		return m, cmd
	}
	if m.confirm.Active() {
		_, cmd := m.confirm.Update(msg)
		return m, cmd
	}
	if m.inputMode != inputNone {
		_, cmd := m.input.Update(msg)
		return m, cmd
	}

	// Focused panel gets first crack at navigation keys.
	switch m.focus {
	case focusPlaylists:
		res := m.playlistList.Update(msg, m.playlistList.Len())
		switch res.Action {
		case list.ActionEnter:
			return m.openSelectedPlaylist()
		case list.ActionDelete:
			return m.confirmDeletePlaylist()
		}
	case focusTracks:
		res := m.trackList.Update(msg, m.trackList.Len())
		switch res.Action {
		case list.ActionEnter:
			return m.playSelectedTrack()
		case list.ActionDelete:
			return m.confirmRemoveTrack()
		}
	}

	return m.handleAction(m.keys.Resolve(msg.String()))
}

//nolint:gocyclo // plain action dispatch
func (m Model) handleAction(act keymap.Action) (tea.Model, tea.Cmd) {
	switch act {
	case keymap.ActionQuit:
		return m, tea.Quit

	case keymap.ActionSwitchFocus:
		if m.focus == focusPlaylists {
			m.setFocus(focusTracks)
		} else {
			m.setFocus(focusPlaylists)
		}
		return m, nil

	case keymap.ActionHelp:
		m.helpOpen = true
		m.help.SetContexts([]string{"global", "playback", "playlists", "tracks"})
		return m, nil

	case keymap.ActionPlayPause:
		m.engine.TogglePlayPause()
		return m, nil

	case keymap.ActionStop:
		m.engine.Stop()
		return m, nil

	case keymap.ActionNextTrack:
		m.engine.Next()
		return m, nil

	case keymap.ActionPrevTrack:
		m.engine.Previous()
		return m, nil

	case keymap.ActionSeekForward:
		m.seekBy(seekStepSeconds)
		return m, nil

	case keymap.ActionSeekBack:
		m.seekBy(-seekStepSeconds)
		return m, nil

	case keymap.ActionCycleRepeat:
		m.engine.CycleRepeatMode()
		return m, nil

	case keymap.ActionToggleShuffle:
		m.engine.ToggleShuffle()
		return m, nil

	case keymap.ActionVolumeUp:
		m.engine.SetVolume(m.engine.Volume() + volumeStep)
		return m, nil

	case keymap.ActionVolumeDown:
		m.engine.SetVolume(m.engine.Volume() - volumeStep)
		return m, nil

	case keymap.ActionToggleMute:
		m.engine.ToggleMute()
		return m, nil

	case keymap.ActionNewPlaylist:
		if m.focus == focusPlaylists {
			m.inputMode = inputNewPlaylist
			m.input.Start("New playlist", "", nil, m.width, m.height)
		}
		return m, nil

	case keymap.ActionRename:
		if m.focus == focusPlaylists {
			if pl, ok := m.playlistList.Selected(); ok {
				m.inputMode = inputRenamePlaylist
				m.input.Start("Rename playlist", pl.Name, pl.ID, m.width, m.height)
			}
		}
		return m, nil

	case keymap.ActionAddMedia:
		if m.focus == focusTracks && m.openPlaylist != 0 {
			m.inputMode = inputAddMedia
			m.input.Start("Add video or playlist URL", "", nil, m.width, m.height)
		}
		return m, nil

	case keymap.ActionImportFile:
		if m.focus == focusTracks && m.openPlaylist != 0 {
			m.inputMode = inputImportPath
			m.input.Start("Import media file (path)", "", nil, m.width, m.height)
		}
		return m, nil

	case keymap.ActionMoveTrackUp:
		return m.moveSelectedTrack(-1)

	case keymap.ActionMoveTrackDown:
		return m.moveSelectedTrack(1)
	}

	return m, nil
}

func (m *Model) seekBy(deltaSeconds float64) {
	dur := m.engine.Duration()
	if dur <= 0 {
		return
	}
	m.engine.Seek((m.engine.Position() + deltaSeconds) / dur)
}

func (m Model) openSelectedPlaylist() (tea.Model, tea.Cmd) {
	pl, ok := m.playlistList.Selected()
	if !ok {
		return m, nil
	}
	m.openPlaylist = pl.ID
	m.setFocus(focusTracks)
	store := m.store
	id := pl.ID
	return m, tea.Batch(loadTracks(store, id), func() tea.Msg {
		_ = store.Touch(id)
		return nil
	})
}

func (m Model) playSelectedTrack() (tea.Model, tea.Cmd) {
	track, ok := m.trackList.Selected()
	if !ok {
		return m, nil
	}
	if m.queuedPlaylist != m.openPlaylist {
		m.engine.SetQueue(m.store.Queue(m.openPlaylist))
		m.queuedPlaylist = m.openPlaylist
	}
	m.engine.Play(track.Playable(), m.trackList.SelectedIndex())
	return m, nil
}

func (m Model) confirmDeletePlaylist() (tea.Model, tea.Cmd) {
	pl, ok := m.playlistList.Selected()
	if !ok {
		return m, nil
	}
	m.confirm.Show(
		"Delete playlist",
		fmt.Sprintf("Delete %q and its %d track(s)? Stored media is removed too.", pl.Name, pl.TrackCount),
		confirmTarget{playlistID: pl.ID},
		m.width, m.height,
	)
	return m, nil
}

func (m Model) confirmRemoveTrack() (tea.Model, tea.Cmd) {
	track, ok := m.trackList.Selected()
	if !ok {
		return m, nil
	}
	m.confirm.Show(
		"Remove track",
		fmt.Sprintf("Remove %q from the playlist?", track.Title),
		confirmTarget{playlistID: m.openPlaylist, trackID: track.ID},
		m.width, m.height,
	)
	return m, nil
}

func (m Model) moveSelectedTrack(delta int) (tea.Model, tea.Cmd) {
	if m.focus != focusTracks || m.openPlaylist == 0 {
		return m, nil
	}
	from := m.trackList.SelectedIndex()
	to := from + delta
	if to < 0 || to >= m.trackList.Len() {
		return m, nil
	}
	if err := m.store.MoveTrack(m.openPlaylist, from, to); err != nil {
		m.status = errmsg.Format(errmsg.OpPlaylistMove, err)
		return m, nil
	}
	m.trackList.Cursor().SetPos(to)
	return m, loadTracks(m.store, m.openPlaylist)
}

// persistSession snapshots the engine into the session store. Saves are
// debounced by the state manager.
func (m Model) persistSession() tea.Cmd {
	mgr := m.stateMgr
	sess := state.Session{
		Volume:         m.engine.Volume(),
		PreviousVolume: m.engine.PreviousVolume(),
		Shuffle:        m.engine.Shuffle(),
		RepeatMode:     int(m.engine.RepeatMode()),
		PlaylistID:     m.queuedPlaylist,
		TrackIndex:     m.engine.CurrentIndex(),
	}
	return func() tea.Msg {
		mgr.Save(sess)
		return nil
	}
}

// persistDuration writes a backend-discovered duration back to the
// playlist store so future sessions show it immediately.
func (m Model) persistDuration(ev playback.DurationChange) tea.Cmd {
	store := m.store
	playlistID := m.openPlaylist
	return func() tea.Msg {
		id, ok := playlists.TrackIDFromPlayable(ev.TrackID)
		if !ok {
			return nil
		}
		if err := store.SetTrackDuration(id, ev.Seconds); err != nil {
			return statusMsg(errmsg.Format(errmsg.OpSessionSave, err))
		}
		if playlistID != 0 {
			tracks, err := store.Tracks(playlistID)
			return tracksLoadedMsg{playlistID: playlistID, tracks: tracks, err: err}
		}
		return nil
	}
}

// notifyTrack shows (or replaces) the now-playing desktop notification.
func (m Model) notifyTrack(track playback.Track) tea.Cmd {
	if m.notifier == nil || !m.cfg.NotificationsEnabled() {
		return nil
	}
	notifier := m.notifier
	replaces := m.notifyID
	return func() tea.Msg {
		id, err := notifier.Notify(notify.Notification{
			Title:      track.Title,
			Body:       track.Channel,
			Timeout:    5000,
			ReplacesID: replaces,
			Urgency:    notify.UrgencyLow,
		})
		if err != nil || id == 0 {
			return nil
		}
		return notifiedMsg(id)
	}
}
