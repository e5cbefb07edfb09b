// Package app wires the playback engine, stores and UI components into the
// bubbletea program model.
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mlouvel/playdeck/internal/config"
	"github.com/mlouvel/playdeck/internal/keymap"
	"github.com/mlouvel/playdeck/internal/metadata"
	"github.com/mlouvel/playdeck/internal/notify"
	"github.com/mlouvel/playdeck/internal/playback"
	"github.com/mlouvel/playdeck/internal/playlists"
	"github.com/mlouvel/playdeck/internal/state"
	"github.com/mlouvel/playdeck/internal/ui"
	"github.com/mlouvel/playdeck/internal/ui/confirm"
	"github.com/mlouvel/playdeck/internal/ui/helpbindings"
	"github.com/mlouvel/playdeck/internal/ui/list"
	"github.com/mlouvel/playdeck/internal/ui/textinput"
)

// focusArea identifies which panel receives navigation keys.
type focusArea int

const (
	focusPlaylists focusArea = iota
	focusTracks
)

// inputMode identifies what an open text input popup is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputNewPlaylist
	inputRenamePlaylist
	inputAddMedia
	inputImportPath
)

// confirmTarget is the context attached to confirmation popups.
type confirmTarget struct {
	playlistID int64
	trackID    int64 // 0 when confirming a playlist deletion
}

// Deps holds everything the model needs from main.
type Deps struct {
	Config   *config.Config
	Store    *playlists.Store
	State    *state.Manager
	Engine   *playback.Engine
	Meta     *metadata.Client
	Notifier notify.Notifier
	Session  state.Session
}

// Model is the top-level bubbletea model.
type Model struct {
	cfg      *config.Config
	store    *playlists.Store
	stateMgr *state.Manager
	engine   *playback.Engine
	meta     *metadata.Client
	notifier notify.Notifier

	sub  *playback.Subscription
	keys *keymap.Resolver

	width  int
	height int
	focus  focusArea

	playlistList list.Model[playlists.Playlist]
	trackList    list.Model[playlists.Track]

	// openPlaylist is the playlist whose tracks fill the track panel;
	// queuedPlaylist is the one currently loaded into the engine queue.
	openPlaylist   int64
	queuedPlaylist int64

	bar barState

	input     textinput.Model
	inputMode inputMode
	confirm   confirm.Model
	help      helpbindings.Model
	helpOpen  bool

	status   string // transient message shown above the player bar
	notifyID uint32 // desktop notification to replace on track change
}

// barState caches the engine values the view renders every frame, so View
// never has to lock the engine.
type barState struct {
	state    playback.State
	track    *playback.Track
	index    int
	position float64
	duration float64
	volume   float64
	muted    bool
	shuffle  bool
	repeat   playback.RepeatMode
}

// New creates the application model. The engine is expected to already
// carry the restored session (volume, modes).
func New(deps Deps) Model {
	m := Model{
		cfg:          deps.Config,
		store:        deps.Store,
		stateMgr:     deps.State,
		engine:       deps.Engine,
		meta:         deps.Meta,
		notifier:     deps.Notifier,
		sub:          deps.Engine.Subscribe(),
		keys:         keymap.NewResolver(keymap.All),
		playlistList: list.New[playlists.Playlist](ui.ScrollMargin),
		trackList:    list.New[playlists.Track](ui.ScrollMargin),
		input:        textinput.New(),
		confirm:      confirm.New(),
		help:         helpbindings.New(),
		openPlaylist: deps.Session.PlaylistID,
		bar: barState{
			state:   deps.Engine.State(),
			index:   -1,
			volume:  deps.Engine.Volume(),
			muted:   deps.Engine.Muted(),
			shuffle: deps.Engine.Shuffle(),
			repeat:  deps.Engine.RepeatMode(),
		},
	}
	m.playlistList.SetFocused(true)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		loadPlaylists(m.store),
		listenState(m.sub),
		listenTrack(m.sub),
		listenProgress(m.sub),
		listenDuration(m.sub),
		listenMode(m.sub),
		listenVolume(m.sub),
		listenError(m.sub),
		listenStderr(),
	}
	if m.openPlaylist != 0 {
		cmds = append(cmds, loadTracks(m.store, m.openPlaylist))
	}
	return tea.Batch(cmds...)
}

// setFocus moves keyboard focus between the two panels.
func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.playlistList.SetFocused(f == focusPlaylists)
	m.trackList.SetFocused(f == focusTracks)
}

// layout recomputes component sizes from the window size.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	panelHeight := m.height - barHeight(m.bar) - statusHeight
	playlistWidth := m.width / ui.ColumnWidthDivisor
	m.playlistList.SetSize(playlistWidth, panelHeight)
	m.trackList.SetSize(m.width-playlistWidth, panelHeight)
	m.help.SetSize(m.width, m.height)
}
